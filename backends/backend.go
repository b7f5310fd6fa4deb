/*
Package backends provides the key/value stores used by the service: the ticket
store and the HIV check cache. Values are JSON encoded so every backend returns the
same shapes. The in-memory backend is the default and is what the tests use.
*/
package backends

import (
	"errors"

	logger "github.com/orchestrate-poc/endpoints/log"
)

var log = logger.Get()

// ErrNotFound is returned by GetKey when the key is not present.
var ErrNotFound = errors.New("key not found")

// Backend is a JSON valued key/value store.
type Backend interface {
	Init(config interface{}) error
	SetKey(key string, val interface{}) error
	GetKey(key string, target interface{}) error
	DeleteKey(key string) error
	// GetAll returns every stored value as its JSON encoded string.
	GetAll() []interface{}
}
