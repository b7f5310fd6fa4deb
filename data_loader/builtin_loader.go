package data_loader

import (
	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/tickets"
)

// BuiltinLoader seeds the store with the built-in tickets
type BuiltinLoader struct{}

func (BuiltinLoader) Init(conf interface{}) error {
	return nil
}

func (BuiltinLoader) LoadIntoStore(store backends.Backend) error {
	loaded := storeRecords(store, tickets.Fixtures())
	dataLogger.Infof("Loaded %d built-in tickets", loaded)
	return nil
}
