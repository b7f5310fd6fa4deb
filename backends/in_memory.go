package backends

import (
	"encoding/json"
	"errors"
	"sync"
)

// InMemoryBackend implements Backend on top of a map
type InMemoryBackend struct {
	lock sync.RWMutex
	kv   map[string][]byte
	keys []string
}

// Init will create the initial in-memory store structures
func (m *InMemoryBackend) Init(config interface{}) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.kv = make(map[string][]byte)
	m.keys = nil
	return nil
}

// SetKey will set the value of a key in the map
func (m *InMemoryBackend) SetKey(key string, val interface{}) error {
	asByte, err := json.Marshal(val)
	if err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.kv == nil {
		return errors.New("store not initialised")
	}

	if _, exists := m.kv[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.kv[key] = asByte
	return nil
}

// GetKey decodes the value stored under key into target
func (m *InMemoryBackend) GetKey(key string, target interface{}) error {
	m.lock.RLock()
	v, ok := m.kv[key]
	m.lock.RUnlock()

	if !ok {
		return ErrNotFound
	}

	return json.Unmarshal(v, target)
}

func (m *InMemoryBackend) DeleteKey(key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if _, ok := m.kv[key]; !ok {
		return nil
	}

	delete(m.kv, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return nil
}

// GetAll returns the values in insertion order
func (m *InMemoryBackend) GetAll() []interface{} {
	m.lock.RLock()
	defer m.lock.RUnlock()

	values := make([]interface{}, 0, len(m.keys))
	for _, k := range m.keys {
		values = append(values, string(m.kv[k]))
	}
	return values
}
