package lib

import (
	"sync"
)

// Map is a generic map guarded by RWMutex. The zero value is ready to use.
type Map[K comparable, V any] struct {
	sync.RWMutex
	m map[K]V
}

func (m *Map[K, V]) Load(key K) (V, bool) {
	m.RLock()
	v, found := m.m[key]
	m.RUnlock()
	return v, found
}

func (m *Map[K, V]) LoadAndDelete(key K) (V, bool) {
	m.Lock()
	v, found := m.m[key]
	if found {
		delete(m.m, key)
	}
	m.Unlock()
	return v, found
}

// StoreNew stores value only if the key is absent. Returns false if the key
// already exists, in which case the map is not modified.
func (m *Map[K, V]) StoreNew(key K, value V) bool {
	m.Lock()
	defer m.Unlock()
	if m.m == nil {
		m.m = make(map[K]V)
	}
	if _, exist := m.m[key]; exist {
		return false
	}
	m.m[key] = value
	return true
}

func (m *Map[K, V]) Range(f func(k K, v V) bool) {
	m.RLock()
	for mk, mv := range m.m {
		if f(mk, mv) == false {
			break
		}
	}
	m.RUnlock()
}

// Keys returns a snapshot of the keys
func (m *Map[K, V]) Keys() []K {
	m.RLock()
	keys := make([]K, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	m.RUnlock()
	return keys
}

func (m *Map[K, V]) Len() int {
	m.RLock()
	l := len(m.m)
	m.RUnlock()
	return l
}

// Reset removes all the entries
func (m *Map[K, V]) Reset() {
	m.Lock()
	m.m = nil
	m.Unlock()
}
