package kv

import "golang.org/x/exp/slices"

// Entry is a single key-value pair of a snapshot.
type Entry struct {
	Key   string
	Value string
}

// Snapshot is the ordered content of a store.
type Snapshot []Entry

// Get returns the value stored under key.
func (s Snapshot) Get(key string) (string, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in snapshot order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, e := range s {
		keys = append(keys, e.Key)
	}
	return keys
}

// Map returns the snapshot as an unordered map.
func (s Snapshot) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, e := range s {
		m[e.Key] = e.Value
	}
	return m
}

// orderedMap remembers the order in which keys were first inserted.
type orderedMap struct {
	keys   []string
	values map[string]string
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]string)}
}

func (m *orderedMap) get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// put updates key in place, or appends it if absent.
func (m *orderedMap) put(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap) remove(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

func (m *orderedMap) snapshot() Snapshot {
	s := make(Snapshot, 0, len(m.keys))
	for _, k := range m.keys {
		s = append(s, Entry{Key: k, Value: m.values[k]})
	}
	return s
}
