package gelf

import "encoding/json"

// OrderedMap is an insertion-order-preserving string keyed map of raw
// JSON values. Plain Go maps do not preserve iteration order, and
// meta/mechanism iteration order must match input key order so
// downstream exception-value ordering stays stable — so this is a small
// slice-backed map instead of the stdlib one.
type OrderedMap struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewOrderedMap returns an empty OrderedMap ready to use.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]json.RawMessage)}
}

// Set appends key (or overwrites its value in place if already present,
// preserving original position).
func (m *OrderedMap) Set(key string, value json.RawMessage) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Range calls fn for every entry in insertion order.
func (m *OrderedMap) Range(fn func(key string, value json.RawMessage)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}
