package er

// OrderedMap is a key-value container that preserves first-insertion order
// during iteration. Re-setting an existing key updates the value in place
// without changing the key's position.
//
// The zero value is not usable - use NewOrderedMap.
// OrderedMap is not safe for concurrent use without external synchronization.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

// Set stores value under key. The key keeps the position of its first insertion.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key and whether it exists.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[K, V]) Has(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of stored keys.
func (m *OrderedMap[K, V]) Len() int { return len(m.keys) }

// Keys returns the keys in first-insertion order.
// The returned slice is a copy and may be modified by the caller.
func (m *OrderedMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Index returns the zero-based insertion position of key, or -1 if absent.
func (m *OrderedMap[K, V]) Index(key K) int {
	for i, k := range m.keys {
		if k == key {
			return i
		}
	}
	return -1
}
