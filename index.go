package main

// orderedIndex is a small insertion-ordered, non-concurrent associative
// index. Lookups and inserts are O(1); deletes and iteration are O(n) in
// the number of entries, which is fine at IRC server/channel scale. It
// exists because no ordered map is available anywhere in the dependency
// pack this project draws on, and a deterministic iteration order is
// needed for RPL_NAMREPLY/RPL_WHOREPLY/LIST output and for reproducible
// test vectors.
type orderedIndex[K comparable, V any] struct {
	values map[K]V
	order  []K
}

func newOrderedIndex[K comparable, V any]() *orderedIndex[K, V] {
	return &orderedIndex[K, V]{values: make(map[K]V)}
}

// Get looks up key, reporting whether it was present.
func (idx *orderedIndex[K, V]) Get(key K) (V, bool) {
	v, ok := idx.values[key]
	return v, ok
}

// Set inserts or updates key. A fresh key is appended to the iteration
// order; updating an existing key leaves its position unchanged.
func (idx *orderedIndex[K, V]) Set(key K, value V) {
	if _, exists := idx.values[key]; !exists {
		idx.order = append(idx.order, key)
	}
	idx.values[key] = value
}

// Delete removes key, if present.
func (idx *orderedIndex[K, V]) Delete(key K) {
	if _, exists := idx.values[key]; !exists {
		return
	}
	delete(idx.values, key)
	for i, k := range idx.order {
		if k == key {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (idx *orderedIndex[K, V]) Len() int {
	return len(idx.order)
}

// Keys returns a snapshot of the keys in insertion order.
func (idx *orderedIndex[K, V]) Keys() []K {
	out := make([]K, len(idx.order))
	copy(out, idx.order)
	return out
}

// Each calls fn once per entry, in insertion order, over a snapshot of the
// key order taken before the first call. This makes it safe for fn to
// delete the entry it was just called with (or any other entry) — deleted
// keys are simply skipped when their turn in the snapshot comes up.
func (idx *orderedIndex[K, V]) Each(fn func(K, V)) {
	keys := idx.Keys()
	for _, k := range keys {
		if v, ok := idx.values[k]; ok {
			fn(k, v)
		}
	}
}
