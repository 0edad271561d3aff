package sampler

import "math/rand"

// Keyed is a conditional distribution table: each key owns its own
// distribution. It models draws that depend on an earlier draw, such as a
// campaign conditioned on an acquisition source.
type Keyed[K comparable, T any] struct {
	keys  []K
	dists map[K]*Distribution[T]
}

// NewKeyed returns an empty table.
func NewKeyed[K comparable, T any]() *Keyed[K, T] {
	return &Keyed[K, T]{dists: make(map[K]*Distribution[T])}
}

// Set assigns the distribution for key. Keys keep their first insertion order.
func (k *Keyed[K, T]) Set(key K, d *Distribution[T]) {
	if _, ok := k.dists[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.dists[key] = d
}

// Get returns the distribution for key.
func (k *Keyed[K, T]) Get(key K) (*Distribution[T], bool) {
	d, ok := k.dists[key]
	return d, ok
}

// Keys returns the keys in insertion order.
func (k *Keyed[K, T]) Keys() []K {
	return append([]K(nil), k.keys...)
}

// SampleFor draws from the distribution owned by key. It reports false when
// the key is unknown.
func (k *Keyed[K, T]) SampleFor(r *rand.Rand, key K) (T, bool) {
	d, ok := k.dists[key]
	if !ok {
		var zero T
		return zero, false
	}
	return d.Sample(r), true
}
