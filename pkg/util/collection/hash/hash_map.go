// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package hash

// Map defines a generic map implementation backed by a Go map of buckets.  This
// is a true hashtable in that collisions are handled gracefully using buckets,
// rather than simply discarding them.  Keys are additionally remembered in
// insertion order, such that iterating a map is deterministic.
type Map[K Hasher[K], V any] struct {
	// buckets maps hashcodes to *buckets* of items.
	buckets map[uint64]bucket[K, V]
	// keys in order of first insertion
	order []K
}

// NewMap creates a new HashMap with a given underlying capacity.
func NewMap[K Hasher[K], V any](size uint) *Map[K, V] {
	return &Map[K, V]{make(map[uint64]bucket[K, V], size), nil}
}

// Size returns the number of unique keys stored in this map.
func (p *Map[K, V]) Size() uint {
	return uint(len(p.order))
}

// Keys returns the keys of this map in the order they were first inserted.
func (p *Map[K, V]) Keys() []K {
	return p.order
}

// Insert a new item into this map, returning true if it was already contained
// and false otherwise.  When already contained, the value is replaced.
func (p *Map[K, V]) Insert(key K, value V) bool {
	hash := key.Hash()
	b := p.buckets[hash]
	//
	if i := b.find(key); i >= 0 {
		b.values[i] = value
		return true
	}
	//
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
	p.buckets[hash] = b
	p.order = append(p.order, key)
	//
	return false
}

// ContainsKey checks whether the given key is contained within this map, or not.
func (p *Map[K, V]) ContainsKey(key K) bool {
	b := p.buckets[key.Hash()]
	return b.find(key) >= 0
}

// Get the value associated with a given key, or return false otherwise.
func (p *Map[K, V]) Get(key K) (V, bool) {
	var empty V
	//
	b := p.buckets[key.Hash()]
	//
	if i := b.find(key); i >= 0 {
		return b.values[i], true
	}
	//
	return empty, false
}

// Keys sharing the same hashcode, together with their values.
type bucket[K Hasher[K], V any] struct {
	keys   []K
	values []V
}

// Determine the index of a key within this bucket, or -1 if it is absent.
func (b *bucket[K, V]) find(key K) int {
	for i, k := range b.keys {
		if key.Equals(k) {
			return i
		}
	}
	//
	return -1
}
