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

import (
	"hash/fnv"
)

// A reasonably simple hashset implementation which permits collisions.  Observe
// that the structural hash of an IR node is not assumed to uniquely identify
// it, hence every bucket falls back to structural equality.

// Hasher provides a generic definition of a hashing function suitable for use
// within the hashset.  This additionally includes equality, since colliding
// items must still be distinguished.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Seed returns the initial state for an FNV1a hash over a sequence of words,
// seeded with a tag identifying the kind of thing being hashed.  Tags ensure
// that, for example, (add x y) and (mul x y) hash differently.
func Seed(tag string) uint64 {
	return Mix(offset64, String(tag))
}

// Mix folds a given word into a running FNV1a hash.
func Mix(hash uint64, word uint64) uint64 {
	for i := 0; i < 8; i++ {
		hash ^= (word >> (8 * i)) & 0xff
		hash *= prime64
	}
	//
	return hash
}

// MixAll folds zero or more words into a running FNV1a hash, in order.
func MixAll(hash uint64, words ...uint64) uint64 {
	for _, w := range words {
		hash = Mix(hash, w)
	}
	//
	return hash
}

// Unordered combines a set of hashes such that the result is independent of the
// order in which they are given.  This is used for collections with set
// semantics (e.g. the operands of min / max).
func Unordered(hash uint64, words ...uint64) uint64 {
	var sum, xor uint64
	//
	for _, w := range words {
		sum += w
		xor ^= w
	}
	//
	return MixAll(hash, uint64(len(words)), sum, xor)
}

// String generates a 64-bit hashcode from a given string.
func String(s string) uint64 {
	hash := fnv.New64a()
	hash.Write([]byte(s))
	// Done
	return hash.Sum64()
}
