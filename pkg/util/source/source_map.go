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
package source

import "fmt"

// Span identifies a contiguous range of characters within a source file, as a
// half-open interval of rune indices.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span covering [start,end), which must not be inverted.
func NewSpan(start int, end int) Span {
	if start > end {
		panic(fmt.Sprintf("inverted span %d-%d", start, end))
	}
	//
	return Span{start, end}
}

// Start returns the index of the first character covered.
func (p Span) Start() int {
	return p.start
}

// End returns the index one past the last character covered.
func (p Span) End() int {
	return p.end
}

// Length returns the number of characters covered.
func (p Span) Length() int {
	return p.end - p.start
}

// Map maps terms parsed from a source file to the spans of text they originated
// from.  This is used when decoding fails part way through a tree, so the
// offending subterm can be highlighted.
type Map[T comparable] struct {
	mapping map[T]Span
	srcfile *File
}

// NewSourceMap constructs an initially empty source map for a given file.
func NewSourceMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{make(map[T]Span), srcfile}
}

// Put registers a new item with a given span.  If the item is already
// registered, the original span is retained.
func (p *Map[T]) Put(item T, span Span) {
	if _, ok := p.mapping[item]; !ok {
		p.mapping[item] = span
	}
}

// Has checks whether a given item is contained within this source map.
func (p *Map[T]) Has(item T) bool {
	_, ok := p.mapping[item]
	return ok
}

// SyntaxError constructs a syntax error for the given item.  Items without a
// recorded span are reported against the start of the file.
func (p *Map[T]) SyntaxError(item T, msg string) *SyntaxError {
	span, ok := p.mapping[item]
	//
	if !ok {
		span = Span{0, 0}
	}
	//
	return p.srcfile.SyntaxError(span, msg)
}
