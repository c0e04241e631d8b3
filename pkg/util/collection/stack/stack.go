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
package stack

// Stack represents a reusable LIFO stack which is implemented using an array.
// It provides the explicit worklist used by tree traversals which must not
// consume goroutine stack in proportion to the depth of the tree.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty stack
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// IsEmpty checks whether or not there are still items on the stack
func (p *Stack[T]) IsEmpty() bool {
	return len(p.items) == 0
}

// Len returns the number of items on the stack.
func (p *Stack[T]) Len() uint {
	return uint(len(p.items))
}

// Peek at nth item from top of stack.
func (p *Stack[T]) Peek(offset uint) T {
	var n = len(p.items) - int(offset) - 1
	//
	if n < 0 {
		panic("peek out-of-bounds")
	}
	//
	return p.items[n]
}

// Push a new item onto the stack
func (p *Stack[T]) Push(item T) {
	p.items = append(p.items, item)
}

// PushAll pushes zero or more items in order onto the stack, such that the last
// item is the next to be popped.
func (p *Stack[T]) PushAll(items []T) {
	p.items = append(p.items, items...)
}

// PushReversed pushes zero or more items in reverse order onto the stack, such
// that the first item is the next to be popped.
func (p *Stack[T]) PushReversed(items []T) {
	for i := len(items) - 1; i >= 0; i-- {
		p.items = append(p.items, items[i])
	}
}

// Pop the last item off the stack
func (p *Stack[T]) Pop() T {
	var n = len(p.items)
	//
	if n == 0 {
		panic("cannot pop from empty stack")
	}
	// Get last item
	item := p.items[n-1]
	// Remove last item
	p.items = p.items[:n-1]
	//
	return item
}

// PopN removes the top n items from the stack, returning them in the order in
// which they were originally pushed.
func (p *Stack[T]) PopN(n uint) []T {
	var m = len(p.items) - int(n)
	//
	if m < 0 {
		panic("cannot pop beyond bottom of stack")
	}
	// Copy out so the caller cannot observe later pushes.
	items := make([]T, n)
	copy(items, p.items[m:])
	p.items = p.items[:m]
	//
	return items
}
