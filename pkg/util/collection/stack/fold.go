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

// Children returns the immediate children of a given node, in left-to-right
// order.  Returning nil indicates the node should be treated as a leaf (e.g.
// because its result is already memoised).
type Children[N any] func(N) []N

// Combine computes the result for a node from the results of its children
// (given in the same order as returned by the corresponding Children function).
type Combine[N any, T any] func(N, []T) (T, error)

type frame[N any] struct {
	node     N
	arity    uint
	expanded bool
}

// Fold performs a post-order traversal of the tree rooted at a given node,
// combining the results of children into the result of their parent.  The
// traversal uses an explicit worklist, rather than recursion, so that
// arbitrarily deep trees (e.g. long chains of nested appends) can be processed.
// Children are always combined strictly left-to-right, which passes threading
// state through sibling evaluation order rely upon.  The first error reported
// by a combinator aborts the traversal.
func Fold[N any, T any](root N, children Children[N], combine Combine[N, T]) (T, error) {
	var (
		empty   T
		work    = NewStack[frame[N]]()
		results = NewStack[T]()
	)
	//
	work.Push(frame[N]{node: root})
	//
	for !work.IsEmpty() {
		top := work.Pop()
		//
		if !top.expanded {
			kids := children(top.node)
			// Revisit this node once all children are done
			work.Push(frame[N]{top.node, uint(len(kids)), true})
			//
			for i := len(kids) - 1; i >= 0; i-- {
				work.Push(frame[N]{node: kids[i]})
			}
			//
			continue
		}
		// All children completed, so combine them.
		args := results.PopN(top.arity)
		//
		res, err := combine(top.node, args)
		if err != nil {
			return empty, err
		}
		//
		results.Push(res)
	}
	//
	return results.Pop(), nil
}

// MustFold is a variant of Fold for combinators which cannot fail.
func MustFold[N any, T any](root N, children Children[N], combine func(N, []T) T) T {
	res, _ := Fold(root, children, func(n N, args []T) (T, error) {
		return combine(n, args), nil
	})
	//
	return res
}
