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
package analysis

import (
	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// Channels determines every channel used anywhere within a sequence, in order
// of first use.
func Channels(seq analog.SequenceExpr) []analog.ChannelKey {
	var (
		channels = hash.NewSet[analog.ChannelKey](16)
		worklist = stack.NewStack[analog.SequenceExpr]()
	)
	//
	worklist.Push(seq)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		if s, ok := next.(*analog.Sequence); ok {
			for _, c := range s.Couplings() {
				pulseChannels(c, s.Pulses[c], channels)
			}
		}
		//
		worklist.PushReversed(analog.SequenceChildren(next))
	}
	//
	return channels.Items()
}

func pulseChannels(coupling analog.LevelCoupling, pulse analog.PulseExpr, channels *hash.Set[analog.ChannelKey]) {
	worklist := stack.NewStack[analog.PulseExpr]()
	worklist.Push(pulse)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		if p, ok := next.(*analog.Pulse); ok {
			for _, name := range p.Names() {
				for _, target := range p.Fields[name].Targets() {
					channels.Insert(analog.ChannelKey{Coupling: coupling, Field: name, Target: target})
				}
			}
		}
		//
		worklist.PushReversed(analog.PulseChildren(next))
	}
}
