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
package failure

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Kind identifies the category of a compilation failure.  Every error raised by
// the compiler falls into exactly one category.
type Kind uint8

const (
	// Unknown is the kind of any error not raised by the compiler itself.
	Unknown Kind = iota
	// Malformed indicates an ill-formed expression (e.g. an invalid slice).
	Malformed
	// Unbound indicates a reference to a variable for which no value is known.
	Unbound
	// Reassignment indicates an attempt to bind a variable twice.
	Reassignment
	// Discontinuous indicates adjacent segments of a waveform disagree at their
	// shared boundary.
	Discontinuous
	// Unsupported indicates a construct cannot be lowered to the requested
	// representation.
	Unsupported
	// ZeroDivision indicates division by zero.
	ZeroDivision
	// Unserializable indicates an attempt to serialise native code.
	Unserializable
	// OutOfBounds indicates a lowered value exceeds device capabilities.
	OutOfBounds
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed expression"
	case Unbound:
		return "unbound variable"
	case Reassignment:
		return "reassignment conflict"
	case Discontinuous:
		return "discontinuity"
	case Unsupported:
		return "unsupported construct"
	case ZeroDivision:
		return "division by zero"
	case Unserializable:
		return "serialization unsupported"
	case OutOfBounds:
		return "bounds violation"
	default:
		return "unknown"
	}
}

// KindOf determines the kind of a given error, which may have been wrapped with
// additional context.
func KindOf(err error) Kind {
	var (
		malformed   *MalformedExpression
		unbound     *UnboundVariable
		reassigned  *ReassignmentConflict
		discontinue *Discontinuity
		unsupported *UnsupportedConstruct
		division    *DivisionByZero
		serialize   *SerializationUnsupported
		bounds      *BoundsViolation
	)
	//
	switch {
	case err == nil:
		return Unknown
	case errors.As(err, &malformed):
		return Malformed
	case errors.As(err, &unbound):
		return Unbound
	case errors.As(err, &reassigned):
		return Reassignment
	case errors.As(err, &discontinue):
		return Discontinuous
	case errors.As(err, &unsupported):
		return Unsupported
	case errors.As(err, &division):
		return ZeroDivision
	case errors.As(err, &serialize):
		return Unserializable
	case errors.As(err, &bounds):
		return OutOfBounds
	default:
		return Unknown
	}
}

// ============================================================================
// Malformed Expression
// ============================================================================

// MalformedExpression is raised for expressions which are structurally invalid,
// such as slicing with a start after the stop.
type MalformedExpression struct {
	// Expression is the rendering of the offending expression (if any).
	Expression string
	// Message describes what is wrong.
	Message string
}

// Malformedf constructs a malformed expression error with a formatted message.
func Malformedf(expr fmt.Stringer, format string, args ...any) *MalformedExpression {
	var text string
	//
	if expr != nil {
		text = expr.String()
	}
	//
	return &MalformedExpression{text, fmt.Sprintf(format, args...)}
}

func (p *MalformedExpression) Error() string {
	if p.Expression == "" {
		return fmt.Sprintf("malformed expression: %s", p.Message)
	}
	//
	return fmt.Sprintf("malformed expression %s: %s", p.Expression, p.Message)
}

// ============================================================================
// Unbound Variable
// ============================================================================

// UnboundVariable is raised when one or more variables are required to have
// values, but do not.
type UnboundVariable struct {
	// Scalars identifies the unresolved scalar variables.
	Scalars []string
	// Vectors identifies the unresolved run-time vectors.
	Vectors []string
}

// Names returns all missing names, scalars first.
func (p *UnboundVariable) Names() []string {
	names := make([]string, 0, len(p.Scalars)+len(p.Vectors))
	names = append(names, p.Scalars...)
	//
	return append(names, p.Vectors...)
}

func (p *UnboundVariable) Error() string {
	return fmt.Sprintf("missing assignment for variables: [%s]", strings.Join(p.Names(), ", "))
}

// ============================================================================
// Reassignment Conflict
// ============================================================================

// ReassignmentConflict is raised on any attempt to bind a variable which is
// already bound, either through assignment or through a recorded value.
type ReassignmentConflict struct {
	// Name of the variable in question
	Name string
	// Existing value of the variable (rendered).
	Existing string
	// Attempted new value of the variable (rendered).
	Attempted string
}

func (p *ReassignmentConflict) Error() string {
	return fmt.Sprintf("variable %s already assigned to %s (cannot assign %s)", p.Name, p.Existing, p.Attempted)
}

// ============================================================================
// Discontinuity
// ============================================================================

// Binding records the value of a variable in scope when a diagnostic was
// produced.
type Binding struct {
	Name  string
	Value string
}

// Discontinuity is raised when two adjacent segments disagree at their shared
// boundary.  It identifies the absolute time at which this occurs, the two
// symbolic expressions involved, and the values of every variable used in
// either expression.
type Discontinuity struct {
	// Time (absolute) at which the discontinuity arises.
	Time decimal.Decimal
	// Left is the expression for the value at the end of the earlier segment.
	Left string
	// LeftValue is the evaluated value of Left.
	LeftValue decimal.Decimal
	// Right is the expression for the value at the start of the later segment.
	Right string
	// RightValue is the evaluated value of Right.
	RightValue decimal.Decimal
	// Bindings of all variables used in either expression.
	Bindings []Binding
}

func (p *Discontinuity) Error() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("discontinuity at time %s: left %s = %s, right %s = %s",
		p.Time.String(), p.Left, p.LeftValue.String(), p.Right, p.RightValue.String()))
	//
	if len(p.Bindings) > 0 {
		builder.WriteString(" where")
		//
		for i, b := range p.Bindings {
			if i != 0 {
				builder.WriteString(",")
			}
			//
			builder.WriteString(fmt.Sprintf(" %s = %s", b.Name, b.Value))
		}
	}
	//
	return builder.String()
}

// ============================================================================
// Unsupported Construct
// ============================================================================

// UnsupportedConstruct is raised when a construct cannot be lowered into the
// target representation.
type UnsupportedConstruct struct {
	// Construct is the rendering of the offending node.
	Construct string
	// Target identifies the representation being targeted.
	Target string
	// Message describes why this is not supported.
	Message string
}

// Unsupportedf constructs an unsupported construct error with a formatted
// message.
func Unsupportedf(node fmt.Stringer, target string, format string, args ...any) *UnsupportedConstruct {
	return &UnsupportedConstruct{node.String(), target, fmt.Sprintf(format, args...)}
}

func (p *UnsupportedConstruct) Error() string {
	return fmt.Sprintf("cannot lower %s to %s: %s", p.Construct, p.Target, p.Message)
}

// ============================================================================
// Division By Zero
// ============================================================================

// DivisionByZero is raised when a divisor evaluates to zero.
type DivisionByZero struct {
	// Expression is the rendering of the offending division.
	Expression string
}

func (p *DivisionByZero) Error() string {
	return fmt.Sprintf("division by zero in %s", p.Expression)
}

// ============================================================================
// Serialization Unsupported
// ============================================================================

// SerializationUnsupported is raised when attempting to encode a node which
// wraps native code.
type SerializationUnsupported struct {
	// Node is a rendering of the node in question.
	Node string
}

func (p *SerializationUnsupported) Error() string {
	return fmt.Sprintf("cannot serialize native code: %s", p.Node)
}

// ============================================================================
// Bounds Violation
// ============================================================================

// BoundsViolation is raised when a lowered channel takes a value outside the
// range supported by the target device.
type BoundsViolation struct {
	// Channel identifies the offending channel.
	Channel string
	// Time at which the value was observed.
	Time decimal.Decimal
	// Value observed
	Value decimal.Decimal
	// Min is the smallest permitted value.
	Min decimal.Decimal
	// Max is the largest permitted value.
	Max decimal.Decimal
}

func (p *BoundsViolation) Error() string {
	return fmt.Sprintf("%s takes value %s at time %s outside of permitted range [%s, %s]", p.Channel,
		p.Value.String(), p.Time.String(), p.Min.String(), p.Max.String())
}
