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
package scalar

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cast converts a Go value into a scalar expression.  Integers, decimal
// strings, decimals and (for convenience) floats are converted into literals,
// whilst existing scalars are returned as is.  Floats are converted through
// their shortest decimal representation, so 0.1 becomes exactly 0.1.
func Cast(value any) (Scalar, error) {
	switch v := value.(type) {
	case Scalar:
		return v, nil
	case decimal.Decimal:
		return Lit(v), nil
	case int:
		return LitInt(int64(v)), nil
	case int64:
		return LitInt(v), nil
	case float64:
		return LitString(fmt.Sprint(v))
	case string:
		return LitString(v)
	default:
		return nil, fmt.Errorf("cannot cast %v (%T) to scalar", value, value)
	}
}

// MustCast is a variant of Cast which panics on failure.
func MustCast(value any) Scalar {
	s, err := Cast(value)
	if err != nil {
		panic(err.Error())
	}
	//
	return s
}
