// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lpmodel

import "math"

// Interval stores the closed interval `[Lower,Upper]` used for variable and
// constraint bounds. If `Lower` is greater than `Upper`, the interval is
// considered empty. Either end may be infinite.
type Interval struct {
	Lower float64
	Upper float64
}

// Unbounded returns the interval `(-inf,+inf)`.
func Unbounded() Interval {
	return Interval{math.Inf(-1), math.Inf(1)}
}

// NonNegative returns the interval `[0,+inf)`.
func NonNegative() Interval {
	return Interval{0, math.Inf(1)}
}

// Singleton returns the interval `[val,val]`.
func Singleton(val float64) Interval {
	return Interval{val, val}
}

// IsEmpty reports whether the interval contains no value.
func (i Interval) IsEmpty() bool {
	return i.Lower > i.Upper
}

// IsFixed reports whether the interval pins a single finite value, i.e. the
// variable or row it bounds acts as a parameter.
func (i Interval) IsFixed() bool {
	return i.Lower == i.Upper && !math.IsInf(i.Lower, 0)
}

// Offset adds a delta to both ends of the interval. Infinite ends are left
// untouched.
func (i Interval) Offset(delta float64) Interval {
	lo, hi := i.Lower, i.Upper
	if !math.IsInf(lo, 0) {
		lo += delta
	}
	if !math.IsInf(hi, 0) {
		hi += delta
	}
	return Interval{lo, hi}
}
