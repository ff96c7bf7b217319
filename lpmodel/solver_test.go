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

import (
	"math"
	"testing"
)

func approxEq(x, y float64) bool {
	return math.Abs(x-y) < 1e-9
}

func TestSimplexSolver_Statuses(t *testing.T) {
	testCases := []struct {
		name       string
		build      func() *Builder
		wantStatus Status
		wantObj    float64
	}{
		{
			name: "Optimal",
			build: func() *Builder {
				model := NewBuilder()
				x := model.NewNumVar(0, 4)
				model.Minimize(NewLinearExpr().AddTerm(x, 2).AddConstant(1))
				return model
			},
			wantStatus: StatusOptimal,
			wantObj:    1,
		},
		{
			name: "MaximizeWithOffset",
			build: func() *Builder {
				model := NewBuilder()
				x := model.NewNumVar(0, 4)
				model.Maximize(NewLinearExpr().AddTerm(x, 2).AddConstant(5))
				return model
			},
			wantStatus: StatusOptimal,
			wantObj:    13,
		},
		{
			name: "Infeasible",
			build: func() *Builder {
				model := NewBuilder()
				x := model.NewNumVar(0, math.Inf(1))
				model.AddLinearConstraint(x, math.Inf(-1), -1)
				model.Minimize(x)
				return model
			},
			wantStatus: StatusInfeasible,
		},
		{
			name: "Unbounded",
			build: func() *Builder {
				model := NewBuilder()
				x := model.NewNumVar(0, math.Inf(1))
				model.Maximize(x)
				return model
			},
			wantStatus: StatusUnbounded,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			m, err := test.build().Model()
			if err != nil {
				t.Fatalf("Model() returned with unexpected error %v", err)
			}
			res, err := SimplexSolver{}.Solve(m)
			if err != nil {
				t.Fatalf("Solve() returned with unexpected error %v", err)
			}
			if res.Status != test.wantStatus {
				t.Fatalf("Solve() status = %v, want %v", res.Status, test.wantStatus)
			}
			if test.wantStatus == StatusOptimal && !approxEq(res.Objective, test.wantObj) {
				t.Errorf("Solve() objective = %v, want %v", res.Objective, test.wantObj)
			}
		})
	}
}

func TestSimplexSolver_EqualityAndExpressionValue(t *testing.T) {
	model := NewBuilder()
	x := model.NewNumVar(0, math.Inf(1))
	y := model.NewNumVar(0, math.Inf(1))

	model.AddEquality(NewLinearExpr().Add(x).Add(y), NewConstant(10))
	model.AddLessOrEqual(x, NewConstant(3))
	model.Minimize(NewLinearExpr().Add(x).AddTerm(y, 2))

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	res, err := SimplexSolver{}.Solve(m)
	if err != nil {
		t.Fatalf("Solve() returned with unexpected error %v", err)
	}
	if !res.IsOptimal() {
		t.Fatalf("Solve() status = %v, want %v", res.Status, StatusOptimal)
	}
	if got := SolutionValue(res, x); !approxEq(got, 3) {
		t.Errorf("SolutionValue(x) = %v, want 3", got)
	}
	if got := SolutionValue(res, y); !approxEq(got, 7) {
		t.Errorf("SolutionValue(y) = %v, want 7", got)
	}
	sum := NewLinearExpr().Add(x).Add(y).AddConstant(1)
	if got := SolutionValue(res, sum); !approxEq(got, 11) {
		t.Errorf("SolutionValue(x+y+1) = %v, want 11", got)
	}
}

// The fix-and-resolve pattern: the constraint set is built once and only the
// bounds of a placeholder variable change between solves.
func TestSimplexSolver_FixAndResolve(t *testing.T) {
	model := NewBuilder()
	x := model.NewNumVar(0, math.Inf(1))
	d := model.NewNumVar(0, 0) // placeholder, refixed below
	model.AddGreaterOrEqual(x, d)
	model.Minimize(x)

	m, err := model.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}

	for _, want := range []float64{3, 7, 0.5} {
		model.Fix(d, want)
		res, err := SimplexSolver{}.Solve(m)
		if err != nil {
			t.Fatalf("Solve() returned with unexpected error %v", err)
		}
		if !res.IsOptimal() {
			t.Fatalf("Solve() status = %v, want %v", res.Status, StatusOptimal)
		}
		if got := res.Objective; !approxEq(got, want) {
			t.Errorf("Solve() objective with demand %v = %v, want %v", want, got, want)
		}
	}
}
