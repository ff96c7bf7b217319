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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status reports the outcome of one optimize pass.
type Status int

const (
	// StatusOptimal means an optimal solution was found; the Result carries
	// the objective value and every variable's value.
	StatusOptimal Status = iota
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded means the objective can be improved without limit.
	StatusUnbounded
	// StatusAbnormal means the solve terminated without a conclusive answer.
	StatusAbnormal
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusAbnormal:
		return "ABNORMAL"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result holds the outcome of solving a Model. Values is indexed by VarIndex
// and is only populated when the Status is StatusOptimal.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
}

// IsOptimal reports whether the solve found an optimal solution.
func (r *Result) IsOptimal() bool {
	return r.Status == StatusOptimal
}

// SolutionValue returns the value of the LinearArgument `la` in the result.
// It must only be called on an optimal result.
func SolutionValue(r *Result, la LinearArgument) float64 {
	return la.evaluateSolutionValue(r)
}

// Solver is the external solving capability: one optimize pass over a built
// model. Implementations hold no per-model state, so a caller can mutate
// variable bounds on the model and call Solve again without any rebuild or
// cleanup between passes.
type Solver interface {
	Solve(m *Model) (*Result, error)
}

// SimplexSolver is the bundled Solver backend, built on gonum's dense simplex
// method. It solves the continuous relaxation of the model: Integer variable
// types are recorded on the model for MIP-capable backends but are not
// enforced here.
type SimplexSolver struct {
	// Tol is the tolerance passed to the simplex routine. When zero, a
	// default of 1e-10 is used.
	Tol float64
}

func (s SimplexSolver) tol() float64 {
	if s.Tol > 0 {
		return s.Tol
	}
	return 1e-10
}

// Solve assembles the model into general LP form (inequality rows from
// ranged constraints and finite variable bounds, equality rows from fixed
// rows and fixed variables) and runs one simplex pass over it.
func (s SimplexSolver) Solve(m *Model) (*Result, error) {
	n := len(m.Variables)
	if n == 0 {
		return nil, errors.New("model has no variables")
	}

	sign := 1.0
	if m.Objective.Maximize {
		sign = -1
	}
	c := make([]float64, n)
	for k, ind := range m.Objective.VarIndices {
		c[ind] += sign * m.Objective.Coeffs[k]
	}

	var gData, h []float64 // inequality rows: gData row <= h
	var aData, b []float64 // equality rows: aData row == b
	var gRows, aRows int

	addIneq := func(row []float64, rhs float64) {
		gData = append(gData, row...)
		h = append(h, rhs)
		gRows++
	}
	addEq := func(row []float64, rhs float64) {
		aData = append(aData, row...)
		b = append(b, rhs)
		aRows++
	}
	negated := func(row []float64) []float64 {
		neg := make([]float64, len(row))
		for i, v := range row {
			neg[i] = -v
		}
		return neg
	}

	for i, ct := range m.Constraints {
		if ct.Bounds.IsEmpty() {
			return nil, fmt.Errorf("constraint %d has empty bounds %+v", i, ct.Bounds)
		}
		row := make([]float64, n)
		for k, ind := range ct.VarIndices {
			row[ind] += ct.Coeffs[k]
		}
		if ct.Bounds.IsFixed() {
			addEq(row, ct.Bounds.Lower)
			continue
		}
		if !math.IsInf(ct.Bounds.Upper, 1) {
			addIneq(row, ct.Bounds.Upper)
		}
		if !math.IsInf(ct.Bounds.Lower, -1) {
			addIneq(negated(row), -ct.Bounds.Lower)
		}
	}

	for i, v := range m.Variables {
		if v.Bounds.IsEmpty() {
			return nil, fmt.Errorf("variable %d has empty bounds %+v", i, v.Bounds)
		}
		row := make([]float64, n)
		row[i] = 1
		if v.Bounds.IsFixed() {
			addEq(row, v.Bounds.Lower)
			continue
		}
		if !math.IsInf(v.Bounds.Upper, 1) {
			addIneq(row, v.Bounds.Upper)
		}
		if !math.IsInf(v.Bounds.Lower, -1) {
			addIneq(negated(row), -v.Bounds.Lower)
		}
	}

	if gRows == 0 {
		// Convert requires an inequality block; a zero row <= 0 is always
		// satisfied.
		addIneq(make([]float64, n), 0)
	}
	g := mat.NewDense(gRows, n, gData)
	var a mat.Matrix
	if aRows > 0 {
		a = mat.NewDense(aRows, n, aData)
	}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	optF, optX, err := lp.Simplex(cStd, aStd, bStd, s.tol(), nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &Result{Status: StatusInfeasible}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return &Result{Status: StatusUnbounded}, nil
	case err != nil:
		return nil, fmt.Errorf("simplex failed: %w", err)
	}

	// Convert splits every free variable x into x+ - x-; recover the
	// original variables from the first 2n standard-form columns.
	values := make([]float64, n)
	for i := range values {
		values[i] = optX[i] - optX[n+i]
	}

	return &Result{
		Status:    StatusOptimal,
		Objective: sign*optF + m.Objective.Offset,
		Values:    values,
	}, nil
}
