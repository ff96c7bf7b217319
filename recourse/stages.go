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

package recourse

import (
	"math"

	log "github.com/golang/glog"
	"github.com/operations-research/stochastic-planning/lpmodel"
)

// firstStage holds the first-stage decision grids. Every entry is a
// LinearArgument, so a grid can hold either model variables or fixed numeric
// values; the objective and constraint builders below work identically on
// both, which is what lets EEV and MRP mix a resolved plan with symbolic
// recourse variables in one expression.
type firstStage struct {
	X      [][]lpmodel.LinearArgument // n x s, production
	U      [][]lpmodel.LinearArgument // m x s, extra capacity used
	ZPlus  []lpmodel.LinearArgument   // s-1, workforce increase
	ZMinus []lpmodel.LinearArgument   // s-1, workforce decrease
}

// secondStage holds the recourse decision grids, always scenario-indexed:
// a deterministic model is the S==1 case of the same shape.
type secondStage struct {
	YPlus  [][][]lpmodel.LinearArgument // S x n x s, shortage
	YMinus [][][]lpmodel.LinearArgument // S x n x s, surplus
}

func newFirstStageVars(b *lpmodel.Builder, p *Parameters, vt lpmodel.VarType) firstStage {
	n, s, m := p.Products, p.Periods, p.Resources
	return firstStage{
		X:      argGrid2(varGrid2(b, n, s, 0, math.Inf(1), vt)),
		U:      argGrid2(varGrid2(b, m, s, 0, math.Inf(1), vt)),
		ZPlus:  argGrid1(varGrid1(b, s-1, 0, math.Inf(1), vt)),
		ZMinus: argGrid1(varGrid1(b, s-1, 0, math.Inf(1), vt)),
	}
}

func newSecondStageVars(b *lpmodel.Builder, p *Parameters, scenarios int, vt lpmodel.VarType) secondStage {
	n, s := p.Products, p.Periods
	return secondStage{
		YPlus:  argGrid3(varGrid3(b, scenarios, n, s, 0, math.Inf(1), vt)),
		YMinus: argGrid3(varGrid3(b, scenarios, n, s, 0, math.Inf(1), vt)),
	}
}

// firstStageObjective returns the first-stage cost expression: the weighted
// sum of each decision grid with its cost array. Given numeric grids the
// expression degenerates to a constant retrievable with Offset().
func firstStageObjective(p *Parameters, fs firstStage) *lpmodel.LinearExpr {
	e := lpmodel.NewLinearExpr()
	addWeighted2(e, fs.X, p.ProductionCost, 1)
	addWeighted2(e, fs.U, p.CapacityCost, 1)
	addWeighted1(e, fs.ZPlus, p.WorkforceIncCost, 1)
	addWeighted1(e, fs.ZMinus, p.WorkforceDecCost, 1)
	return e
}

// secondStageObjective returns the recourse cost averaged over the scenario
// dimension of `ss`, so the term is comparable for any scenario count.
func secondStageObjective(p *Parameters, ss secondStage) *lpmodel.LinearExpr {
	scale := 1 / float64(len(ss.YPlus))
	e := lpmodel.NewLinearExpr()
	for k := range ss.YPlus {
		addWeighted2(e, ss.YPlus[k], p.ShortageCost, scale)
		addWeighted2(e, ss.YMinus[k], p.SurplusCost, scale)
	}
	return e
}

// addFirstStageConstraints adds the deterministic constraints:
// resource capacity, workforce balance, and the extra-capacity bound.
func addFirstStageConstraints(b *lpmodel.Builder, p *Parameters, fs firstStage) {
	n, s, m := p.Products, p.Periods, p.Resources

	// Consumed resources must not exceed base plus extra capacity.
	for r := 0; r < m; r++ {
		for t := 0; t < s; t++ {
			lhs := lpmodel.NewLinearExpr()
			for j := 0; j < n; j++ {
				lhs.AddTerm(fs.X[j][t], p.Consumption[r][j])
			}
			rhs := lpmodel.NewConstant(p.Capacity[r]).Add(fs.U[r][t])
			b.AddLessOrEqual(lhs, rhs)
		}
	}

	// The net workforce change between consecutive periods matches the
	// workforce consumption of the production change.
	w := p.Consumption[m] // final row: workforce consumption per product
	for t := 0; t < s-1; t++ {
		diff := lpmodel.NewLinearExpr()
		for j := 0; j < n; j++ {
			diff.AddTerm(fs.X[j][t+1], w[j]).AddTerm(fs.X[j][t], -w[j])
		}
		b.AddEquality(lpmodel.NewLinearExpr().Add(fs.ZPlus[t]).AddTerm(fs.ZMinus[t], -1), diff)
	}

	// Extra capacity is bounded above.
	for r := 0; r < m; r++ {
		for t := 0; t < s; t++ {
			b.AddLessOrEqual(fs.U[r][t], lpmodel.NewConstant(p.CapacityUB[r][t]))
		}
	}
}

// addDemandBalance adds the recourse constraint linking production, carried
// surplus, shortage and surplus to demand for every scenario, product and
// period:
//
//	X + surplus(t-1) + Y+ - Y- == demand
//
// with zero surplus carried into the first period.
//
// When `demand` is nil, placeholder variables fixed at 0 are created and
// returned; the caller re-fixes them to successive scenario values with
// Builder.Fix, re-solving the same model. When `demand` holds data it is
// folded into the constraints directly and the returned grid is nil.
func addDemandBalance(b *lpmodel.Builder, p *Parameters, fs firstStage, ss secondStage, demand [][][]float64) [][][]lpmodel.Var {
	n, s := p.Products, p.Periods
	S := len(ss.YPlus)

	var placeholders [][][]lpmodel.Var
	if demand == nil {
		// Demand placeholders are continuous regardless of the variable
		// type configuration: they act as parameters, not decisions.
		placeholders = varGrid3(b, S, n, s, 0, 0, lpmodel.Continuous)
	}

	for k := 0; k < S; k++ {
		for j := 0; j < n; j++ {
			for t := 0; t < s; t++ {
				e := lpmodel.NewLinearExpr().
					Add(fs.X[j][t]).
					Add(ss.YPlus[k][j][t]).
					AddTerm(ss.YMinus[k][j][t], -1)
				if t > 0 {
					e.Add(ss.YMinus[k][j][t-1])
				}
				if demand == nil {
					e.AddTerm(placeholders[k][j][t], -1)
				} else {
					e.AddConstant(-demand[k][j][t])
				}
				b.AddEquality(e, lpmodel.NewConstant(0))
			}
		}
	}
	return placeholders
}

// Solution maps every variable group to its resolved numeric values.
// It is immutable after extraction and is consumed by downstream procedures
// as fixed data.
type Solution struct {
	Objective float64

	X      [][]float64 // n x s
	U      [][]float64 // m x s
	ZPlus  []float64   // s-1
	ZMinus []float64   // s-1

	YPlus  [][][]float64 // S x n x s
	YMinus [][][]float64 // S x n x s
}

// firstStage wraps the resolved first-stage values as constant grids so the
// shared objective and constraint builders can consume them.
func (sol *Solution) firstStage() firstStage {
	return firstStage{
		X:      constGrid2(sol.X),
		U:      constGrid2(sol.U),
		ZPlus:  constGrid1(sol.ZPlus),
		ZMinus: constGrid1(sol.ZMinus),
	}
}

// extractSolution resolves every stage grid against an optimal result.
// With `round` set the values are rounded to the nearest integer, matching
// an integer-configured run.
func extractSolution(res *lpmodel.Result, fs firstStage, ss secondStage, round bool) *Solution {
	value := func(la lpmodel.LinearArgument) float64 {
		v := lpmodel.SolutionValue(res, la)
		if round {
			return math.Round(v)
		}
		return v
	}

	sol := &Solution{
		Objective: res.Objective,
		X:         values2(fs.X, value),
		U:         values2(fs.U, value),
		ZPlus:     values1(fs.ZPlus, value),
		ZMinus:    values1(fs.ZMinus, value),
		YPlus:     values3(ss.YPlus, value),
		YMinus:    values3(ss.YMinus, value),
	}
	return sol
}

// Grid helpers. The model builders above are expressed against
// LinearArgument grids; these helpers create variable grids, wrap numeric
// data as constant grids, resolve grids to numbers and re-fix placeholder
// grids to new values.

func varGrid1(b *lpmodel.Builder, n int, lb, ub float64, vt lpmodel.VarType) []lpmodel.Var {
	vs := make([]lpmodel.Var, n)
	for i := range vs {
		vs[i] = b.NewVar(lb, ub, vt)
	}
	return vs
}

func varGrid2(b *lpmodel.Builder, rows, cols int, lb, ub float64, vt lpmodel.VarType) [][]lpmodel.Var {
	vs := make([][]lpmodel.Var, rows)
	for i := range vs {
		vs[i] = varGrid1(b, cols, lb, ub, vt)
	}
	return vs
}

func varGrid3(b *lpmodel.Builder, d0, d1, d2 int, lb, ub float64, vt lpmodel.VarType) [][][]lpmodel.Var {
	vs := make([][][]lpmodel.Var, d0)
	for i := range vs {
		vs[i] = varGrid2(b, d1, d2, lb, ub, vt)
	}
	return vs
}

func argGrid1(vs []lpmodel.Var) []lpmodel.LinearArgument {
	out := make([]lpmodel.LinearArgument, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func argGrid2(vs [][]lpmodel.Var) [][]lpmodel.LinearArgument {
	out := make([][]lpmodel.LinearArgument, len(vs))
	for i := range vs {
		out[i] = argGrid1(vs[i])
	}
	return out
}

func argGrid3(vs [][][]lpmodel.Var) [][][]lpmodel.LinearArgument {
	out := make([][][]lpmodel.LinearArgument, len(vs))
	for i := range vs {
		out[i] = argGrid2(vs[i])
	}
	return out
}

func constGrid1(vals []float64) []lpmodel.LinearArgument {
	out := make([]lpmodel.LinearArgument, len(vals))
	for i, v := range vals {
		out[i] = lpmodel.NewConstant(v)
	}
	return out
}

func constGrid2(vals [][]float64) [][]lpmodel.LinearArgument {
	out := make([][]lpmodel.LinearArgument, len(vals))
	for i := range vals {
		out[i] = constGrid1(vals[i])
	}
	return out
}

func addWeighted1(e *lpmodel.LinearExpr, grid []lpmodel.LinearArgument, cost []float64, scale float64) {
	if len(grid) != len(cost) {
		log.Fatalf("grid and cost must be the same length: %v != %v", len(grid), len(cost))
	}
	for i := range grid {
		e.AddTerm(grid[i], cost[i]*scale)
	}
}

func addWeighted2(e *lpmodel.LinearExpr, grid [][]lpmodel.LinearArgument, cost [][]float64, scale float64) {
	if len(grid) != len(cost) {
		log.Fatalf("grid and cost must be the same length: %v != %v", len(grid), len(cost))
	}
	for i := range grid {
		addWeighted1(e, grid[i], cost[i], scale)
	}
}

func values1(grid []lpmodel.LinearArgument, value func(lpmodel.LinearArgument) float64) []float64 {
	out := make([]float64, len(grid))
	for i := range grid {
		out[i] = value(grid[i])
	}
	return out
}

func values2(grid [][]lpmodel.LinearArgument, value func(lpmodel.LinearArgument) float64) [][]float64 {
	out := make([][]float64, len(grid))
	for i := range grid {
		out[i] = values1(grid[i], value)
	}
	return out
}

func values3(grid [][][]lpmodel.LinearArgument, value func(lpmodel.LinearArgument) float64) [][][]float64 {
	out := make([][][]float64, len(grid))
	for i := range grid {
		out[i] = values2(grid[i], value)
	}
	return out
}

func fixGrid2(b *lpmodel.Builder, vars [][]lpmodel.Var, values [][]float64) {
	if len(vars) != len(values) {
		log.Fatalf("vars and values must be the same length: %v != %v", len(vars), len(values))
	}
	for i := range vars {
		if len(vars[i]) != len(values[i]) {
			log.Fatalf("vars and values must be the same length: %v != %v", len(vars[i]), len(values[i]))
		}
		for j := range vars[i] {
			b.Fix(vars[i][j], values[i][j])
		}
	}
}

func fixGrid3(b *lpmodel.Builder, vars [][][]lpmodel.Var, values [][][]float64) {
	if len(vars) != len(values) {
		log.Fatalf("vars and values must be the same length: %v != %v", len(vars), len(values))
	}
	for i := range vars {
		fixGrid2(b, vars[i], values[i])
	}
}
