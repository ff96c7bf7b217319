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

// Package recourse evaluates production plans under uncertain demand with
// two-stage stochastic programming.
//
// A plan fixes the first-stage decisions (production quantities, extra
// capacity, workforce adjustments) before demand is known; second-stage
// recourse decisions (shortage and surplus handling) are made per demand
// scenario. The package builds the linear programs for the classical
// benchmarks: Expected Value (EV), expected result of the EV solution (EEV),
// Wait-and-See (WS) and the sampled two-stage deterministic equivalent (TS).
// The Multiple Replications Procedure (MRP) bounds the optimality gap of a
// candidate plan. Solving itself is delegated to an lpmodel.Solver.
package recourse

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters is wrapped by all parameter shape violations.
var ErrInvalidParameters = errors.New("invalid parameters")

// Parameters is the immutable description of a planning problem instance.
// All cost and requirement matrices must agree with the declared sizes; the
// shapes are checked once, before any model is built.
type Parameters struct {
	Products  int // number of products (n)
	Periods   int // number of planning periods (s)
	Resources int // number of shared resources (m), excluding workforce

	ProductionCost   [][]float64 // n x s, unit production cost per period
	CapacityCost     [][]float64 // m x s, cost of extra capacity
	WorkforceIncCost []float64   // s-1, cost of increasing the workforce level
	WorkforceDecCost []float64   // s-1, cost of decreasing the workforce level
	ShortageCost     [][]float64 // n x s, recourse cost of unmet demand
	SurplusCost      [][]float64 // n x s, recourse cost of carried surplus

	// Consumption holds the per-product requirement of each resource,
	// (m+1) x n: one row per shared resource followed by a final row with
	// the workforce consumption of each product.
	Consumption [][]float64
	Capacity    []float64   // m, base capacity per resource
	CapacityUB  [][]float64 // m x s, upper bound on extra capacity

	DemandMean [][]float64 // n x s
	DemandStd  [][]float64 // n x s, used by the demand sampler
}

// Validate checks that every array shape is consistent with the declared
// sizes. It returns an error wrapping ErrInvalidParameters on the first
// violation found.
func (p *Parameters) Validate() error {
	if p.Products < 1 || p.Periods < 1 || p.Resources < 1 {
		return fmt.Errorf("%w: sizes must be positive, got n=%d s=%d m=%d",
			ErrInvalidParameters, p.Products, p.Periods, p.Resources)
	}
	n, s, m := p.Products, p.Periods, p.Resources

	matrices := []struct {
		name       string
		data       [][]float64
		rows, cols int
	}{
		{"ProductionCost", p.ProductionCost, n, s},
		{"CapacityCost", p.CapacityCost, m, s},
		{"ShortageCost", p.ShortageCost, n, s},
		{"SurplusCost", p.SurplusCost, n, s},
		{"Consumption", p.Consumption, m + 1, n},
		{"CapacityUB", p.CapacityUB, m, s},
		{"DemandMean", p.DemandMean, n, s},
		{"DemandStd", p.DemandStd, n, s},
	}
	for _, mt := range matrices {
		if err := checkMatrix(mt.name, mt.data, mt.rows, mt.cols); err != nil {
			return err
		}
	}

	vectors := []struct {
		name string
		data []float64
		want int
	}{
		{"WorkforceIncCost", p.WorkforceIncCost, s - 1},
		{"WorkforceDecCost", p.WorkforceDecCost, s - 1},
		{"Capacity", p.Capacity, m},
	}
	for _, v := range vectors {
		if len(v.data) != v.want {
			return fmt.Errorf("%w: %s has length %d, want %d",
				ErrInvalidParameters, v.name, len(v.data), v.want)
		}
	}
	return nil
}

func checkMatrix(name string, data [][]float64, rows, cols int) error {
	if len(data) != rows {
		return fmt.Errorf("%w: %s has %d rows, want %d", ErrInvalidParameters, name, len(data), rows)
	}
	for i, row := range data {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d",
				ErrInvalidParameters, name, i, len(row), cols)
		}
	}
	return nil
}

// checkSample validates that a scenario array has shape S x n x s with S >= 1.
func (p *Parameters) checkSample(samples [][][]float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: empty scenario sample", ErrInvalidParameters)
	}
	for k := range samples {
		if err := checkMatrix(fmt.Sprintf("sample[%d]", k), samples[k], p.Products, p.Periods); err != nil {
			return err
		}
	}
	return nil
}
