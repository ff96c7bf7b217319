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

// The productionplanning command runs the stochastic evaluation benchmarks on
// a small two-product planning instance: the Expected Value plan, its
// expected cost under sampled demand (EEV), the Wait-and-See bound, the
// sampled two-stage model (TS) and an MRP confidence bound on the optimality
// gap of the EV plan.
package main

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/operations-research/stochastic-planning/recourse"
	"gonum.org/v1/gonum/stat"
)

const (
	scenarios  = 30
	mrpSamples = 20
	mrpReps    = 5
	confidence = 0.95
	seed       = 12345
)

func planningInstance() *recourse.Parameters {
	return &recourse.Parameters{
		Products:  2,
		Periods:   3,
		Resources: 2,

		ProductionCost:   [][]float64{{2, 2, 2.5}, {3, 3, 3}},
		CapacityCost:     [][]float64{{5, 5, 5}, {6, 6, 6}},
		WorkforceIncCost: []float64{4, 4},
		WorkforceDecCost: []float64{3, 3},
		ShortageCost:     [][]float64{{40, 40, 40}, {50, 50, 50}},
		SurplusCost:      [][]float64{{1, 1, 1}, {1, 1, 1}},

		// Two shared resources plus the workforce requirement row.
		Consumption: [][]float64{{1, 2}, {2, 1}, {1, 1}},
		Capacity:    []float64{120, 100},
		CapacityUB:  [][]float64{{20, 20, 20}, {20, 20, 20}},

		DemandMean: [][]float64{{40, 45, 50}, {30, 30, 35}},
		DemandStd:  [][]float64{{5, 6, 7}, {4, 4, 5}},
	}
}

func productionPlanning() error {
	pars := planningInstance()
	sampler := recourse.NewGaussianSampler(pars, seed)
	eval, err := recourse.NewEvaluator(pars, recourse.Config{Sampler: sampler})
	if err != nil {
		return fmt.Errorf("failed to create the evaluator: %w", err)
	}

	evSol, err := eval.EV()
	if err != nil {
		return fmt.Errorf("failed to solve the expected value model: %w", err)
	}
	fmt.Printf("EV objective: %.2f\n", evSol.Objective)

	samples := sampler.Sample(scenarios, false)

	eev, err := eval.EEV(evSol, samples)
	if err != nil {
		return fmt.Errorf("failed to evaluate the EV plan: %w", err)
	}
	fmt.Printf("EEV mean over %d/%d feasible scenarios: %.2f\n", len(eev), scenarios, stat.Mean(eev, nil))

	ws, err := eval.WS(samples)
	if err != nil {
		return fmt.Errorf("failed to run wait-and-see: %w", err)
	}
	fmt.Printf("WS mean over %d/%d feasible scenarios: %.2f\n", len(ws), scenarios, stat.Mean(ws, nil))

	ts, err := eval.TS(samples)
	if err != nil {
		return fmt.Errorf("failed to solve the two-stage model: %w", err)
	}
	fmt.Printf("TS objective: %.2f (shortage probability %.3f)\n", ts.Solution.Objective, ts.ShortageProb)

	fmt.Printf("EVPI estimate: %.2f\n", ts.Solution.Objective-stat.Mean(ws, nil))
	fmt.Printf("VSS estimate: %.2f\n", stat.Mean(eev, nil)-ts.Solution.Objective)

	bound, err := eval.MRP(evSol, mrpSamples, mrpReps, confidence)
	if err != nil {
		return fmt.Errorf("failed to run the multiple replications procedure: %w", err)
	}
	fmt.Printf("MRP %.0f%% gap bound for the EV plan: %.2f\n", confidence*100, bound)

	return nil
}

func main() {
	if err := productionPlanning(); err != nil {
		glog.Exitf("productionPlanning returned with error: %v", err)
	}
}
