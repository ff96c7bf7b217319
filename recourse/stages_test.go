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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/operations-research/stochastic-planning/lpmodel"
)

func approxEq(x, y float64) bool {
	return math.Abs(x-y) < 1e-9
}

func TestFirstStageObjective_ConstantPlan(t *testing.T) {
	p := testParameters()
	sol := &Solution{
		X:      [][]float64{{5, 6}},
		U:      [][]float64{{0, 0}},
		ZPlus:  []float64{1},
		ZMinus: []float64{0},
	}

	// Production 5+6 at unit cost plus one workforce increase at cost 1.
	got := firstStageObjective(p, sol.firstStage()).Offset()
	if want := 12.0; !approxEq(got, want) {
		t.Errorf("firstStageObjective().Offset() = %v, want %v", got, want)
	}
}

// The recourse term is an average over scenarios, so replicating the same
// scenario values must not change it.
func TestSecondStageObjective_ScenarioInvariance(t *testing.T) {
	p := testParameters()

	stageOf := func(scenarios int) secondStage {
		ss := secondStage{
			YPlus:  make([][][]lpmodel.LinearArgument, scenarios),
			YMinus: make([][][]lpmodel.LinearArgument, scenarios),
		}
		for k := 0; k < scenarios; k++ {
			ss.YPlus[k] = constGrid2([][]float64{{1, 2}})
			ss.YMinus[k] = constGrid2([][]float64{{3, 4}})
		}
		return ss
	}

	one := secondStageObjective(p, stageOf(1)).Offset()
	many := secondStageObjective(p, stageOf(4)).Offset()
	if !approxEq(one, many) {
		t.Errorf("secondStageObjective() offset differs across scenario counts: %v vs %v", one, many)
	}
	// Shortage 1+2 at cost 100 plus surplus 3+4 at cost 1.
	if want := 307.0; !approxEq(one, want) {
		t.Errorf("secondStageObjective().Offset() = %v, want %v", one, want)
	}
}

func TestAddDemandBalance_Placeholders(t *testing.T) {
	p := testParameters()

	b := lpmodel.NewBuilder()
	fs := newFirstStageVars(b, p, lpmodel.Continuous)
	ss := newSecondStageVars(b, p, 2, lpmodel.Continuous)

	demand := addDemandBalance(b, p, fs, ss, nil)
	if got, want := len(demand), 2; got != want {
		t.Fatalf("len(demand) = %v, want %v", got, want)
	}
	if got, want := len(demand[0]), p.Products; got != want {
		t.Fatalf("len(demand[0]) = %v, want %v", got, want)
	}
	if got, want := len(demand[0][0]), p.Periods; got != want {
		t.Fatalf("len(demand[0][0]) = %v, want %v", got, want)
	}
	// Placeholders start fixed at zero and stay continuous.
	if diff := cmp.Diff(lpmodel.Singleton(0), demand[0][0][0].Bounds()); diff != "" {
		t.Errorf("placeholder Bounds() mismatch (-want +got):\n%s", diff)
	}
	if _, err := b.Model(); err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
}

func TestAddDemandBalance_FoldedData(t *testing.T) {
	p := testParameters()

	b := lpmodel.NewBuilder()
	fs := newFirstStageVars(b, p, lpmodel.Continuous)
	ss := newSecondStageVars(b, p, 1, lpmodel.Continuous)

	if got := addDemandBalance(b, p, fs, ss, [][][]float64{{{5, 5}}}); got != nil {
		t.Errorf("addDemandBalance() with data = %v, want nil", got)
	}
	m, err := b.Model()
	if err != nil {
		t.Fatalf("Model() returned with unexpected error %v", err)
	}
	// One balance row per product and period; demand appears as the bound.
	rows := m.Constraints[len(m.Constraints)-2:]
	for i, row := range rows {
		if diff := cmp.Diff(lpmodel.Singleton(5), row.Bounds); diff != "" {
			t.Errorf("balance row %d Bounds mismatch (-want +got):\n%s", i, diff)
		}
	}
}
