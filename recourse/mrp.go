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
	"fmt"
	"math"

	log "github.com/golang/glog"
	"github.com/operations-research/stochastic-planning/lpmodel"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MRP estimates an upper bound on the optimality gap of a candidate
// first-stage plan with the Multiple Replications Procedure. For each of
// `replicas` independent replications it draws `sampleSize` demand scenarios
// from the configured Sampler, solves the sampled two-stage model to obtain a
// replication-optimal plan, and averages the paired cost difference between
// the candidate and that plan over the same scenarios. The replication means
// feed a one-sided Student's t bound at confidence level `alpha`.
//
// Both models are built once; replications only re-fix placeholder bounds.
func (e *Evaluator) MRP(candidate *Solution, sampleSize, replicas int, alpha float64) (float64, error) {
	p := e.pars
	if e.cfg.Sampler == nil {
		return 0, fmt.Errorf("%w: MRP requires a Sampler", ErrInvalidParameters)
	}
	if sampleSize < 1 || replicas < 2 {
		return 0, fmt.Errorf("%w: MRP needs sampleSize >= 1 and replicas >= 2, got %d and %d",
			ErrInvalidParameters, sampleSize, replicas)
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidParameters, alpha)
	}

	// The main model is the sampled two-stage equivalent with a demand
	// placeholder per scenario, re-fixed each replication.
	mb := lpmodel.NewBuilder()
	fs := newFirstStageVars(mb, p, e.varType())
	ss := newSecondStageVars(mb, p, sampleSize, e.varType())
	mb.Minimize(firstStageObjective(p, fs).Add(secondStageObjective(p, ss)))
	addFirstStageConstraints(mb, p, fs)
	mainDemand := addDemandBalance(mb, p, fs, ss, nil)
	mainModel, err := mb.Model()
	if err != nil {
		return 0, fmt.Errorf("MRP: %w", err)
	}

	// The submodel evaluates the recourse cost of a fixed production plan
	// against one scenario: production enters through placeholder variables,
	// only the recourse variables are free. Placeholders stay continuous even
	// in integer runs; the plans fixed into them are already integral.
	sb := lpmodel.NewBuilder()
	subX := varGrid2(sb, p.Products, p.Periods, 0, 0, lpmodel.Continuous)
	subFS := firstStage{X: argGrid2(subX)}
	subSS := newSecondStageVars(sb, p, 1, e.varType())
	sb.Minimize(secondStageObjective(p, subSS))
	subDemand := addDemandBalance(sb, p, subFS, subSS, nil)
	subModel, err := sb.Model()
	if err != nil {
		return 0, fmt.Errorf("MRP: %w", err)
	}

	// Per-scenario recourse cost of a plan.
	recourseCost := func(x [][]float64, scenario [][]float64) (float64, error) {
		fixGrid2(sb, subX, x)
		fixGrid2(sb, subDemand[0], scenario)
		res, err := e.cfg.Solver.Solve(subModel)
		if err == nil && !res.IsOptimal() {
			err = fmt.Errorf("solve terminated with status %v", res.Status)
		}
		if err != nil {
			return 0, err
		}
		return res.Objective, nil
	}

	candCost := firstStageObjective(p, candidate.firstStage()).Offset()

	gaps := make([]float64, replicas)
	for k := 0; k < replicas; k++ {
		log.V(1).Infof("MRP: replication %d/%d", k+1, replicas)
		sample := e.cfg.Sampler.Sample(sampleSize, e.cfg.IntVars)
		fixGrid3(mb, mainDemand, sample)

		res, err := e.cfg.Solver.Solve(mainModel)
		if err != nil {
			return 0, fmt.Errorf("MRP: replication %d: %w", k, err)
		}
		if !res.IsOptimal() {
			return 0, fmt.Errorf("MRP: replication %d: solve terminated with status %v", k, res.Status)
		}
		repSol := extractSolution(res, fs, ss, e.cfg.IntVars)
		repCost := firstStageObjective(p, repSol.firstStage()).Offset()

		// Paired estimate: both plans are scored on the same scenarios.
		var gap float64
		for i, scenario := range sample {
			a, err := recourseCost(candidate.X, scenario)
			if err != nil {
				return 0, fmt.Errorf("MRP: replication %d, scenario %d, candidate plan: %w", k, i, err)
			}
			b, err := recourseCost(repSol.X, scenario)
			if err != nil {
				return 0, fmt.Errorf("MRP: replication %d, scenario %d, replication plan: %w", k, i, err)
			}
			gap += (candCost + a) - (repCost + b)
		}
		gaps[k] = gap / float64(sampleSize)
	}

	return gapUpperBound(gaps, alpha), nil
}

// gapUpperBound turns replication gap estimates into the one-sided
// 100*alpha% confidence bound: mean + t_{alpha, R-1} * stddev / sqrt(R).
func gapUpperBound(gaps []float64, alpha float64) float64 {
	r := float64(len(gaps))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: r - 1}.Quantile(alpha)
	return stat.Mean(gaps, nil) + t*stat.StdDev(gaps, nil)/math.Sqrt(r)
}
