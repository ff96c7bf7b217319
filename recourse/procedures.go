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
)

// Config selects how an Evaluator builds and solves its models.
type Config struct {
	// IntVars restricts every decision variable to integer values and
	// rounds extracted solutions. The type applies uniformly; there is no
	// per-variable typing.
	IntVars bool
	// Solver is the solving capability. When nil, the bundled
	// lpmodel.SimplexSolver is used.
	Solver lpmodel.Solver
	// Sampler draws demand scenarios for MRP. Procedures taking an explicit
	// sample set do not use it.
	Sampler Sampler
}

// Evaluator runs the evaluation procedures for one problem instance.
// It is safe to run the procedures one after another; each builds, solves
// and abandons its own models.
type Evaluator struct {
	pars *Parameters
	cfg  Config
}

// NewEvaluator validates the parameter shapes and returns an Evaluator.
func NewEvaluator(p *Parameters, cfg Config) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if cfg.Solver == nil {
		cfg.Solver = lpmodel.SimplexSolver{}
	}
	return &Evaluator{pars: p, cfg: cfg}, nil
}

func (e *Evaluator) varType() lpmodel.VarType {
	if e.cfg.IntVars {
		return lpmodel.Integer
	}
	return lpmodel.Continuous
}

// EV computes the Expected Value solution: the full two-stage model solved
// against the single scenario equal to the mean demand. Its first-stage plan
// is the usual plug-in candidate for EEV and MRP.
func (e *Evaluator) EV() (*Solution, error) {
	p, vt := e.pars, e.varType()

	b := lpmodel.NewBuilder()
	fs := newFirstStageVars(b, p, vt)
	ss := newSecondStageVars(b, p, 1, vt)

	b.Minimize(firstStageObjective(p, fs).Add(secondStageObjective(p, ss)))
	addFirstStageConstraints(b, p, fs)

	// The random demand is replaced by its expected value.
	mean := p.DemandMean
	if e.cfg.IntVars {
		mean = roundMatrix(mean)
	}
	addDemandBalance(b, p, fs, ss, [][][]float64{mean})

	res, err := e.solve(b, "EV")
	if err != nil {
		return nil, err
	}
	return extractSolution(res, fs, ss, e.cfg.IntVars), nil
}

// EEV evaluates the expected result of using the EV first-stage plan: the
// plan enters the model as plain numbers, only recourse variables and a
// demand placeholder are created, and the single model is re-solved for each
// scenario by re-fixing the placeholder bounds. Scenarios whose recourse
// problem is infeasible are skipped, so the returned list may be shorter
// than the sample set.
func (e *Evaluator) EEV(evSol *Solution, samples [][][]float64) ([]float64, error) {
	p := e.pars
	if err := p.checkSample(samples); err != nil {
		return nil, err
	}

	b := lpmodel.NewBuilder()
	fs := evSol.firstStage()
	ss := newSecondStageVars(b, p, 1, e.varType())

	// Numeric first stage plus symbolic second stage in one objective.
	b.Minimize(firstStageObjective(p, fs).Add(secondStageObjective(p, ss)))
	demand := addDemandBalance(b, p, fs, ss, nil)

	return e.solveScenarios(b, "EEV", demand, samples)
}

// WS computes the Wait-and-See objectives: one full first- plus second-stage
// model, re-optimized jointly for each scenario as if demand were known in
// advance. Infeasible scenarios are skipped.
func (e *Evaluator) WS(samples [][][]float64) ([]float64, error) {
	p, vt := e.pars, e.varType()
	if err := p.checkSample(samples); err != nil {
		return nil, err
	}

	b := lpmodel.NewBuilder()
	fs := newFirstStageVars(b, p, vt)
	ss := newSecondStageVars(b, p, 1, vt)

	b.Minimize(firstStageObjective(p, fs).Add(secondStageObjective(p, ss)))
	addFirstStageConstraints(b, p, fs)
	demand := addDemandBalance(b, p, fs, ss, nil)

	return e.solveScenarios(b, "WS", demand, samples)
}

// TSResult is the outcome of the two-stage deterministic equivalent.
type TSResult struct {
	// Solution holds the first-stage plan and the per-scenario recourse
	// values at the optimum.
	Solution *Solution
	// ShortageProb is the fraction of strictly positive shortage entries
	// across all scenarios, products and periods: the empirical probability
	// that demand must be covered externally.
	ShortageProb float64
}

// TS solves the sampled two-stage deterministic equivalent: a single model
// with one set of second-stage variables per scenario and the demand bound
// directly to the sample data. No re-fixing loop is involved.
func (e *Evaluator) TS(samples [][][]float64) (*TSResult, error) {
	p, vt := e.pars, e.varType()
	if err := p.checkSample(samples); err != nil {
		return nil, err
	}

	b := lpmodel.NewBuilder()
	fs := newFirstStageVars(b, p, vt)
	ss := newSecondStageVars(b, p, len(samples), vt)

	b.Minimize(firstStageObjective(p, fs).Add(secondStageObjective(p, ss)))
	addFirstStageConstraints(b, p, fs)
	addDemandBalance(b, p, fs, ss, samples)

	res, err := e.solve(b, "TS")
	if err != nil {
		return nil, err
	}
	sol := extractSolution(res, fs, ss, e.cfg.IntVars)

	var positive, total int
	for _, byProduct := range sol.YPlus {
		for _, byPeriod := range byProduct {
			for _, y := range byPeriod {
				if y > 0 {
					positive++
				}
				total++
			}
		}
	}

	return &TSResult{
		Solution:     sol,
		ShortageProb: float64(positive) / float64(total),
	}, nil
}

// solve builds the model and runs one optimize pass, failing hard on any
// status other than optimal.
func (e *Evaluator) solve(b *lpmodel.Builder, proc string) (*lpmodel.Result, error) {
	m, err := b.Model()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", proc, err)
	}
	res, err := e.cfg.Solver.Solve(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", proc, err)
	}
	if !res.IsOptimal() {
		return nil, fmt.Errorf("%s: solve terminated with status %v", proc, res.Status)
	}
	return res, nil
}

// solveScenarios runs the re-fix loop shared by EEV and WS: for each
// scenario the demand placeholder is fixed to the scenario values and the
// model re-solved. Infeasible scenarios are dropped from the result;
// any other non-optimal status aborts the loop.
func (e *Evaluator) solveScenarios(b *lpmodel.Builder, proc string, demand [][][]lpmodel.Var, samples [][][]float64) ([]float64, error) {
	m, err := b.Model()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", proc, err)
	}

	results := make([]float64, 0, len(samples))
	for i, sample := range samples {
		log.V(1).Infof("%s: solving scenario %d/%d", proc, i+1, len(samples))
		fixGrid2(b, demand[0], sample)

		res, err := e.cfg.Solver.Solve(m)
		if err != nil {
			return nil, fmt.Errorf("%s: scenario %d: %w", proc, i, err)
		}
		switch res.Status {
		case lpmodel.StatusOptimal:
			results = append(results, res.Objective)
		case lpmodel.StatusInfeasible:
			log.V(1).Infof("%s: scenario %d infeasible, skipped", proc, i)
		default:
			return nil, fmt.Errorf("%s: scenario %d: solve terminated with status %v", proc, i, res.Status)
		}
	}
	return results, nil
}

func roundMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = math.Round(v)
		}
	}
	return out
}
