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

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws demand scenarios. Sample returns `count` matrices of shape
// n x s; with `round` set every entry is rounded to the nearest integer.
type Sampler interface {
	Sample(count int, round bool) [][][]float64
}

// GaussianSampler draws independent normal demand per product and period,
// parameterized by the instance's DemandMean and DemandStd. Draws below zero
// are clamped to zero, since demand cannot be negative.
type GaussianSampler struct {
	mean, std [][]float64
	src       rand.Source
}

// NewGaussianSampler returns a sampler over the instance's demand
// distribution. The same seed yields the same scenario stream.
func NewGaussianSampler(p *Parameters, seed uint64) *GaussianSampler {
	return &GaussianSampler{
		mean: p.DemandMean,
		std:  p.DemandStd,
		src:  rand.NewSource(seed),
	}
}

// Sample implements Sampler.
func (g *GaussianSampler) Sample(count int, round bool) [][][]float64 {
	out := make([][][]float64, count)
	for k := range out {
		out[k] = make([][]float64, len(g.mean))
		for j := range g.mean {
			out[k][j] = make([]float64, len(g.mean[j]))
			for t := range g.mean[j] {
				d := distuv.Normal{Mu: g.mean[j][t], Sigma: g.std[j][t], Src: g.src}.Rand()
				if d < 0 {
					d = 0
				}
				if round {
					d = math.Round(d)
				}
				out[k][j][t] = d
			}
		}
	}
	return out
}
