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
)

func TestGaussianSampler_ShapeAndDeterminism(t *testing.T) {
	p := testParameters()

	got := NewGaussianSampler(p, 7).Sample(4, false)
	if len(got) != 4 {
		t.Fatalf("len(Sample(4)) = %v, want 4", len(got))
	}
	for k := range got {
		if len(got[k]) != p.Products || len(got[k][0]) != p.Periods {
			t.Fatalf("Sample()[%d] has shape %dx%d, want %dx%d",
				k, len(got[k]), len(got[k][0]), p.Products, p.Periods)
		}
	}

	again := NewGaussianSampler(p, 7).Sample(4, false)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("Sample() with the same seed mismatch (-first +second):\n%s", diff)
	}

	other := NewGaussianSampler(p, 8).Sample(4, false)
	if diff := cmp.Diff(got, other); diff == "" {
		t.Errorf("Sample() with different seeds produced identical draws")
	}
}

func TestGaussianSampler_ClampsAndRounds(t *testing.T) {
	p := testParameters()
	// Zero mean makes roughly half the raw draws negative.
	p.DemandMean = [][]float64{{0, 0}}

	for _, sample := range NewGaussianSampler(p, 3).Sample(100, true) {
		for _, row := range sample {
			for _, d := range row {
				if d < 0 {
					t.Fatalf("Sample() draw = %v, want >= 0", d)
				}
				if d != math.Round(d) {
					t.Fatalf("Sample() draw = %v, want integral", d)
				}
			}
		}
	}
}
