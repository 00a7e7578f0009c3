// Copyright (C) 2026 kuprich777
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// DurationSampler draws one trial duration from [min, max] minutes,
// optionally perturbed by the stochastic scale. The exact perturbation
// law is configuration, not an invariant: swap the sampler to change the
// distribution without touching the Monte Carlo driver.
type DurationSampler interface {
	Sample(rng *rand.Rand, min, max int, scale float64) int
}

// UniformJitterSampler samples uniformly over [min, max], then applies
// multiplicative uniform jitter d*(1 + scale*U[-1,1]), clamped back into
// the range. A scale of 0 leaves the uniform draw untouched, which is
// what makes degenerate batches (min == max, scale 0) bit-for-bit
// reproducible against single runs.
type UniformJitterSampler struct{}

// Sample implements DurationSampler.
func (UniformJitterSampler) Sample(rng *rand.Rand, min, max int, scale float64) int {
	if max < min {
		min, max = max, min
	}
	d := min + rng.Intn(max-min+1)
	if scale <= 0 {
		return d
	}
	jitter := 1 + scale*(2*rng.Float64()-1)
	j := int(math.Round(float64(d) * jitter))
	if j < min {
		j = min
	}
	if j > max {
		j = max
	}
	return j
}

// DeriveSeed produces a stable RNG seed for one (scenario_id, run_id)
// pair. The same pair always yields the same seed, so a trial's random
// draws are reproducible in isolation; distinct run ids diverge.
func DeriveSeed(scenarioID string, runID int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", scenarioID, runID)
	return int64(h.Sum64())
}
