// This file generates the candidate settings timed by a calibration run.

package calibration

import (
	"runtime"

	"github.com/agbru/pseries/internal/workload"
)

// GenerateLoadFactors returns the MinLoadFactor candidates, in increasing
// order. The default of 1 is among them.
func GenerateLoadFactors() []float64 {
	return []float64{0.0625, 0.125, 0.25, 0.5, 1, 2, 4, 8, 16}
}

// GenerateParallelGrains returns the ParallelGrain candidates for an
// evaluation of samples points. The first one, samples itself, evaluates in a
// single chunk. More cores make smaller chunks worth trying.
func GenerateParallelGrains(samples int) []int {
	numCPU := runtime.NumCPU()

	grains := []int{samples}
	var candidates []int
	switch {
	case numCPU == 1:
		// Single core: only sequential makes sense
		return grains
	case numCPU <= 4:
		candidates = []int{2048, 1024, 512}
	case numCPU <= 16:
		candidates = []int{2048, 1024, 512, 256, 128}
	default:
		candidates = []int{2048, 1024, 512, 256, 128, 64}
	}
	for _, g := range candidates {
		if g < samples {
			grains = append(grains, g)
		}
	}
	return grains
}

// GenerateShapes returns the workloads whose products time the dense and the
// hashed strategies. Their load factors spread from well under 1 to well
// over it.
func GenerateShapes() []workload.Spec {
	spread := workload.DefaultSpec().Spread
	return []workload.Spec{
		{Width: 1, Degree: 32, Spread: spread},
		{Width: 1, Degree: 256, Spread: spread},
		{Width: 2, Degree: 6, Spread: spread},
		{Width: 2, Degree: 12, Spread: spread},
		{Width: 3, Degree: 4, Spread: spread},
		{Width: 3, Degree: 6, Spread: spread},
		{Width: 4, Degree: 4, Spread: spread},
	}
}
