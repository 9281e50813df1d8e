package features

import "math"

// covEpsilon guards the coefficient-of-variation denominator against
// division by zero for degenerate (all-equal or zero-mean) inputs.
const covEpsilon = 1e-6

// computeMean calculates the arithmetic mean of values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computePopStddev calculates population standard deviation (n denominator).
// The original scoring system used numpy's default ddof=0, so the batch
// numbers only reproduce with the population formula, not the sample one.
func computePopStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n))
}

// coefficientOfVariation computes stddev/(mean+epsilon) over values.
// Returns 0 for empty input.
func coefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := computeMean(values)
	return computePopStddev(values, mean) / (mean + covEpsilon)
}

// consecutiveDiffs returns the element-wise differences of a sorted slice.
func consecutiveDiffs(sorted []float64) []float64 {
	if len(sorted) < 2 {
		return nil
	}
	diffs := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		diffs[i-1] = sorted[i] - sorted[i-1]
	}
	return diffs
}
