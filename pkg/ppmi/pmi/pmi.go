package pmi

import "math"

// Calculator handles smoothed PMI (Pointwise Mutual Information) calculations
type Calculator struct {
	smoothing float64
}

// NewCalculator creates a PMI calculator with additive smoothing.
// A zero smoothing is used as is; log(0) then surfaces as -Inf.
func NewCalculator(smoothing float64) *Calculator {
	return &Calculator{smoothing: smoothing}
}

// Smoothing returns the additive smoothing constant
func (c *Calculator) Smoothing() float64 {
	return c.smoothing
}

// Total returns the smoothed corpus size: every vocabulary token receives
// the smoothing mass once.
func (c *Calculator) Total(sumCounts int64, vocabSize int) float64 {
	return float64(sumCounts) + float64(vocabSize)*c.smoothing
}

// PMI calculates the pointwise mutual information of a token pair
//
// PMI(a,b) = log(N_ab + ε) + log(N) - log(N_a + ε) - log(N_b + ε)
//
// Where:
//   - N_ab = windowed co-occurrence count of (a, b)
//   - N_a, N_b = occurrence counts of a and b
//   - N = smoothed total, see Total; passed as its logarithm
//   - ε = smoothing constant
//
// Everything stays in log space so large corpora do not overflow.
func (c *Calculator) PMI(nAB, nA, nB int64, logTotal float64) float64 {
	return math.Log(float64(nAB)+c.smoothing) + logTotal -
		math.Log(float64(nA)+c.smoothing) - math.Log(float64(nB)+c.smoothing)
}
