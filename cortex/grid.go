package cortex

import (
	"math"
	"math/rand"
)

// RateScale pairs one ripple scale in cycles per octave with one
// signed modulation rate in Hz. Negative rates select downward sweeps
// in PairTransform.
type RateScale struct {
	Scale float64
	Rate  float64
}

// LogRates returns count modulation rates spaced evenly in log2
// between 2 and 32 Hz.
func LogRates(count int) []float64 {
	return pow2Linspace(1, 5, count)
}

// LogScales returns count ripple scales spaced evenly in log2 between
// 0.25 and 8 cycles per octave.
func LogScales(count int) []float64 {
	return pow2Linspace(-2, 3, count)
}

// LogPairs returns the fixed forty-unit grid: five log scales crossed
// with four log rates, the positive-rate block first and the same grid
// with negated rates after it. Pairs iterate rates within each scale.
func LogPairs() []RateScale {
	rates := LogRates(4)
	scales := LogScales(5)

	out := make([]RateScale, 0, 2*len(rates)*len(scales))
	for _, sign := range []float64{1, -1} {
		for _, s := range scales {
			for _, r := range rates {
				out = append(out, RateScale{Scale: s, Rate: sign * r})
			}
		}
	}
	return out
}

// RandomPairs draws n pairs with scales uniform in [0, scaleCap) and
// rates uniform in [-rateCap, rateCap), reproducibly from seed. Drawn
// values can land arbitrarily close to zero, which PairTransform
// rejects; resample or clamp when that matters.
func RandomPairs(n int, seed int64, scaleCap, rateCap float64) []RateScale {
	rng := rand.New(rand.NewSource(seed))
	out := make([]RateScale, n)
	for i := range out {
		out[i] = RateScale{
			Scale: rng.Float64() * scaleCap,
			Rate:  (rng.Float64() - 0.5) * 2 * rateCap,
		}
	}
	return out
}

// pow2Linspace returns 2^x for count values of x evenly spaced over
// [lo, hi].
func pow2Linspace(lo, hi float64, count int) []float64 {
	if count < 1 {
		return nil
	}
	out := make([]float64, count)
	if count == 1 {
		out[0] = math.Pow(2, lo)
		return out
	}
	step := (hi - lo) / float64(count-1)
	for i := range out {
		out[i] = math.Pow(2, lo+float64(i)*step)
	}
	return out
}
