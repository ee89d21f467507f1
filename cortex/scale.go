package cortex

import (
	"errors"
	"fmt"
	"math"
)

// Scale filter errors.
var (
	ErrScaleValue         = errors.New("cortex: ripple scale must be nonzero")
	ErrSpectralResolution = errors.New("cortex: spectral resolution must be positive")
)

// ScaleFilter builds the spectral modulation filter for a ripple scale
// in cycles per octave, sampled on length bins at srf channels per
// octave. The response is the gamma envelope R*exp(1-R) with
// R = (k/length * srf/2 / |scale|)^2, which peaks at one where the bin
// ripple density matches the scale. The filter is real, one-sided and
// zero at the DC bin.
func ScaleFilter(scale float64, length int, srf float64) ([]float64, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: %d", ErrFilterLength, length)
	}
	if srf <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrSpectralResolution, srf)
	}
	if scale == 0 {
		return nil, ErrScaleValue
	}

	h := make([]float64, length)
	for k := range h {
		r := float64(k) / float64(length) * srf / 2 / math.Abs(scale)
		r *= r
		h[k] = r * math.Exp(1-r)
	}
	return h, nil
}
