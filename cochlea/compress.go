package cochlea

import (
	"errors"
	"fmt"
	"math"
)

// Compression errors.
var (
	ErrUnknownCompression = errors.New("cochlea: unknown compression method")
	ErrFactorCount        = errors.New("cochlea: compression factors must match channel count")
	ErrZeroRootFactor     = errors.New("cochlea: root compression factor must be nonzero")
)

// CompressionMethod selects the per-channel nonlinearity applied to the
// subband matrix.
type CompressionMethod int

const (
	// CompressionIdentity passes subbands through unchanged.
	CompressionIdentity CompressionMethod = iota

	// CompressionLogistic maps y to 1/(1+exp(y/factor)). A zero factor
	// saturates to a hard limiter instead of failing.
	CompressionLogistic

	// CompressionRoot divides each channel by the mean of its factor-th
	// powers and takes the factor-th root. Negative inputs with a
	// fractional factor produce NaN; the caller chooses a compatible
	// factor for its data.
	CompressionRoot

	// CompressionPower raises magnitudes to the per-channel exponent,
	// keeping the sign.
	CompressionPower

	compressionMethodCount // sentinel for validation
)

var compressionMethodNames = [compressionMethodCount]string{
	"identity", "logistic", "root", "power",
}

// String returns the name of the compression method.
func (m CompressionMethod) String() string {
	if m >= 0 && m < compressionMethodCount {
		return compressionMethodNames[m]
	}
	return fmt.Sprintf("CompressionMethod(%d)", int(m))
}

// Valid reports whether m is a known compression method.
func (m CompressionMethod) Valid() bool {
	return m >= 0 && m < compressionMethodCount
}

// Compress applies the selected nonlinearity to every row of m, one
// factor per channel. Identity ignores factors. The input is never
// modified.
func Compress(m [][]float64, factors []float64, method CompressionMethod) ([][]float64, error) {
	switch method {
	case CompressionIdentity:
		return copyMatrix(m), nil
	case CompressionLogistic, CompressionRoot, CompressionPower:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, method)
	}
	if len(factors) != len(m) {
		return nil, fmt.Errorf("%w: %d factors for %d channels", ErrFactorCount, len(factors), len(m))
	}

	out := make([][]float64, len(m))
	for i, row := range m {
		switch method {
		case CompressionLogistic:
			out[i] = logistic(row, factors[i])
		case CompressionRoot:
			r, err := rootNorm(row, factors[i])
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
			out[i] = r
		case CompressionPower:
			out[i] = powerNorm(row, factors[i])
		}
	}
	return out, nil
}

// CompressionFactors returns a per-channel factor vector with every
// entry set to value.
func CompressionFactors(channels int, value float64) []float64 {
	out := make([]float64, channels)
	for i := range out {
		out[i] = value
	}
	return out
}

func logistic(x []float64, fac float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = 1 / (1 + math.Exp(v/fac))
	}
	return out
}

func rootNorm(x []float64, p float64) ([]float64, error) {
	if p == 0 {
		return nil, ErrZeroRootFactor
	}

	sum := 0.0
	for _, v := range x {
		sum += math.Pow(v, p)
	}
	norm := sum / float64(len(x))

	out := make([]float64, len(x))
	inv := 1 / p
	for i, v := range x {
		out[i] = math.Pow(v/norm, inv)
	}
	return out, nil
}

func powerNorm(x []float64, alpha float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v > 0:
			out[i] = math.Pow(v, alpha)
		case v < 0:
			out[i] = -math.Pow(-v, alpha)
		}
	}
	return out
}
