package cochlea

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-auditory/internal/fftutil"
)

// ErrTooFewChannels is returned when a lateral difference is requested
// on fewer than two channels.
var ErrTooFewChannels = errors.New("cochlea: lateral difference needs at least two channels")

// LateralDifference subtracts each channel from its lower neighbor,
// approximating lateral inhibition: out[i] = m[i] - m[i+1]. The result
// has one row fewer than the input.
func LateralDifference(m [][]float64) ([][]float64, error) {
	if len(m) < 2 {
		return nil, ErrTooFewChannels
	}
	if err := checkRect(m); err != nil {
		return nil, err
	}

	out := make([][]float64, len(m)-1)
	for i := range out {
		row := make([]float64, len(m[i]))
		for j := range row {
			row[j] = m[i][j] - m[i+1][j]
		}
		out[i] = row
	}
	return out, nil
}

// Rectify clamps negative values to zero, returning a new matrix.
func Rectify(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		r := make([]float64, len(row))
		for j, v := range row {
			if v > 0 {
				r[j] = v
			}
		}
		out[i] = r
	}
	return out
}

// LeakyIntegrate filters x with the one-pole integrator
//
//	H(w) = 1 / (1 - alpha*e^-jw)
//
// sampled on the DFT bins of x, and returns the real part. The filtering
// is circular, like [FilterFreq].
func LeakyIntegrate(x []float64, alpha float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	tr, err := fftutil.New(len(x))
	if err != nil {
		return nil, err
	}
	return integrateRow(tr, integratorResponse(len(x), alpha), x)
}

// Transpose flips a channels-by-time matrix into the time-by-channels
// orientation the cortical transform expects (and back). m must be
// rectangular.
func Transpose(m [][]float64) [][]float64 {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil
	}
	out := make([][]float64, len(m[0]))
	for j := range out {
		row := make([]float64, len(m))
		for i := range row {
			row[i] = m[i][j]
		}
		out[j] = row
	}
	return out
}

// integratorResponse samples 1/(1 - alpha*e^-jw) on the n DFT bins.
func integratorResponse(n int, alpha float64) []complex128 {
	h := make([]complex128, n)
	for i := range h {
		w := 2 * math.Pi * fftutil.BinFrequency(n, i)
		h[i] = 1 / (1 - complex(alpha, 0)*complex(math.Cos(w), -math.Sin(w)))
	}
	return h
}

// integrateRow applies a precomputed integrator response to one channel.
func integrateRow(tr *fftutil.Transformer, h []complex128, x []float64) ([]float64, error) {
	buf := make([]complex128, len(x))
	for i, v := range x {
		buf[i] = complex(v, 0)
	}
	if err := tr.Forward(buf, buf); err != nil {
		return nil, err
	}
	for i := range buf {
		buf[i] *= h[i]
	}
	if err := tr.Inverse(buf, buf); err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = real(buf[i])
	}
	return out, nil
}

// frameEdgeDecimate keeps the last sample of each of the frames windows.
func frameEdgeDecimate(x []float64, frameLen, frames int) []float64 {
	out := make([]float64, frames)
	for i := 1; i <= frames; i++ {
		out[i-1] = x[i*frameLen-1]
	}
	return out
}

// strideDecimate keeps every frameLen-th sample starting at frameLen-1.
func strideDecimate(x []float64, frameLen int) []float64 {
	out := make([]float64, 0, len(x)/frameLen)
	for i := frameLen - 1; i < len(x); i += frameLen {
		out = append(out, x[i])
	}
	return out
}

func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func checkRect(m [][]float64) error {
	for i := 1; i < len(m); i++ {
		if len(m[i]) != len(m[0]) {
			return fmt.Errorf("cochlea: row %d has %d columns, row 0 has %d", i, len(m[i]), len(m[0]))
		}
	}
	return nil
}
