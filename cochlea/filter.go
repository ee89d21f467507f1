package cochlea

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-auditory/cochba"
	"github.com/cwbudde/algo-auditory/internal/fftutil"
	"github.com/cwbudde/algo-vecmath"
)

// Filtering errors.
var (
	ErrCoefficients = errors.New("cochlea: coefficient slices must both have 25 taps")
	ErrEmptyInput   = errors.New("cochlea: empty input")
)

// FilterMode selects the subband filtering algorithm.
type FilterMode int

const (
	// FilterFreqResponse samples the filter transfer function on the DFT
	// bins of the input and multiplies in the frequency domain. The
	// convolution is circular, so the first samples carry wrap-around
	// from the decaying filter tail.
	FilterFreqResponse FilterMode = iota

	// FilterTimeRecursive runs the exact causal difference equation in
	// the time domain. Slower, but free of wrap-around.
	FilterTimeRecursive

	filterModeCount // sentinel for validation
)

var filterModeNames = [filterModeCount]string{"freq-response", "time-recursive"}

// String returns the name of the filter mode.
func (m FilterMode) String() string {
	if m >= 0 && m < filterModeCount {
		return filterModeNames[m]
	}
	return fmt.Sprintf("FilterMode(%d)", int(m))
}

// Valid reports whether m is a known filter mode.
func (m FilterMode) Valid() bool {
	return m >= 0 && m < filterModeCount
}

// FilterFreq applies one cochlear filter to x through the frequency
// domain (see [FilterFreqResponse]). b and a must both hold
// [cochba.FilterLength] taps; shorter filters are zero-padded by the
// table loader.
func FilterFreq(b, a, x []float64) ([]float64, error) {
	if err := checkCoefficients(b, a); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	tr, err := fftutil.New(len(x))
	if err != nil {
		return nil, err
	}
	xf := make([]complex128, len(x))
	for i, v := range x {
		xf[i] = complex(v, 0)
	}
	if err := tr.Forward(xf, xf); err != nil {
		return nil, err
	}
	return filterSpectrum(tr, xf, b, a)
}

// FilterRecursive applies one cochlear filter to x as a causal
// difference equation with zero initial state:
//
//	y[n] = sum_k b[k]*x[n-k] - sum_{k>=1} a[k]*y[n-k]
//
// The denominator is taken as normalized; a[0] is not consulted.
func FilterRecursive(b, a, x []float64) ([]float64, error) {
	if err := checkCoefficients(b, a); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}

	// Numerator side first: convolve x with b, scaling the kernel by one
	// input sample at a time and accumulating.
	ma := make([]float64, len(x)+len(b)-1)
	temp := make([]float64, len(b))
	for n := range x {
		vecmath.ScaleBlock(temp, b, x[n])
		vecmath.AddBlockInPlace(ma[n:n+len(b)], temp)
	}

	// The feedback path is inherently sequential.
	out := make([]float64, len(x))
	for n := range x {
		acc := ma[n]
		for k := 1; k <= min(n, len(a)-1); k++ {
			acc -= a[k] * out[n-k]
		}
		out[n] = acc
	}
	return out, nil
}

func checkCoefficients(b, a []float64) error {
	if len(b) != cochba.FilterLength || len(a) != cochba.FilterLength {
		return fmt.Errorf("%w: got %d and %d", ErrCoefficients, len(b), len(a))
	}
	return nil
}

// filterSpectrum multiplies a precomputed input spectrum by the channel
// transfer function, inverts, and returns the real part.
func filterSpectrum(tr *fftutil.Transformer, xf []complex128, b, a []float64) ([]float64, error) {
	n := tr.Len()
	h := transferFunction(b, a, n)
	buf := make([]complex128, n)
	for i := range buf {
		buf[i] = xf[i] * h[i]
	}
	if err := tr.Inverse(buf, buf); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(buf[i])
	}
	return out, nil
}

// transferFunction samples H = B(e^-jw)/A(e^-jw) on the n DFT bins,
// with w = 2*pi*fftfreq(n).
func transferFunction(b, a []float64, n int) []complex128 {
	h := make([]complex128, n)
	for i := range h {
		w := 2 * math.Pi * fftutil.BinFrequency(n, i)
		e := complex(math.Cos(w), -math.Sin(w))

		var num, den complex128
		p := complex(1, 0)
		for k := range b {
			num += complex(b[k], 0) * p
			den += complex(a[k], 0) * p
			p *= e
		}
		h[i] = num / den
	}
	return h
}
