package cortex

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-auditory/internal/fftutil"
	"github.com/cwbudde/algo-vecmath"
)

// Filter generation errors.
var (
	ErrFilterLength = errors.New("cortex: filter length must be positive")
	ErrFrameRate    = errors.New("cortex: frame rate must be positive")
	ErrRateValue    = errors.New("cortex: modulation rate must be positive")
	ErrRateSign     = errors.New("cortex: signed rate must be nonzero")
	ErrRateEmpty    = errors.New("cortex: rate filter has no passband energy")
	ErrDirection    = errors.New("cortex: unknown direction")
)

// Direction selects which frequency sweep a cortical rate filter
// responds to over time.
type Direction int

const (
	// Downward responds to ripples drifting from high to low frequency.
	Downward Direction = iota

	// Upward responds to ripples drifting from low to high frequency.
	Upward

	directionCount // sentinel for validation
)

var directionNames = [directionCount]string{"downward", "upward"}

// String returns the name of the sweep direction.
func (d Direction) String() string {
	if d >= 0 && d < directionCount {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Valid reports whether d is a known sweep direction.
func (d Direction) Valid() bool {
	return d >= 0 && d < directionCount
}

// RateFilter builds the one-sided temporal modulation filter for a
// rate in Hz, sampled on length bins at frameRate Hz. The kernel
// sin(2*pi*t) * t^2 * exp(-3.5t) with t = k/frameRate*rate is
// mean-removed and transformed on twice its length; the low half of
// the spectrum is kept, its magnitude divided by the peak, and the
// phase A recombined as sin(A) + i*cos(A).
//
// A rate at a multiple of half the frame rate samples the kernel only
// at its zero crossings and fails with ErrRateEmpty.
func RateFilter(rate float64, length int, frameRate float64) ([]complex128, error) {
	if err := checkRateArgs(rate, length, frameRate); err != nil {
		return nil, err
	}

	spec, err := kernelSpectrum(rateKernel(rate, length, frameRate))
	if err != nil {
		return nil, err
	}

	re := make([]float64, length)
	im := make([]float64, length)
	for k := 0; k < length; k++ {
		re[k] = real(spec[k])
		im[k] = imag(spec[k])
	}
	mag := make([]float64, length)
	vecmath.Magnitude(mag, re, im)

	peak := 0.0
	for _, m := range mag {
		peak = max(peak, m)
	}
	if peak == 0 {
		return nil, fmt.Errorf("%w: rate %g Hz at %g Hz frame rate", ErrRateEmpty, rate, frameRate)
	}

	out := make([]complex128, length)
	for k := range out {
		a := math.Atan2(im[k], re[k])
		m := mag[k] / peak
		out[k] = complex(m*math.Sin(a), m*math.Cos(a))
	}
	return out, nil
}

// RateFilterDirectional returns the direction-selective rate filter on
// 2*length bins. The upward variant keeps the one-sided response in
// the low half and zeros above; the downward variant is its conjugate
// mirror, with the shared middle bin set to the magnitude of its upper
// neighbor.
func RateFilterDirectional(rate float64, length int, frameRate float64, dir Direction) ([]complex128, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrDirection, dir)
	}
	base, err := RateFilter(rate, length, frameRate)
	if err != nil {
		return nil, err
	}
	return directionalResponse(base, dir), nil
}

// RateFilterSigned builds the pair-transform rate filter on 2*length
// bins. The magnitude of rate shapes the kernel and its sign selects
// the kept half spectrum: positive rates keep bins 0..length-1,
// negative rates keep bins length..2*length-1. The kept half is
// normalized to unit peak magnitude.
func RateFilterSigned(rate float64, length int, frameRate float64) ([]complex128, error) {
	if rate == 0 {
		return nil, ErrRateSign
	}
	if err := checkRateArgs(math.Abs(rate), length, frameRate); err != nil {
		return nil, err
	}

	spec, err := kernelSpectrum(rateKernel(math.Abs(rate), length, frameRate))
	if err != nil {
		return nil, err
	}
	if rate > 0 {
		for k := length; k < 2*length; k++ {
			spec[k] = 0
		}
	} else {
		for k := 0; k < length; k++ {
			spec[k] = 0
		}
	}

	peak := peakMagnitude(spec)
	if peak == 0 {
		return nil, fmt.Errorf("%w: rate %g Hz at %g Hz frame rate", ErrRateEmpty, rate, frameRate)
	}
	scale := complex(1/peak, 0)
	for k := range spec {
		spec[k] *= scale
	}
	return spec, nil
}

func checkRateArgs(rate float64, length int, frameRate float64) error {
	if length < 1 {
		return fmt.Errorf("%w: %d", ErrFilterLength, length)
	}
	if frameRate <= 0 {
		return fmt.Errorf("%w: %g", ErrFrameRate, frameRate)
	}
	if rate <= 0 {
		return fmt.Errorf("%w: %g", ErrRateValue, rate)
	}
	// Multiples of half the frame rate sample sin(2*pi*t) only at its
	// zero crossings; the kernel carries rounding residue, not a
	// passband.
	if math.Mod(2*rate, frameRate) == 0 {
		return fmt.Errorf("%w: rate %g Hz at %g Hz frame rate", ErrRateEmpty, rate, frameRate)
	}
	return nil
}

// rateKernel evaluates sin(2*pi*t) * t^2 * exp(-3.5t) * rate on
// t = k/frameRate*rate for k = 0..length-1.
func rateKernel(rate float64, length int, frameRate float64) []float64 {
	h := make([]float64, length)
	for k := range h {
		t := float64(k) / frameRate * rate
		h[k] = math.Sin(2*math.Pi*t) * t * t * math.Exp(-3.5*t) * rate
	}
	return h
}

// kernelSpectrum removes the kernel mean and transforms it on twice
// the kernel length.
func kernelSpectrum(h []float64) ([]complex128, error) {
	mean := 0.0
	for _, v := range h {
		mean += v
	}
	mean /= float64(len(h))

	tr, err := fftutil.New(2 * len(h))
	if err != nil {
		return nil, err
	}
	buf := make([]complex128, 2*len(h))
	for k, v := range h {
		buf[k] = complex(v-mean, 0)
	}
	if err := tr.Forward(buf, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// directionalResponse extends a one-sided rate filter of length L onto
// the 2L transform bins for one sweep direction.
func directionalResponse(base []complex128, dir Direction) []complex128 {
	n := len(base)
	out := make([]complex128, 2*n)
	if dir == Upward {
		copy(out, base)
		return out
	}

	out[0] = base[0]
	for k := n + 1; k < 2*n; k++ {
		out[k] = cmplx.Conj(base[2*n-k])
	}
	if n > 1 {
		out[n] = complex(cmplx.Abs(out[n+1]), 0)
	}
	return out
}

// peakMagnitude returns the largest bin magnitude of spec.
func peakMagnitude(spec []complex128) float64 {
	re := make([]float64, len(spec))
	im := make([]float64, len(spec))
	for k, v := range spec {
		re[k] = real(v)
		im[k] = imag(v)
	}
	mag := make([]float64, len(spec))
	vecmath.Magnitude(mag, re, im)

	peak := 0.0
	for _, m := range mag {
		peak = max(peak, m)
	}
	return peak
}
