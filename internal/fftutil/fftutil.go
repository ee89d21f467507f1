// Package fftutil provides the complex FFT front end shared by the
// auditory transforms. Power-of-two lengths run on algo-fft plans; all
// other lengths (the cochlear stage works at the padded signal length,
// which is rarely a power of two) fall back to gonum's complex FFT.
package fftutil

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	// ErrLength is returned when a transform length is not positive.
	ErrLength = errors.New("fftutil: transform length must be positive")

	// ErrSize is returned when a buffer does not match the plan size.
	ErrSize = errors.New("fftutil: buffer length does not match plan size")
)

// Transformer computes forward and inverse DFTs of a fixed length.
// It is not safe for concurrent use; create one per goroutine.
type Transformer struct {
	n    int
	plan *algofft.Plan[complex128] // power-of-two lengths
	cfft *fourier.CmplxFFT         // everything else
}

// New creates a Transformer for length n.
func New(n int) (*Transformer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrLength, n)
	}

	t := &Transformer{n: n}
	if IsPow2(n) {
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fftutil: plan size %d: %w", n, err)
		}
		t.plan = plan
		return t, nil
	}

	t.cfft = fourier.NewCmplxFFT(n)
	return t, nil
}

// Len returns the transform length.
func (t *Transformer) Len() int {
	return t.n
}

// Forward computes the unnormalized DFT of src into dst.
// dst and src must both have length Len; they may alias.
func (t *Transformer) Forward(dst, src []complex128) error {
	if len(dst) != t.n || len(src) != t.n {
		return fmt.Errorf("%w: plan %d, dst %d, src %d", ErrSize, t.n, len(dst), len(src))
	}
	if t.plan != nil {
		return t.plan.Forward(dst, src)
	}
	t.cfft.Coefficients(dst, src)
	return nil
}

// Inverse computes the inverse DFT of src into dst, scaled by 1/Len so
// that Inverse undoes Forward. dst and src must both have length Len;
// they may alias.
func (t *Transformer) Inverse(dst, src []complex128) error {
	if len(dst) != t.n || len(src) != t.n {
		return fmt.Errorf("%w: plan %d, dst %d, src %d", ErrSize, t.n, len(dst), len(src))
	}
	if t.plan != nil {
		return t.plan.Inverse(dst, src)
	}
	t.cfft.Sequence(dst, src)
	scale := complex(1/float64(t.n), 0)
	for i := range dst {
		dst[i] *= scale
	}
	return nil
}

// BinFrequency returns the frequency of bin i of an n-point DFT in
// cycles per sample: i/n up to the Nyquist fold, (i-n)/n above it.
func BinFrequency(n, i int) float64 {
	if i < (n+1)/2 {
		return float64(i) / float64(n)
	}
	return float64(i-n) / float64(n)
}

// NextPow2 returns the smallest power of two that is >= n.
func NextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
