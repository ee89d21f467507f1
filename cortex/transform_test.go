package cortex

import (
	"errors"
	"math/cmplx"
	"strings"
	"testing"

	"github.com/cwbudde/algo-auditory/internal/testutil"
)

// tensorMaxAbs returns the largest response magnitude in t.
func tensorMaxAbs(tn *Tensor) float64 {
	scales, rates, frames, channels := tn.Dims()
	m := 0.0
	for s := 0; s < scales; s++ {
		for r := 0; r < rates; r++ {
			for n := 0; n < frames; n++ {
				for c := 0; c < channels; c++ {
					m = max(m, cmplx.Abs(tn.At(s, r, n, c)))
				}
			}
		}
	}
	return m
}

// tensorMaxDiff returns the largest elementwise difference magnitude.
func tensorMaxDiff(t *testing.T, a, b *Tensor) float64 {
	t.Helper()
	as, ar, an, ac := a.Dims()
	bs, br, bn, bc := b.Dims()
	if as != bs || ar != br || an != bn || ac != bc {
		t.Fatalf("dims (%d,%d,%d,%d) != (%d,%d,%d,%d)", as, ar, an, ac, bs, br, bn, bc)
	}
	m := 0.0
	for s := 0; s < as; s++ {
		for r := 0; r < ar; r++ {
			for n := 0; n < an; n++ {
				for c := 0; c < ac; c++ {
					m = max(m, cmplx.Abs(a.At(s, r, n, c)-b.At(s, r, n, c)))
				}
			}
		}
	}
	return m
}

func requireTensorFinite(t *testing.T, tn *Tensor) {
	t.Helper()
	scales, rates, frames, channels := tn.Dims()
	for s := 0; s < scales; s++ {
		for r := 0; r < rates; r++ {
			for n := 0; n < frames; n++ {
				for c := 0; c < channels; c++ {
					if v := tn.At(s, r, n, c); cmplx.IsNaN(v) || cmplx.IsInf(v) {
						t.Fatalf("non-finite response %v at (%d,%d,%d,%d)", v, s, r, n, c)
					}
				}
			}
		}
	}
}

func TestTransform_ZeroInputZeroTensor(t *testing.T) {
	y := make([][]float64, 6)
	for i := range y {
		y[i] = make([]float64, 5)
	}

	tensor, err := Transform(y, []float64{4, 8}, []float64{1, 2, 4}, Options{})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	scales, rates, frames, channels := tensor.Dims()
	if scales != 3 || rates != 4 || frames != 6 || channels != 5 {
		t.Fatalf("dims (%d,%d,%d,%d), want (3,4,6,5)", scales, rates, frames, channels)
	}
	if m := tensorMaxAbs(tensor); m != 0 {
		t.Fatalf("max |response| = %v, want exact 0", m)
	}
}

func TestTransform_LinearInInput(t *testing.T) {
	y := testutil.NoiseMatrix(9, 1.0, 8, 8)
	doubled := make([][]float64, len(y))
	for i, row := range y {
		doubled[i] = make([]float64, len(row))
		for j, v := range row {
			doubled[i][j] = 2 * v
		}
	}

	one, err := Transform(y, []float64{8}, []float64{2}, Options{FrameLen: 8})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	two, err := Transform(doubled, []float64{8}, []float64{2}, Options{FrameLen: 8})
	if err != nil {
		t.Fatalf("Transform doubled: %v", err)
	}

	// A factor of two only shifts float exponents, so the doubled run
	// must match bin for bin with no tolerance.
	scales, rates, frames, channels := one.Dims()
	for s := 0; s < scales; s++ {
		for r := 0; r < rates; r++ {
			for n := 0; n < frames; n++ {
				for c := 0; c < channels; c++ {
					if got, want := two.At(s, r, n, c), 2*one.At(s, r, n, c); got != want {
						t.Fatalf("(%d,%d,%d,%d): doubled input gives %v, want %v", s, r, n, c, got, want)
					}
				}
			}
		}
	}
}

func TestTransform_ShapeAndFinite(t *testing.T) {
	y := testutil.NoiseMatrix(11, 1.0, 10, 6)

	tensor, err := Transform(y, LogRates(2), []float64{1}, Options{FrameLen: 8})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	scales, rates, frames, channels := tensor.Dims()
	if scales != 1 || rates != 4 || frames != 10 || channels != 6 {
		t.Fatalf("dims (%d,%d,%d,%d), want (1,4,10,6)", scales, rates, frames, channels)
	}
	requireTensorFinite(t, tensor)

	// Noise through a passband filter must leave some energy behind.
	if m := tensorMaxAbs(tensor); m == 0 {
		t.Fatal("all responses are zero for noise input")
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	y := testutil.NoiseMatrix(3, 1.0, 9, 7)
	orig := make([][]float64, len(y))
	for i, row := range y {
		orig[i] = append([]float64(nil), row...)
	}

	if _, err := Transform(y, []float64{4}, []float64{1}, Options{FrameLen: 8}); err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for i := range y {
		testutil.RequireSliceNearlyEqual(t, y[i], orig[i], 0)
	}
}

func TestTransform_SpectralResolutionDefaults(t *testing.T) {
	y := testutil.NoiseMatrix(4, 0.5, 4, 95)
	rates := []float64{8}
	scales := []float64{2}

	auto, err := Transform(y, rates, scales, Options{FrameLen: 8})
	if err != nil {
		t.Fatalf("auto: %v", err)
	}
	explicit, err := Transform(y, rates, scales, Options{FrameLen: 8, SRF: 20})
	if err != nil {
		t.Fatalf("explicit 20: %v", err)
	}
	other, err := Transform(y, rates, scales, Options{FrameLen: 8, SRF: 24})
	if err != nil {
		t.Fatalf("explicit 24: %v", err)
	}

	// 95 channels resolve to 20 channels per octave.
	if d := tensorMaxDiff(t, auto, explicit); d != 0 {
		t.Fatalf("auto differs from SRF 20 by %v", d)
	}
	if d := tensorMaxDiff(t, auto, other); d == 0 {
		t.Fatal("auto matches SRF 24 on 95-channel input")
	}
}

func TestTransform_RejectsBadInputs(t *testing.T) {
	y := testutil.NoiseMatrix(5, 1.0, 8, 4)
	rates := []float64{8}
	scales := []float64{2}

	cases := []struct {
		name   string
		y      [][]float64
		rates  []float64
		scales []float64
		opts   Options
		want   error
	}{
		{"empty input", nil, rates, scales, Options{}, ErrEmptySpectrogram},
		{"ragged input", [][]float64{{1, 2}, {1}}, rates, scales, Options{}, ErrRaggedRows},
		{"no rates", y, nil, scales, Options{}, ErrNoFilters},
		{"no scales", y, rates, nil, Options{}, ErrNoFilters},
		{"full time", y, rates, scales, Options{FullTime: true}, ErrNotImplemented},
		{"full freq", y, rates, scales, Options{FullFreq: true}, ErrNotImplemented},
		{"negative frame length", y, rates, scales, Options{FrameLen: -5}, ErrFrameLen},
		{"negative srf", y, rates, scales, Options{SRF: -1}, ErrSpectralResolution},
		{"bad rate", y, []float64{-4}, scales, Options{}, ErrRateValue},
		{"bad scale", y, rates, []float64{0}, Options{}, ErrScaleValue},
	}
	for _, c := range cases {
		if _, err := Transform(c.y, c.rates, c.scales, c.opts); !errors.Is(err, c.want) {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestTransform_FullWindowErrorNamesFlag(t *testing.T) {
	y := testutil.NoiseMatrix(5, 1.0, 4, 4)
	_, err := Transform(y, []float64{8}, []float64{2}, Options{FullTime: true})
	if err == nil || !strings.Contains(err.Error(), "FullTime") {
		t.Fatalf("err = %v, want mention of FullTime", err)
	}
}

func TestOptionsDerivedParameters(t *testing.T) {
	if got := (Options{}).frameRate(); got != 200 {
		t.Errorf("zero FrameLen: frame rate %g, want 200", got)
	}
	if got := (Options{FrameLen: 8}).frameRate(); got != 125 {
		t.Errorf("8 ms frames: frame rate %g, want 125", got)
	}
	if got := (Options{}).spectralResolution(95); got != 20 {
		t.Errorf("95 channels: srf %g, want 20", got)
	}
	if got := (Options{}).spectralResolution(128); got != 24 {
		t.Errorf("128 channels: srf %g, want 24", got)
	}
	if got := (Options{SRF: 30}).spectralResolution(95); got != 30 {
		t.Errorf("explicit srf: %g, want 30", got)
	}
}

func BenchmarkTransform(b *testing.B) {
	y := testutil.NoiseMatrix(1, 1.0, 128, 64)
	rates := LogRates(4)
	scales := LogScales(5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Transform(y, rates, scales, Options{FrameLen: 8}); err != nil {
			b.Fatal(err)
		}
	}
}
