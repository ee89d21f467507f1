package cochlea

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-auditory/internal/testutil"
)

func TestLateralDifference(t *testing.T) {
	m := [][]float64{
		{1, 2, 3},
		{0.5, 1, 1.5},
		{0, -1, -2},
	}

	out, err := LateralDifference(m)
	if err != nil {
		t.Fatalf("LateralDifference: %v", err)
	}

	want := [][]float64{
		{0.5, 1, 1.5},
		{0.5, 2, 3.5},
	}
	testutil.RequireMatrixNearlyEqual(t, out, want, 1e-15)
}

func TestLateralDifference_RejectsSingleChannel(t *testing.T) {
	_, err := LateralDifference([][]float64{{1, 2}})
	if !errors.Is(err, ErrTooFewChannels) {
		t.Fatalf("err = %v, want ErrTooFewChannels", err)
	}
}

func TestLateralDifference_RejectsRaggedInput(t *testing.T) {
	_, err := LateralDifference([][]float64{{1, 2}, {1}})
	if err == nil {
		t.Fatal("expected error for ragged matrix")
	}
}

func TestRectify(t *testing.T) {
	m := [][]float64{{-1, 0, 2}, {3, -4, 0.5}}

	out := Rectify(m)

	want := [][]float64{{0, 0, 2}, {3, 0, 0.5}}
	testutil.RequireMatrixNearlyEqual(t, out, want, 0)

	if m[0][0] != -1 {
		t.Fatal("Rectify modified its input")
	}
}

func TestLeakyIntegrate_DCGain(t *testing.T) {
	x := testutil.DC(1, 64)

	y, err := LeakyIntegrate(x, 0.5)
	if err != nil {
		t.Fatalf("LeakyIntegrate: %v", err)
	}

	// Constant input passes only through the DC bin, where the gain is
	// 1/(1-alpha) = 2.
	testutil.RequireSliceNearlyEqual(t, y, testutil.DC(2, 64), 1e-12)
}

func TestLeakyIntegrate_ZeroAlphaIsIdentity(t *testing.T) {
	x := testutil.DeterministicNoise(5, 1.0, 100)

	y, err := LeakyIntegrate(x, 0)
	if err != nil {
		t.Fatalf("LeakyIntegrate: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, y, x, 1e-12)
}

func TestLeakyIntegrate_MatchesCircularRecursion(t *testing.T) {
	const n = 128
	const alpha = 0.5
	x := testutil.DeterministicNoise(9, 1.0, n)

	got, err := LeakyIntegrate(x, alpha)
	if err != nil {
		t.Fatalf("LeakyIntegrate: %v", err)
	}

	// Brute-force circular convolution with the geometric impulse
	// response, truncated where alpha^m underflows.
	want := make([]float64, n)
	for i := range want {
		g := 1.0
		for m := 0; m <= 300; m++ {
			want[i] += g * x[((i-m)%n+n)%n]
			g *= alpha
		}
	}
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-11)
}

func TestLeakyIntegrate_RejectsEmptyInput(t *testing.T) {
	if _, err := LeakyIntegrate(nil, 0.5); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestTranspose(t *testing.T) {
	m := [][]float64{{1, 2, 3}, {4, 5, 6}}

	out := Transpose(m)

	want := [][]float64{{1, 4}, {2, 5}, {3, 6}}
	testutil.RequireMatrixNearlyEqual(t, out, want, 0)

	back := Transpose(out)
	testutil.RequireMatrixNearlyEqual(t, back, m, 0)
}

func TestTranspose_Empty(t *testing.T) {
	if out := Transpose(nil); out != nil {
		t.Fatalf("Transpose(nil) = %v, want nil", out)
	}
}

func TestDecimate(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	edge := frameEdgeDecimate(x, 2, 5)
	testutil.RequireSliceNearlyEqual(t, edge, []float64{1, 3, 5, 7, 9}, 0)

	stride := strideDecimate(x, 3)
	testutil.RequireSliceNearlyEqual(t, stride, []float64{2, 5, 8}, 0)

	aligned := strideDecimate(x, 2)
	testutil.RequireSliceNearlyEqual(t, aligned, edge, 0)
}

func TestIntegratorResponse_DCValue(t *testing.T) {
	h := integratorResponse(8, 0.25)
	if math.Abs(real(h[0])-1/(1-0.25)) > 1e-15 || math.Abs(imag(h[0])) > 1e-15 {
		t.Fatalf("h[0] = %v, want %v", h[0], 1/(1-0.25))
	}
}
