package cochlea

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-auditory/internal/testutil"
)

func TestCompress_IdentityReturnsCopy(t *testing.T) {
	m := [][]float64{{1, -2, 3}, {-4, 5, -6}}

	out, err := Compress(m, nil, CompressionIdentity)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	testutil.RequireMatrixNearlyEqual(t, out, m, 0)

	out[0][0] = 99
	if m[0][0] != 1 {
		t.Fatal("identity compression aliased the input")
	}
}

func TestCompress_Logistic(t *testing.T) {
	m := [][]float64{{0, 1}, {-1, 2}}
	factors := []float64{1, 2}

	out, err := Compress(m, factors, CompressionLogistic)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	want := [][]float64{
		{0.5, 0.2689414213699951},
		{0.6224593312018546, 0.2689414213699951},
	}
	testutil.RequireMatrixNearlyEqual(t, out, want, 1e-15)
}

func TestCompress_LogisticZeroFactorSaturates(t *testing.T) {
	m := [][]float64{{3, -3, 0.001, -0.001}}

	out, err := Compress(m, []float64{0}, CompressionLogistic)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	want := []float64{0, 1, 0, 1}
	testutil.RequireSliceNearlyEqual(t, out[0], want, 0)
}

func TestCompress_Root(t *testing.T) {
	m := [][]float64{{1, 2, 3, 4}}

	out, err := Compress(m, []float64{2}, CompressionRoot)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	// mean of squares is 7.5; entries become sqrt(x/7.5)
	want := []float64{
		0.3651483716701107,
		0.5163977794943222,
		0.6324555320336759,
		0.7302967433402214,
	}
	testutil.RequireSliceNearlyEqual(t, out[0], want, 1e-15)
}

func TestCompress_RootRejectsZeroFactor(t *testing.T) {
	_, err := Compress([][]float64{{1, 2}}, []float64{0}, CompressionRoot)
	if !errors.Is(err, ErrZeroRootFactor) {
		t.Fatalf("err = %v, want ErrZeroRootFactor", err)
	}
}

func TestCompress_PowerKeepsSign(t *testing.T) {
	m := [][]float64{{4, -4, 0, 0.25}}

	out, err := Compress(m, []float64{0.5}, CompressionPower)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	want := []float64{2, -2, 0, 0.5}
	testutil.RequireSliceNearlyEqual(t, out[0], want, 1e-15)
}

func TestCompress_RejectsFactorCountMismatch(t *testing.T) {
	m := [][]float64{{1}, {2}}
	_, err := Compress(m, []float64{1}, CompressionPower)
	if !errors.Is(err, ErrFactorCount) {
		t.Fatalf("err = %v, want ErrFactorCount", err)
	}
}

func TestCompress_RejectsUnknownMethod(t *testing.T) {
	_, err := Compress([][]float64{{1}}, []float64{1}, CompressionMethod(42))
	if !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("err = %v, want ErrUnknownCompression", err)
	}
}

func TestCompressionFactors(t *testing.T) {
	f := CompressionFactors(4, -2)
	testutil.RequireSliceNearlyEqual(t, f, []float64{-2, -2, -2, -2}, 0)
}

func TestCompressionMethod_String(t *testing.T) {
	cases := map[CompressionMethod]string{
		CompressionIdentity: "identity",
		CompressionLogistic: "logistic",
		CompressionRoot:     "root",
		CompressionPower:    "power",
	}
	for m, want := range cases {
		if m.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(m), m.String(), want)
		}
		if !m.Valid() {
			t.Errorf("%q reported invalid", want)
		}
	}
	if CompressionMethod(-1).Valid() {
		t.Error("CompressionMethod(-1) reported valid")
	}
}
