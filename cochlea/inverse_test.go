package cochlea

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-auditory/internal/testutil"
)

func TestInverse_RecoversFilterBankInput(t *testing.T) {
	tab := testTable(t, 3)
	x := testutil.DeterministicNoise(5, 1.0, 512)

	v := make([][]float64, tab.NumChannels())
	for ch := range v {
		b, a := tab.Filter(ch)
		y, err := FilterFreq(b, a, x)
		if err != nil {
			t.Fatalf("channel %d: %v", ch, err)
		}
		v[ch] = y
	}

	got, err := Inverse(v, tab)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	// Dividing out each transfer function undoes the bank exactly; only
	// rounding noise survives the average.
	testutil.RequireSliceNearlyEqual(t, got, x, 1e-9)
}

func TestInverse_SingleChannel(t *testing.T) {
	tab := testTable(t, 1)
	x := testutil.DeterministicSine(440, 16000, 1.0, 256)

	b, a := tab.Filter(0)
	y, err := FilterFreq(b, a, x)
	if err != nil {
		t.Fatalf("FilterFreq: %v", err)
	}

	got, err := Inverse([][]float64{y}, tab)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, x, 1e-10)
}

func TestInverse_SubbandStageRoundTrip(t *testing.T) {
	tab := testTable(t, 4)
	x := testutil.DeterministicNoise(7, 0.5, 1000)

	// 0.25 ms frames keep the 1000-sample input frame-aligned, so the
	// pipeline adds no padding and the subbands cover x exactly.
	v, err := Spectrogram(x, tab, Params{FrameLen: 0.25, TimeConstant: 2, Stage: StageSubband})
	if err != nil {
		t.Fatalf("Spectrogram: %v", err)
	}

	got, err := Inverse(v, tab)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, x, 1e-9)
}

func TestInverse_RejectsChannelMismatch(t *testing.T) {
	tab := testTable(t, 3)
	v := [][]float64{testutil.Ones(8), testutil.Ones(8)}

	_, err := Inverse(v, tab)
	if !errors.Is(err, ErrChannelCount) {
		t.Fatalf("err = %v, want ErrChannelCount", err)
	}
}

func TestInverse_RejectsEmptyInput(t *testing.T) {
	tab := testTable(t, 3)
	if _, err := Inverse(nil, tab); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}
