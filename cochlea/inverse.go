package cochlea

import (
	"fmt"

	"github.com/cwbudde/algo-auditory/cochba"
	"github.com/cwbudde/algo-auditory/internal/fftutil"
)

// Inverse reconstructs a waveform approximation from a subband matrix
// (see [StageSubband]): each channel spectrum is divided by its filter
// transfer function and the per-channel reconstructions are averaged.
// Averaging blurs what the bank spread across channels, so this is an
// approximation, not a true inverse. Bins where a channel response is
// near zero amplify rounding noise; the fixed cochlear filters keep
// enough support for speech-band material.
//
// v must have one row per table channel.
func Inverse(v [][]float64, tab *cochba.Table) ([]float64, error) {
	if len(v) == 0 || len(v[0]) == 0 {
		return nil, ErrEmptyInput
	}
	if len(v) != tab.NumChannels() {
		return nil, fmt.Errorf("%w: %d rows for %d channels", ErrChannelCount, len(v), tab.NumChannels())
	}
	if err := checkRect(v); err != nil {
		return nil, err
	}

	n := len(v[0])
	tr, err := fftutil.New(n)
	if err != nil {
		return nil, err
	}

	sum := make([]float64, n)
	buf := make([]complex128, n)
	for ch := range v {
		for i, s := range v[ch] {
			buf[i] = complex(s, 0)
		}
		if err := tr.Forward(buf, buf); err != nil {
			return nil, err
		}

		b, a := tab.Filter(ch)
		h := transferFunction(b, a, n)
		for i := range buf {
			buf[i] /= h[i]
		}
		if err := tr.Inverse(buf, buf); err != nil {
			return nil, err
		}
		for i := range sum {
			sum[i] += real(buf[i])
		}
	}

	scale := 1 / float64(len(v))
	for i := range sum {
		sum[i] *= scale
	}
	return sum, nil
}
