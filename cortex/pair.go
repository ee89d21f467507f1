package cortex

import (
	"fmt"

	"github.com/cwbudde/algo-auditory/internal/fftutil"
)

// PairTransform decomposes an auditory spectrogram with one cortical
// unit per explicit (scale, rate) pair. No mirrored filter pair is
// built: the sign of each rate selects the sweep direction of its own
// unit (see RateFilterSigned), which makes the units independently
// tunable at the cost of the strict up/down pairing Transform keeps.
// A zero Options.SRF always means 24 channels per octave here; the
// 95-channel convention applies only to Transform.
func PairTransform(y [][]float64, pairs []RateScale, opts Options) (*PairTensor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, ErrNoFilters
	}
	frames, channels, err := spectrogramDims(y)
	if err != nil {
		return nil, err
	}

	n1 := fftutil.NextPow2(frames)
	m1 := fftutil.NextPow2(channels)
	frameRate := opts.frameRate()
	srf := opts.SRF
	if srf == 0 {
		srf = 24
	}

	sp, err := newSpectrum(y, n1, m1)
	if err != nil {
		return nil, err
	}

	out := newPairTensor(len(pairs), frames, channels)
	for i, p := range pairs {
		hr, err := RateFilterSigned(p.Rate, n1, frameRate)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		hs, err := ScaleFilter(p.Scale, m1, srf)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}

		z, err := sp.applyRate(hr)
		if err != nil {
			return nil, err
		}
		if err := sp.applyScale(z, hs, out.plane(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
