package cortex

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-auditory/internal/fftutil"
)

// Transform errors.
var (
	ErrEmptySpectrogram = errors.New("cortex: empty spectrogram")
	ErrRaggedRows       = errors.New("cortex: spectrogram rows differ in length")
	ErrNoFilters        = errors.New("cortex: need at least one rate and one scale")
	ErrNotImplemented   = errors.New("cortex: full-window output is not implemented")
	ErrFrameLen         = errors.New("cortex: frame length must not be negative")
)

// Options configures the cortical transforms. The zero value analyzes
// a 5 ms frame spectrogram with the resolution conventions of the
// fixed cochlear bank.
type Options struct {
	// FrameLen is the frame duration of the input spectrogram in
	// milliseconds. Zero means 5 ms, a 200 Hz frame rate.
	FrameLen float64

	// SRF is the spectral resolution in channels per octave. Zero picks
	// 20 for 95-channel input and 24 for anything else; PairTransform
	// always resolves zero to 24.
	SRF float64

	// FullTime and FullFreq request untruncated output windows. Neither
	// is implemented; setting one fails the transform.
	FullTime bool
	FullFreq bool
}

func (o Options) validate() error {
	if o.FullTime {
		return fmt.Errorf("%w: FullTime", ErrNotImplemented)
	}
	if o.FullFreq {
		return fmt.Errorf("%w: FullFreq", ErrNotImplemented)
	}
	if o.FrameLen < 0 {
		return fmt.Errorf("%w: %g", ErrFrameLen, o.FrameLen)
	}
	if o.SRF < 0 {
		return fmt.Errorf("%w: %g", ErrSpectralResolution, o.SRF)
	}
	return nil
}

// frameRate returns the spectrogram sampling rate in Hz.
func (o Options) frameRate() float64 {
	frameLen := o.FrameLen
	if frameLen == 0 {
		frameLen = 5
	}
	return 1000 / frameLen
}

// spectralResolution returns the channels-per-octave density assumed
// for an input with the given channel count.
func (o Options) spectralResolution(channels int) float64 {
	if o.SRF != 0 {
		return o.SRF
	}
	if channels == 95 {
		return 20
	}
	return 24
}

// Transform decomposes an auditory spectrogram into the full cortical
// tensor. y is indexed [frame][channel]; use cochlea.Transpose on a
// channel-major cochlear spectrogram. Every rate is applied in both
// sweep directions, so the result holds len(scales) by 2*len(rates)
// planes of len(y) frames by len(y[0]) channels. An all-zero input
// yields an all-zero tensor of that shape.
func Transform(y [][]float64, rates, scales []float64, opts Options) (*Tensor, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(rates) == 0 || len(scales) == 0 {
		return nil, ErrNoFilters
	}
	frames, channels, err := spectrogramDims(y)
	if err != nil {
		return nil, err
	}

	n1 := fftutil.NextPow2(frames)
	m1 := fftutil.NextPow2(channels)
	frameRate := opts.frameRate()
	srf := opts.spectralResolution(channels)

	sp, err := newSpectrum(y, n1, m1)
	if err != nil {
		return nil, err
	}

	scaleFilters := make([][]float64, len(scales))
	for i, s := range scales {
		h, err := ScaleFilter(s, m1, srf)
		if err != nil {
			return nil, fmt.Errorf("scale %g: %w", s, err)
		}
		scaleFilters[i] = h
	}

	out := newTensor(len(scales), 2*len(rates), frames, channels)
	for rdx, rate := range rates {
		base, err := RateFilter(rate, n1, frameRate)
		if err != nil {
			return nil, fmt.Errorf("rate %g: %w", rate, err)
		}
		for _, dir := range []Direction{Downward, Upward} {
			z, err := sp.applyRate(directionalResponse(base, dir))
			if err != nil {
				return nil, err
			}
			for sdx := range scales {
				dst := out.plane(sdx, out.RateIndex(rdx, dir))
				if err := sp.applyScale(z, scaleFilters[sdx], dst); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func spectrogramDims(y [][]float64) (frames, channels int, err error) {
	if len(y) == 0 || len(y[0]) == 0 {
		return 0, 0, ErrEmptySpectrogram
	}
	channels = len(y[0])
	for i, row := range y {
		if len(row) != channels {
			return 0, 0, fmt.Errorf("%w: row %d has %d values, row 0 has %d", ErrRaggedRows, i, len(row), channels)
		}
	}
	return len(y), channels, nil
}

// spectrum carries the 2D frequency-domain image of one spectrogram
// together with the plans and scratch buffers used to filter it.
type spectrum struct {
	frames   int // kept frame count
	channels int // kept channel count
	n2, m2   int // doubled transform lengths
	time     *fftutil.Transformer
	freq     *fftutil.Transformer
	bins     [][]complex128 // n2 rows by m1 columns
	col      []complex128   // scratch, length n2
	row      []complex128   // scratch, length m2
}

// newSpectrum transforms y along frequency onto m2 = 2*m1 bins keeping
// m1, then along time onto n2 = 2*n1 bins.
func newSpectrum(y [][]float64, n1, m1 int) (*spectrum, error) {
	frames, channels := len(y), len(y[0])
	n2, m2 := 2*n1, 2*m1

	ftime, err := fftutil.New(n2)
	if err != nil {
		return nil, err
	}
	ffreq, err := fftutil.New(m2)
	if err != nil {
		return nil, err
	}

	sp := &spectrum{
		frames:   frames,
		channels: channels,
		n2:       n2,
		m2:       m2,
		time:     ftime,
		freq:     ffreq,
		col:      make([]complex128, n2),
		row:      make([]complex128, m2),
	}

	rows := make([][]complex128, frames)
	for i, r := range y {
		for j := range sp.row {
			sp.row[j] = 0
		}
		for j, v := range r {
			sp.row[j] = complex(v, 0)
		}
		if err := ffreq.Forward(sp.row, sp.row); err != nil {
			return nil, err
		}
		rows[i] = append([]complex128(nil), sp.row[:m1]...)
	}

	sp.bins = make([][]complex128, n2)
	for i := range sp.bins {
		sp.bins[i] = make([]complex128, m1)
	}
	for j := 0; j < m1; j++ {
		for i := range sp.col {
			sp.col[i] = 0
		}
		for i := 0; i < frames; i++ {
			sp.col[i] = rows[i][j]
		}
		if err := ftime.Forward(sp.col, sp.col); err != nil {
			return nil, err
		}
		for i := 0; i < n2; i++ {
			sp.bins[i][j] = sp.col[i]
		}
	}
	return sp, nil
}

// applyRate multiplies the time axis by hr, inverts it, and returns
// the kept frames of every channel bin.
func (sp *spectrum) applyRate(hr []complex128) ([][]complex128, error) {
	m1 := len(sp.bins[0])
	out := make([][]complex128, sp.frames)
	for i := range out {
		out[i] = make([]complex128, m1)
	}
	for j := 0; j < m1; j++ {
		for i := 0; i < sp.n2; i++ {
			sp.col[i] = hr[i] * sp.bins[i][j]
		}
		if err := sp.time.Inverse(sp.col, sp.col); err != nil {
			return nil, err
		}
		for i := 0; i < sp.frames; i++ {
			out[i][j] = sp.col[i]
		}
	}
	return out, nil
}

// applyScale multiplies each row of z by hs, inverts the frequency
// axis on m2 bins and writes the kept channels of every frame into
// dst, frame major.
func (sp *spectrum) applyScale(z [][]complex128, hs []float64, dst []complex128) error {
	for i, r := range z {
		for j := range sp.row {
			sp.row[j] = 0
		}
		for j, v := range r {
			sp.row[j] = v * complex(hs[j], 0)
		}
		if err := sp.freq.Inverse(sp.row, sp.row); err != nil {
			return err
		}
		copy(dst[i*sp.channels:(i+1)*sp.channels], sp.row[:sp.channels])
	}
	return nil
}
