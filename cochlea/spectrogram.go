package cochlea

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-auditory/cochba"
	"github.com/cwbudde/algo-auditory/internal/fftutil"
)

// Pipeline errors.
var (
	ErrFrameLen         = errors.New("cochlea: frame length must resolve to at least one sample")
	ErrZeroTimeConstant = errors.New("cochlea: zero time constant requires a one-sample frame")
	ErrTableChannels    = errors.New("cochlea: filter table needs at least two channels")
	ErrChannelCount     = errors.New("cochlea: matrix rows must match table channels")
)

// Stage names an intermediate of the spectrogram pipeline. Setting it
// on Params stops the pipeline there and returns that matrix.
type Stage int

const (
	// StageSpectrogram runs the full pipeline to the frame-rate output.
	StageSpectrogram Stage = iota

	// StageSubband returns the raw filter bank output, one row per channel.
	StageSubband

	// StageCompressed returns the subbands after compression.
	StageCompressed

	// StageDifference returns the lateral difference rows.
	StageDifference

	// StageRectified returns the rectified difference rows.
	StageRectified

	stageCount // sentinel for validation
)

var stageNames = [stageCount]string{
	"spectrogram", "subband", "compressed", "difference", "rectified",
}

// String returns the name of the pipeline stage.
func (s Stage) String() string {
	if s >= 0 && s < stageCount {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Valid reports whether s is a known pipeline stage.
func (s Stage) Valid() bool {
	return s >= 0 && s < stageCount
}

// Downsampling selects how integrated channels are decimated to frames.
// Both schemes pick the same index set on a frame-aligned signal; they
// differ only on inputs that are not padded to a whole frame count.
type Downsampling int

const (
	// DownsampleFrameEdge samples the last point of each frame window.
	DownsampleFrameEdge Downsampling = iota

	// DownsampleStride takes every L-th sample starting at L-1.
	DownsampleStride

	downsamplingCount // sentinel for validation
)

var downsamplingNames = [downsamplingCount]string{"frame-edge", "stride"}

// String returns the name of the downsampling scheme.
func (d Downsampling) String() string {
	if d >= 0 && d < downsamplingCount {
		return downsamplingNames[d]
	}
	return fmt.Sprintf("Downsampling(%d)", int(d))
}

// Valid reports whether d is a known downsampling scheme.
func (d Downsampling) Valid() bool {
	return d >= 0 && d < downsamplingCount
}

// Params configures the auditory spectrogram pipeline. FrameLen must be
// positive; everything else has a usable zero value. Typical settings
// are FrameLen 8, TimeConstant 8 and OctaveShift 0 for 16 kHz input.
type Params struct {
	// FrameLen is the output frame length in milliseconds.
	FrameLen float64

	// TimeConstant is the leaky integrator time constant in
	// milliseconds. Zero disables integration, which is only valid when
	// the frame length resolves to a single sample.
	TimeConstant float64

	// OctaveShift moves the working sample rate in octaves relative to
	// 16 kHz (0 for 16 kHz input, -1 for 8 kHz).
	OctaveShift int

	// Compression selects the per-channel nonlinearity.
	Compression CompressionMethod

	// Factors holds one compression parameter per channel. Identity
	// compression ignores it.
	Factors []float64

	// Mode selects the subband filtering algorithm.
	Mode FilterMode

	// Stage stops the pipeline early and returns that intermediate.
	Stage Stage

	// Downsampling selects the frame decimation scheme.
	Downsampling Downsampling
}

// FrameLength converts a frame duration in milliseconds to samples at
// the shifted working rate: round(frameLen * 2^(4+octaveShift)).
func FrameLength(frameLen float64, octaveShift int) int {
	return int(math.Round(frameLen * math.Pow(2, float64(4+octaveShift))))
}

// NumFrames returns how many frames a signal of signalLen samples
// yields with frames of frameLen samples: the ceiling of their ratio.
func NumFrames(signalLen, frameLen int) int {
	return (signalLen + frameLen - 1) / frameLen
}

// Spectrogram computes the auditory spectrogram of x. The input is
// zero-padded to a whole number of frames, pushed through the filter
// bank and the nonlinear stages, integrated and decimated to one column
// per frame. The result has tab.NumChannels()-1 rows unless p.Stage
// stops the pipeline at an earlier intermediate.
func Spectrogram(x []float64, tab *cochba.Table, p Params) ([][]float64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	frameLen := FrameLength(p.FrameLen, p.OctaveShift)
	if frameLen < 1 {
		return nil, fmt.Errorf("%w: %g ms at octave shift %d", ErrFrameLen, p.FrameLen, p.OctaveShift)
	}

	frames := NumFrames(len(x), frameLen)
	padded := make([]float64, frames*frameLen)
	copy(padded, x)

	subband, err := p.filterBank(padded, tab)
	if err != nil {
		return nil, err
	}
	if p.Stage == StageSubband {
		return subband, nil
	}

	compressed, err := Compress(subband, p.Factors, p.Compression)
	if err != nil {
		return nil, err
	}
	if p.Stage == StageCompressed {
		return compressed, nil
	}

	// The lateral difference onward needs adjacent channel pairs;
	// earlier stage taps run on any table.
	if tab.NumChannels() < 2 {
		return nil, ErrTableChannels
	}
	diff, err := LateralDifference(compressed)
	if err != nil {
		return nil, err
	}
	if p.Stage == StageDifference {
		return diff, nil
	}

	rect := Rectify(diff)
	if p.Stage == StageRectified {
		return rect, nil
	}

	return p.integrate(rect, frameLen, frames)
}

// FromCochleagram runs the pipeline tail on an existing channels-by-time
// cochleagram: compression, rectification, leaky integration and stride
// decimation. No lateral difference is applied, and decimation is always
// stride-based since the input need not be frame-aligned.
func FromCochleagram(v [][]float64, p Params) ([][]float64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(v) == 0 || len(v[0]) == 0 {
		return nil, ErrEmptyInput
	}
	if err := checkRect(v); err != nil {
		return nil, err
	}
	frameLen := FrameLength(p.FrameLen, p.OctaveShift)
	if frameLen < 1 {
		return nil, fmt.Errorf("%w: %g ms at octave shift %d", ErrFrameLen, p.FrameLen, p.OctaveShift)
	}

	compressed, err := Compress(v, p.Factors, p.Compression)
	if err != nil {
		return nil, err
	}
	rect := Rectify(compressed)

	if p.TimeConstant == 0 {
		if frameLen == 1 {
			return rect, nil
		}
		return nil, fmt.Errorf("%w: frame length %d", ErrZeroTimeConstant, frameLen)
	}

	n := len(rect[0])
	tr, err := fftutil.New(n)
	if err != nil {
		return nil, err
	}
	h := integratorResponse(n, p.alpha())

	out := make([][]float64, len(rect))
	for i, row := range rect {
		y, err := integrateRow(tr, h, row)
		if err != nil {
			return nil, err
		}
		out[i] = strideDecimate(y, frameLen)
	}
	return out, nil
}

func (p Params) validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("cochlea: unsupported filter mode %v", p.Mode)
	}
	if !p.Compression.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownCompression, p.Compression)
	}
	if !p.Stage.Valid() {
		return fmt.Errorf("cochlea: unsupported stage %v", p.Stage)
	}
	if !p.Downsampling.Valid() {
		return fmt.Errorf("cochlea: unsupported downsampling %v", p.Downsampling)
	}
	return nil
}

// alpha converts the time constant to the per-sample integrator pole.
func (p Params) alpha() float64 {
	if p.TimeConstant == 0 {
		return 0
	}
	return math.Exp(-1 / (p.TimeConstant * math.Pow(2, float64(4+p.OctaveShift))))
}

// filterBank runs every table channel over the padded signal.
func (p Params) filterBank(x []float64, tab *cochba.Table) ([][]float64, error) {
	out := make([][]float64, tab.NumChannels())

	if p.Mode == FilterTimeRecursive {
		for ch := range out {
			b, a := tab.Filter(ch)
			y, err := FilterRecursive(b, a, x)
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", ch, err)
			}
			out[ch] = y
		}
		return out, nil
	}

	// Frequency mode shares one input spectrum across all channels.
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
	for ch := range out {
		b, a := tab.Filter(ch)
		y, err := filterSpectrum(tr, xf, b, a)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		out[ch] = y
	}
	return out, nil
}

// integrate runs the leaky integrator over each row and decimates to
// the frame rate. A zero time constant skips integration and is only
// valid when a frame is one sample long.
func (p Params) integrate(rows [][]float64, frameLen, frames int) ([][]float64, error) {
	if p.TimeConstant == 0 {
		if frameLen == 1 {
			return rows, nil
		}
		return nil, fmt.Errorf("%w: frame length %d", ErrZeroTimeConstant, frameLen)
	}

	n := len(rows[0])
	tr, err := fftutil.New(n)
	if err != nil {
		return nil, err
	}
	h := integratorResponse(n, p.alpha())

	out := make([][]float64, len(rows))
	for i, row := range rows {
		y, err := integrateRow(tr, h, row)
		if err != nil {
			return nil, err
		}
		switch p.Downsampling {
		case DownsampleStride:
			out[i] = strideDecimate(y, frameLen)
		default:
			out[i] = frameEdgeDecimate(y, frameLen, frames)
		}
	}
	return out, nil
}
