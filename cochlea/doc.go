// Package cochlea implements the peripheral stage of the auditory
// model: a bank of 25-tap IIR filters, per-channel compression, lateral
// inhibition between neighboring channels, half-wave rectification and
// leaky temporal integration, producing an auditory spectrogram at a
// configurable frame rate.
//
// The model runs at a base rate of 16 kHz shifted by a whole number of
// octaves, so a frame of FrameLen milliseconds spans
//
//	L = round(FrameLen * 2^(4+OctaveShift))
//
// samples and a signal of T samples yields ceil(T/L) frames.
//
// Basic usage:
//
//	tab, err := cochba.Load("cochba.txt")
//	if err != nil {
//		...
//	}
//	v, err := cochlea.Spectrogram(x, tab, cochlea.Params{
//		FrameLen:     8,
//		TimeConstant: 8,
//	})
//
// The spectrogram has one row per adjacent channel pair (the lateral
// difference removes one row) and one column per frame. Params.Stage
// stops the pipeline early and returns one of the intermediate
// matrices instead; [Inverse] approximately reconstructs a waveform
// from the pre-compression subband matrix (see [StageSubband]).
package cochlea
