// Package cortex decomposes an auditory spectrogram into a bank of
// spectro-temporal modulation responses.
//
// Each cortical unit is a separable two-dimensional filter: a temporal
// rate filter tuned to a modulation rate in Hz and a spectral scale
// filter tuned to a ripple density in cycles per octave. Transform
// builds the full cross product of a rate vector and a scale vector
// with an explicit upward/downward direction split per rate;
// PairTransform builds one unit per explicit (scale, rate) pair, with
// the sweep direction encoded in the sign of the rate. The two
// constructions are related but not numerically interchangeable.
//
// Filters are applied by pointwise multiplication in the frequency
// domain of both axes. Each axis is padded to twice the next power of
// two, so filter tails wrap into the padding rather than into the
// frames and channels that are kept.
//
// A cochlear spectrogram arrives channel-major; the transforms here
// want frames by channels:
//
//	y := cochlea.Transpose(spec)
//	tensor, err := cortex.Transform(y, cortex.LogRates(4), cortex.LogScales(5),
//		cortex.Options{FrameLen: 8})
//
// All transforms are pure. Inputs are never written, and every call
// returns freshly allocated output, so units and channels may be
// consumed concurrently.
package cortex
