package cortex

// Tensor holds the full cortical decomposition: one complex plane of
// frames by channels per (scale, rate) unit. The rate axis carries both
// sweep directions; for K rates, entries 0..K-1 are the downward
// filters in input order and entries K..2K-1 the upward ones.
type Tensor struct {
	scales   int
	rates    int
	frames   int
	channels int
	data     []complex128
}

func newTensor(scales, rates, frames, channels int) *Tensor {
	return &Tensor{
		scales:   scales,
		rates:    rates,
		frames:   frames,
		channels: channels,
		data:     make([]complex128, scales*rates*frames*channels),
	}
}

// Dims returns the tensor extents: scale units, rate units counting
// both directions, time frames and frequency channels.
func (t *Tensor) Dims() (scales, rates, frames, channels int) {
	return t.scales, t.rates, t.frames, t.channels
}

// RateIndex maps rate number i of the input rate vector and a sweep
// direction onto the tensor rate axis.
func (t *Tensor) RateIndex(i int, dir Direction) int {
	if i < 0 || i >= t.rates/2 {
		panic("cortex: rate number out of range")
	}
	if dir == Upward {
		return i + t.rates/2
	}
	return i
}

// At returns one cortical response sample. Indices follow Dims order
// and panic when out of range.
func (t *Tensor) At(scale, rate, frame, channel int) complex128 {
	return t.data[t.index(scale, rate, frame, channel)]
}

// Plane returns a copy of the frames-by-channels response of one unit.
func (t *Tensor) Plane(scale, rate int) [][]complex128 {
	flat := t.plane(scale, rate)
	out := make([][]complex128, t.frames)
	for i := range out {
		row := make([]complex128, t.channels)
		copy(row, flat[i*t.channels:(i+1)*t.channels])
		out[i] = row
	}
	return out
}

// plane returns the writable flat block of one unit, frame major.
func (t *Tensor) plane(scale, rate int) []complex128 {
	base := t.index(scale, rate, 0, 0)
	return t.data[base : base+t.frames*t.channels]
}

func (t *Tensor) index(scale, rate, frame, channel int) int {
	if scale < 0 || scale >= t.scales || rate < 0 || rate >= t.rates ||
		frame < 0 || frame >= t.frames || channel < 0 || channel >= t.channels {
		panic("cortex: tensor index out of range")
	}
	return ((scale*t.rates+rate)*t.frames+frame)*t.channels + channel
}

// PairTensor holds one frames-by-channels response plane per explicit
// (scale, rate) pair, in pair order.
type PairTensor struct {
	pairs    int
	frames   int
	channels int
	data     []complex128
}

func newPairTensor(pairs, frames, channels int) *PairTensor {
	return &PairTensor{
		pairs:    pairs,
		frames:   frames,
		channels: channels,
		data:     make([]complex128, pairs*frames*channels),
	}
}

// Dims returns the tensor extents: pairs, time frames and frequency
// channels.
func (t *PairTensor) Dims() (pairs, frames, channels int) {
	return t.pairs, t.frames, t.channels
}

// At returns one response sample. Indices follow Dims order and panic
// when out of range.
func (t *PairTensor) At(pair, frame, channel int) complex128 {
	return t.data[t.index(pair, frame, channel)]
}

// Plane returns a copy of the frames-by-channels response of one pair.
func (t *PairTensor) Plane(pair int) [][]complex128 {
	flat := t.plane(pair)
	out := make([][]complex128, t.frames)
	for i := range out {
		row := make([]complex128, t.channels)
		copy(row, flat[i*t.channels:(i+1)*t.channels])
		out[i] = row
	}
	return out
}

// plane returns the writable flat block of one pair, frame major.
func (t *PairTensor) plane(pair int) []complex128 {
	base := t.index(pair, 0, 0)
	return t.data[base : base+t.frames*t.channels]
}

func (t *PairTensor) index(pair, frame, channel int) int {
	if pair < 0 || pair >= t.pairs ||
		frame < 0 || frame >= t.frames || channel < 0 || channel >= t.channels {
		panic("cortex: tensor index out of range")
	}
	return (pair*t.frames+frame)*t.channels + channel
}
