// Command audspec converts a PCM WAV file into an auditory spectrogram.
//
// Usage:
//
//	audspec -table <file> [flags] <input.wav>
//
// The spectrogram is written as CSV, one row per output channel and one
// column per frame. The cochlear filter table is designed for 16 kHz
// input; the sample rate must be 16 kHz shifted by whole octaves
// (8 kHz, 16 kHz, 32 kHz, ...), anything else needs resampling first.
//
// Examples:
//
//	audspec -table cochba.txt speech.wav
//	audspec -table cochba.txt -frame 4 -tc 4 -o out.csv speech.wav
//	audspec -table cochba.txt -stage subband speech.wav
//	audspec -table cochba.txt -summary speech.wav
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-auditory/cochba"
	"github.com/cwbudde/algo-auditory/cochlea"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var compressionMethods = map[string]cochlea.CompressionMethod{
	"identity": cochlea.CompressionIdentity,
	"logistic": cochlea.CompressionLogistic,
	"root":     cochlea.CompressionRoot,
	"power":    cochlea.CompressionPower,
}

var filterModes = map[string]cochlea.FilterMode{
	"freq-response":  cochlea.FilterFreqResponse,
	"time-recursive": cochlea.FilterTimeRecursive,
}

var stages = map[string]cochlea.Stage{
	"spectrogram": cochlea.StageSpectrogram,
	"subband":     cochlea.StageSubband,
	"compressed":  cochlea.StageCompressed,
	"difference":  cochlea.StageDifference,
	"rectified":   cochlea.StageRectified,
}

var downsamplings = map[string]cochlea.Downsampling{
	"frame-edge": cochlea.DownsampleFrameEdge,
	"stride":     cochlea.DownsampleStride,
}

func main() {
	tablePath := flag.String("table", "", "path to the cochlear filter table (required)")
	frameLen := flag.Float64("frame", 8, "frame length in milliseconds")
	timeConst := flag.Float64("tc", 8, "leaky integrator time constant in milliseconds (0 disables)")
	method := flag.String("compress", "identity", "compression method: "+names(compressionMethods))
	factor := flag.Float64("factor", 1, "compression factor applied to every channel")
	mode := flag.String("mode", "freq-response", "subband filter mode: "+names(filterModes))
	stage := flag.String("stage", "spectrogram", "output stage: "+names(stages))
	downsample := flag.String("downsample", "frame-edge", "decimation scheme: "+names(downsamplings))
	output := flag.String("o", "-", "output CSV path, - for stdout")
	summary := flag.Bool("summary", false, "print shape and level statistics instead of CSV")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: audspec -table <file> [flags] <input.wav>\n\n")
		fmt.Fprintf(os.Stderr, "Converts a PCM WAV file into an auditory spectrogram (CSV).\n")
		fmt.Fprintf(os.Stderr, "The sample rate must be 16 kHz shifted by whole octaves.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  audspec -table cochba.txt speech.wav\n")
		fmt.Fprintf(os.Stderr, "  audspec -table cochba.txt -frame 4 -tc 4 -o out.csv speech.wav\n")
		fmt.Fprintf(os.Stderr, "  audspec -table cochba.txt -stage subband -summary speech.wav\n")
	}
	flag.Parse()

	if *tablePath == "" || flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	p := cochlea.Params{FrameLen: *frameLen, TimeConstant: *timeConst}
	var ok bool
	if p.Compression, ok = compressionMethods[*method]; !ok {
		badFlagValue("compress", *method, names(compressionMethods))
	}
	if p.Mode, ok = filterModes[*mode]; !ok {
		badFlagValue("mode", *mode, names(filterModes))
	}
	if p.Stage, ok = stages[*stage]; !ok {
		badFlagValue("stage", *stage, names(stages))
	}
	if p.Downsampling, ok = downsamplings[*downsample]; !ok {
		badFlagValue("downsample", *downsample, names(downsamplings))
	}

	if err := run(*tablePath, flag.Arg(0), *output, p, *factor, *summary); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(tablePath, wavPath, outPath string, p cochlea.Params, factor float64, summary bool) error {
	tab, err := cochba.Load(tablePath)
	if err != nil {
		return err
	}
	if p.Compression != cochlea.CompressionIdentity {
		p.Factors = cochlea.CompressionFactors(tab.NumChannels(), factor)
	}

	x, rate, err := readWave(wavPath)
	if err != nil {
		return err
	}
	p.OctaveShift, err = octaveShift(rate)
	if err != nil {
		return err
	}

	v, err := cochlea.Spectrogram(x, tab, p)
	if err != nil {
		return err
	}

	if summary {
		return printSummary(os.Stdout, wavPath, rate, p.OctaveShift, v)
	}
	return writeCSV(outPath, v)
}

// readWave decodes a PCM WAV file to a normalized mono sequence.
func readWave(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	x, err := monoSamples(buf)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return x, buf.Format.SampleRate, nil
}

// monoSamples converts an interleaved PCM buffer to [-1, 1] floats,
// averaging multichannel input down to mono.
func monoSamples(buf *audio.IntBuffer) ([]float64, error) {
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty audio stream")
	}
	norm, err := sampleNorm(buf.SourceBitDepth)
	if err != nil {
		return nil, err
	}

	channels := max(buf.Format.NumChannels, 1)
	frames := len(buf.Data) / channels
	x := make([]float64, frames)
	for i := range x {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		x[i] = sum / float64(channels) / norm
	}
	return x, nil
}

func sampleNorm(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		return 0x7F, nil
	case 16:
		return 0x7FFF, nil
	case 24:
		return 0x7FFFFF, nil
	case 32:
		return 0x7FFFFFFF, nil
	}
	return 0, fmt.Errorf("unsupported bit depth %d", bitDepth)
}

// octaveShift derives the octave offset from 16 kHz, the rate the
// cochlear filter table is designed for.
func octaveShift(sampleRate int) (int, error) {
	for shift := -4; shift <= 4; shift++ {
		if sampleRate == int(16000*math.Pow(2, float64(shift))) {
			return shift, nil
		}
	}
	return 0, fmt.Errorf("sample rate %d Hz is not a whole-octave shift of 16 kHz; resample to 8, 16 or 32 kHz first", sampleRate)
}

func writeCSV(path string, v [][]float64) error {
	if path == "-" {
		return writeCSVTo(os.Stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSVTo(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSVTo(out io.Writer, v [][]float64) error {
	w := csv.NewWriter(out)
	record := make([]string, 0, len(v[0]))
	for _, row := range v {
		record = record[:0]
		for _, val := range row {
			record = append(record, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func printSummary(w io.Writer, path string, rate, shift int, v [][]float64) error {
	lo, hi := v[0][0], v[0][0]
	sum := 0.0
	for _, row := range v {
		for _, val := range row {
			lo = min(lo, val)
			hi = max(hi, val)
			sum += val
		}
	}
	count := len(v) * len(v[0])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "input\t%s\n", path)
	fmt.Fprintf(tw, "sample rate\t%d Hz (octave shift %+d)\n", rate, shift)
	fmt.Fprintf(tw, "channels\t%d\n", len(v))
	fmt.Fprintf(tw, "frames\t%d\n", len(v[0]))
	fmt.Fprintf(tw, "min\t%g\n", lo)
	fmt.Fprintf(tw, "max\t%g\n", hi)
	fmt.Fprintf(tw, "mean\t%g\n", sum/float64(count))
	return tw.Flush()
}

func badFlagValue(name, got, valid string) {
	fmt.Fprintf(os.Stderr, "error: unknown -%s value %q (valid: %s)\n", name, got, valid)
	os.Exit(2)
}

func names[V any](m map[string]V) string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
