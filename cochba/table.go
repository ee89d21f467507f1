// Package cochba parses the cochlear filter coefficient table used by
// the auditory filter bank.
//
// The on-disk form is tab-separated text. Every cell is a complex
// literal with an ASCII "i" marking the imaginary unit. The first row
// carries the per-channel filter order in its real part; for a channel
// of order p, the following p+1 rows hold the numerator coefficients in
// their real parts and the denominator coefficients in their imaginary
// parts. Both sides are right-padded with zeros to FilterLength taps.
package cochba

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// FilterLength is the fixed per-channel coefficient count. Numerators
// and denominators shorter than this are right-padded with zeros.
const FilterLength = 25

var (
	// ErrEmptyTable is returned when the input holds no coefficient rows.
	ErrEmptyTable = errors.New("cochba: table has no coefficient rows")

	// ErrOrderRange is returned when a channel order is outside 1..24.
	ErrOrderRange = errors.New("cochba: filter order out of range")

	// ErrShape is returned when raw coefficient rows have the wrong shape.
	ErrShape = errors.New("cochba: coefficient shape mismatch")
)

// Table holds the cochlear filter bank coefficients. It is immutable
// after construction; accessors return copies.
type Table struct {
	b      [][]float64 // numerator per channel, length FilterLength
	a      [][]float64 // denominator per channel, length FilterLength
	orders []int
}

// Parse reads a coefficient table from its tab-separated text form.
// Blank lines are skipped; embedded spaces inside a cell are ignored.
// Errors name the offending line and field.
func Parse(r io.Reader) (*Table, error) {
	var rows [][]complex128

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		row := make([]complex128, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseComplex(strings.ReplaceAll(f, " ", ""), 128)
			if err != nil {
				return nil, fmt.Errorf("cochba: line %d, field %d: %q: %w", lineNo, i+1, f, err)
			}
			row[i] = v
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("cochba: line %d: %d fields, want %d", lineNo, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("cochba: read: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyTable
	}

	channels := len(rows[0])
	t := &Table{
		b:      make([][]float64, channels),
		a:      make([][]float64, channels),
		orders: make([]int, channels),
	}
	for ch := range channels {
		re := real(rows[0][ch])
		order := int(math.Round(re))
		if math.Abs(re-float64(order)) > 1e-6 || order < 1 || order >= FilterLength {
			return nil, fmt.Errorf("%w: channel %d: order %v", ErrOrderRange, ch, re)
		}
		if order+2 > len(rows) {
			return nil, fmt.Errorf("cochba: channel %d: order %d needs %d rows, table has %d",
				ch, order, order+2, len(rows))
		}

		b := make([]float64, FilterLength)
		a := make([]float64, FilterLength)
		for k := 0; k <= order; k++ {
			b[k] = real(rows[1+k][ch])
			a[k] = imag(rows[1+k][ch])
		}
		t.b[ch], t.a[ch], t.orders[ch] = b, a, order
	}
	return t, nil
}

// Load opens and parses a coefficient table file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cochba: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// New builds a table from raw zero-padded coefficient rows, one row per
// channel. Every row must have length FilterLength.
func New(b, a [][]float64) (*Table, error) {
	if len(b) == 0 || len(b) != len(a) {
		return nil, fmt.Errorf("%w: %d numerator rows, %d denominator rows", ErrShape, len(b), len(a))
	}

	t := &Table{
		b:      make([][]float64, len(b)),
		a:      make([][]float64, len(a)),
		orders: make([]int, len(b)),
	}
	for ch := range b {
		if len(b[ch]) != FilterLength || len(a[ch]) != FilterLength {
			return nil, fmt.Errorf("%w: channel %d: rows must have length %d", ErrShape, ch, FilterLength)
		}
		t.b[ch] = append([]float64(nil), b[ch]...)
		t.a[ch] = append([]float64(nil), a[ch]...)
		t.orders[ch] = impliedOrder(b[ch], a[ch])
	}
	return t, nil
}

// impliedOrder is the highest tap index carrying a nonzero coefficient.
func impliedOrder(b, a []float64) int {
	order := 0
	for k := 1; k < FilterLength; k++ {
		if b[k] != 0 || a[k] != 0 {
			order = k
		}
	}
	return order
}

// NumChannels returns the number of filter channels.
func (t *Table) NumChannels() int {
	return len(t.b)
}

// Order returns the filter order of one channel.
func (t *Table) Order(ch int) int {
	return t.orders[ch]
}

// Filter returns copies of the padded numerator and denominator
// coefficients for one channel.
func (t *Table) Filter(ch int) (b, a []float64) {
	b = append([]float64(nil), t.b[ch]...)
	a = append([]float64(nil), t.a[ch]...)
	return b, a
}
