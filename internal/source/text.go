package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// TextOptions describes a whitespace-delimited numeric table.
type TextOptions struct {
	// Comments are markers after which the rest of a line is ignored.
	Comments []string
	// SkipRows drops that many leading lines before parsing.
	SkipRows int
	// Missing is a token parsed as NaN.
	Missing string
}

// Table is a parsed numeric table stored column by column.
type Table struct {
	Columns [][]float64
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0])
}

// Column returns column i or an error when the table is too narrow.
func (t *Table) Column(i int) ([]float64, error) {
	if i < 0 || i >= len(t.Columns) {
		return nil, fmt.Errorf("column %d requested, table has %d", i, len(t.Columns))
	}
	return t.Columns[i], nil
}

// ParseColumns reads a numeric table. Every data row must have the same
// number of fields; blank and comment-only lines are skipped.
func ParseColumns(name string, r io.Reader, opts TextOptions) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	table := &Table{}
	line := 0
	for sc.Scan() {
		line++
		if line <= opts.SkipRows {
			continue
		}

		text := sc.Text()
		for _, marker := range opts.Comments {
			if idx := strings.Index(text, marker); idx >= 0 {
				text = text[:idx]
			}
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		if table.Columns == nil {
			table.Columns = make([][]float64, len(fields))
		} else if len(fields) != len(table.Columns) {
			return nil, &ParseError{Source: name, Line: line, Err: fmt.Errorf("expected %d columns, got %d", len(table.Columns), len(fields))}
		}
		for i, field := range fields {
			v, err := parseField(field, opts.Missing)
			if err != nil {
				return nil, &ParseError{Source: name, Line: line, Err: err}
			}
			table.Columns[i] = append(table.Columns[i], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	if table.Rows() == 0 {
		return nil, &ParseError{Source: name, Err: errors.New("no data rows")}
	}
	return table, nil
}

func parseField(field, missing string) (float64, error) {
	if missing != "" && field == missing {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(field, 64)
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decompress wraps r in a gzip or zstd decoder when the payload starts with
// the corresponding magic number, and returns it unchanged otherwise.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(br), nil
	}
}

// mask keeps the indices where keep(w[i]) is true in every column.
func mask(w []float64, keep func(float64) bool, cols ...[]float64) ([]float64, [][]float64) {
	outW := make([]float64, 0, len(w))
	outCols := make([][]float64, len(cols))
	for i, v := range w {
		if !keep(v) {
			continue
		}
		outW = append(outW, v)
		for c := range cols {
			outCols[c] = append(outCols[c], cols[c][i])
		}
	}
	return outW, outCols
}
