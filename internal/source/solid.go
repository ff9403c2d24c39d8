package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"

	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/units"
)

// SOLIDFolder is the FTP folder holding the SOLID composite files.
const SOLIDFolder = "ftp://ftp.pmodwrc.ch/pub/projects/SOLID/database/composite_published/SOLID_1978_published/"

const solidFileCount = 20

// SOLIDURLs returns the twenty composite files solid_0_100.nc to
// solid_1900_100.nc.
func SOLIDURLs() []string {
	urls := make([]string, solidFileCount)
	for k := range urls {
		urls[k] = fmt.Sprintf("%ssolid_%d_100.nc", SOLIDFolder, k*100)
	}
	return urls
}

// The composite ends on this day; earlier days are counted backwards.
var solidEnd = day(2014, time.December, 31)

func solidAttrs(start, end time.Time) dataset.Attributes {
	return dataset.Attributes{
		{Key: "title", Value: "SOLID solar irradiance composite spectrum"},
		{Key: "source", Value: "Combined original SSI observations from 20 different instruments"},
		{Key: "references", Value: "https://doi.org/10.1002/2016JA023492"},
		{Key: "observation_period", Value: start.Format("2006-01-02") + " to " + end.Format("2006-01-02")},
	}
}

// solidChunk is one file, re-oriented to (time, wavelength).
type solidChunk struct {
	w        []float64
	rows     [][]float64
	wUnits   string
	ssiUnits string
}

// SOLID2017 downloads every composite file, joins them and dates the time
// axis so that it ends on 2014-12-31.
var SOLID2017 TransformFunc = func(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error) {
	if len(src) == 0 {
		return nil, errors.New("solid: no source files")
	}

	var paths []string
	defer func() {
		for _, p := range paths {
			env.removeScratch(p)
		}
	}()
	for _, rawURL := range src {
		path, err := env.download(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	chunks := make([]solidChunk, len(paths))
	for i, path := range paths {
		chunk, err := readSOLIDChunk(path)
		if err != nil {
			return nil, &ParseError{Source: src[i], Err: err}
		}
		chunks[i] = chunk
	}

	w, rows, err := combineSOLID(chunks)
	if err != nil {
		return nil, &ParseError{Source: SOLIDFolder, Err: err}
	}

	flat := make([]float64, 0, len(rows)*len(w))
	for _, row := range rows {
		flat = append(flat, row...)
	}
	start := solidEnd.AddDate(0, 0, -(len(rows) - 1))

	wq, err := env.quantity(w, chunks[0].wUnits)
	if err != nil {
		return nil, err
	}
	ssi, err := env.quantity(flat, units.FormatMissingCarets(chunks[0].ssiUnits))
	if err != nil {
		return nil, err
	}
	return env.assemble(ssi, wq, SOLIDFolder, solidAttrs(start, solidEnd), dataset.DailyRange(start, solidEnd))
}

func readSOLIDChunk(path string) (solidChunk, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return solidChunk{}, err
	}
	defer nc.Close()

	wv, err := nc.GetVariable("wavelength")
	if err != nil {
		return solidChunk{}, fmt.Errorf("variable wavelength: %w", err)
	}
	w, err := dataset.Float64s(wv.Values)
	if err != nil {
		return solidChunk{}, fmt.Errorf("variable wavelength: %w", err)
	}
	if len(w) == 0 {
		return solidChunk{}, errors.New("variable wavelength is empty")
	}

	dv, err := nc.GetVariable("data")
	if err != nil {
		return solidChunk{}, fmt.Errorf("variable data: %w", err)
	}
	matrix, err := dataset.Matrix(dv.Values)
	if err != nil {
		return solidChunk{}, fmt.Errorf("variable data: %w", err)
	}
	// Stored as (wavelength, time); anything else already has time first.
	if len(dv.Dimensions) == 2 && dv.Dimensions[0] == "wavelength" {
		matrix = transpose(matrix)
	}
	for i, row := range matrix {
		if len(row) != len(w) {
			return solidChunk{}, fmt.Errorf("data row %d has %d values for %d wavelengths", i, len(row), len(w))
		}
	}

	chunk := solidChunk{
		w:        w,
		rows:     matrix,
		wUnits:   dataset.StringAttr(wv, "units"),
		ssiUnits: dataset.StringAttr(dv, "units"),
	}
	if chunk.wUnits == "" {
		chunk.wUnits = "nm"
	}
	if chunk.ssiUnits == "" {
		return solidChunk{}, errors.New("variable data has no units")
	}
	return chunk, nil
}

// combineSOLID joins chunks by coordinates: chunks sharing the wavelength
// grid are stacked along time, chunks sharing the time length are joined
// along wavelength in ascending wavelength order.
func combineSOLID(chunks []solidChunk) ([]float64, [][]float64, error) {
	if len(chunks) == 0 {
		return nil, nil, errors.New("no files to combine")
	}
	for i, c := range chunks {
		if len(c.w) == 0 {
			return nil, nil, fmt.Errorf("file %d has no wavelengths", i)
		}
	}
	first := chunks[0]
	for _, c := range chunks[1:] {
		if c.wUnits != first.wUnits || c.ssiUnits != first.ssiUnits {
			return nil, nil, fmt.Errorf("files disagree on units")
		}
	}

	if allSameWavelengths(chunks) {
		var rows [][]float64
		for _, c := range chunks {
			rows = append(rows, c.rows...)
		}
		return append([]float64(nil), first.w...), rows, nil
	}

	nt := len(first.rows)
	for _, c := range chunks[1:] {
		if len(c.rows) != nt {
			return nil, nil, fmt.Errorf("files share neither wavelength grid nor time axis")
		}
	}
	ordered := append([]solidChunk(nil), chunks...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].w[0] < ordered[j].w[0] })

	var w []float64
	rows := make([][]float64, nt)
	for _, c := range ordered {
		w = append(w, c.w...)
		for t := range rows {
			rows[t] = append(rows[t], c.rows[t]...)
		}
	}
	return w, rows, nil
}

func allSameWavelengths(chunks []solidChunk) bool {
	first := chunks[0].w
	for _, c := range chunks[1:] {
		if len(c.w) != len(first) {
			return false
		}
		for i := range first {
			if c.w[i] != first[i] {
				return false
			}
		}
	}
	return true
}

func transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return m
	}
	out := make([][]float64, len(m[0]))
	for j := range out {
		out[j] = make([]float64, len(m))
		for i := range m {
			out[j][i] = m[i][j]
		}
	}
	return out
}
