package source

import (
	"context"
	"os"

	"github.com/rayference/tengen/internal/dataset"
)

// MeftahURL serves the gzip-compressed Meftah et al. (2018) spectrum.
const MeftahURL = "http://cdsarc.u-strasbg.fr/ftp/J/A+A/611/A1/spectrum.dat.gz"

// The raw table covers 0.5 to 3000.10 nm while the paper quotes 165 to
// 3000 nm; the 3000.10 nm point is kept.
const meftahCutoffNM = 165.0

var meftahAttrs = dataset.Attributes{
	{Key: "title", Value: "Meftah et al (2018) solar irradiance reference spectrum"},
	{Key: "source", Value: "Observations from the SOLSPEC instrument of the SOLAR payload onboard the international space station"},
	{Key: "references", Value: "https://doi.org/10.1051/0004-6361/201731316"},
	{Key: "observation_period", Value: "2008-04-05 to 2016-12-31"},
}

// Meftah2018 downloads the compressed table to a scratch file, reads it with
// "---" as the missing-value token and keeps wavelengths >= 165 nm.
var Meftah2018 TransformFunc = func(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error) {
	rawURL, err := single(src)
	if err != nil {
		return nil, err
	}

	path, err := env.download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer env.removeScratch(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := Decompress(f)
	if err != nil {
		return nil, &ParseError{Source: rawURL, Err: err}
	}
	defer r.Close()

	table, err := ParseColumns(rawURL, r, TextOptions{Missing: "---"})
	if err != nil {
		return nil, err
	}
	wCol, _ := table.Column(0)
	ssiCol, err := table.Column(1)
	if err != nil {
		return nil, &ParseError{Source: rawURL, Err: err}
	}

	wKept, cols := mask(wCol, func(v float64) bool { return v >= meftahCutoffNM }, ssiCol)

	w, err := env.quantity(wKept, "nm")
	if err != nil {
		return nil, err
	}
	ssi, err := env.quantity(cols[0], "W/m^2/nm")
	if err != nil {
		return nil, err
	}
	return env.assemble(ssi, w, rawURL, meftahAttrs, nil)
}
