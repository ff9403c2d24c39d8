package source

import (
	"bytes"
	"context"

	"github.com/rayference/tengen/internal/dataset"
)

// ThuillierURL serves the Thuillier (2003) spectrum as column text.
const ThuillierURL = "https://oceancolor.gsfc.nasa.gov/docs/rsr/f0.txt"

var thuillierAttrs = dataset.Attributes{
	{Key: "title", Value: "Thuillier (2003) solar irradiance spectrum"},
	{Key: "institution", Value: "Service d'Aéronomie du CNRS, F91371, Verrières-le-Buisson, France."},
	{Key: "source", Value: "Combined observations from the SOLSPEC instrument during the ATLAS-1 " +
		"mission (from 1992-03-24 to 1992-04-02) and the SOSP instrument onboard the EURECA " +
		"satellite (from 1992-8-7 to 1993-7-1), with the Kurucz and Bell (1995) synthetic spectrum"},
	{Key: "references", Value: "https://doi.org/10.1023/A:1024048429145"},
}

// Thuillier2003 parses the two-column f0.txt table: wavelength in nm and
// irradiance in µW/cm^2/nm. Lines are commented with "/" or "!".
var Thuillier2003 TransformFunc = func(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error) {
	rawURL, err := single(src)
	if err != nil {
		return nil, err
	}

	body, err := env.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	table, err := ParseColumns(rawURL, bytes.NewReader(body), TextOptions{Comments: []string{"/", "!"}})
	if err != nil {
		return nil, err
	}
	wCol, _ := table.Column(0)
	ssiCol, err := table.Column(1)
	if err != nil {
		return nil, &ParseError{Source: rawURL, Err: err}
	}

	w, err := env.quantity(wCol, "nm")
	if err != nil {
		return nil, err
	}
	ssi, err := env.quantity(ssiCol, "microwatt/cm^2/nm")
	if err != nil {
		return nil, err
	}
	return env.assemble(ssi, w, rawURL, thuillierAttrs, nil)
}
