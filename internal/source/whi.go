package source

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rayference/tengen/internal/dataset"
)

// WHIURL serves the three WHI (2008) reference spectra as one table.
const WHIURL = "https://lasp.colorado.edu/lisird/resources/whi_ref_spectra/data/ref_solar_irradiance_whi-2008_ver2.dat"

const (
	whiHeaderRows = 142
	whiCutoffNM   = 116.0
)

// WHIPeriod is one of the observation periods of the WHI campaign.
type WHIPeriod struct {
	ID    string
	Start time.Time
	End   time.Time
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WHIPeriods lists the periods in file column order: the irradiance of
// period i is in column i+1, after the wavelength column.
var WHIPeriods = []WHIPeriod{
	{ID: "sunspot active", Start: day(2008, time.March, 25), End: day(2008, time.March, 29)},
	{ID: "faculae active", Start: day(2008, time.March, 29), End: day(2008, time.April, 4)},
	{ID: "quiet sun", Start: day(2008, time.April, 10), End: day(2008, time.April, 16)},
}

// LookupWHIPeriod returns the index of the period named id.
func LookupWHIPeriod(id string) (int, bool) {
	for i, p := range WHIPeriods {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (p WHIPeriod) span() string {
	return p.Start.Format("2006-01-02") + " to " + p.End.Format("2006-01-02")
}

func whiAttrs(p WHIPeriod) dataset.Attributes {
	return dataset.Attributes{
		{Key: "title", Value: fmt.Sprintf("Whole Heliosphere Interval (WHI) solar irradiance reference "+
			"spectrum (2008) for time period %s ('%s' spectrum)", p.span(), p.ID)},
		{Key: "source", Value: fmt.Sprintf("Combination of satellite observations from the SEE and SORCE "+
			"instruments (from %s to %s) onboard the TIMED satellite and a prototype EVE instrument "+
			"onboard a sounding rocket launched on 2008-04-14.", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))},
		{Key: "references", Value: "https://doi.org/10.1029/2008GL036373"},
		{Key: "observation_period", Value: p.span()},
		{Key: "comment", Value: "The original data covers the range from 0.05 to 2399.95 nm, the present " +
			"dataset includes only the part of the original data where the wavelength > 116 nm."},
	}
}

// WHI2008 returns the transform for the period named id. It panics on an
// unknown id, which is a programming error in the registry table.
func WHI2008(id string) TransformFunc {
	idx, ok := LookupWHIPeriod(id)
	if !ok {
		panic(fmt.Sprintf("source: unknown WHI period %q", id))
	}
	period := WHIPeriods[idx]

	return func(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error) {
		rawURL, err := single(src)
		if err != nil {
			return nil, err
		}

		body, err := env.Fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		table, err := ParseColumns(rawURL, bytes.NewReader(body), TextOptions{
			Comments: []string{";"},
			SkipRows: whiHeaderRows,
		})
		if err != nil {
			return nil, err
		}
		wCol, _ := table.Column(0)
		ssiCol, err := table.Column(idx + 1)
		if err != nil {
			return nil, &ParseError{Source: rawURL, Err: err}
		}

		wKept, cols := mask(wCol, func(v float64) bool { return v > whiCutoffNM }, ssiCol)

		w, err := env.quantity(wKept, "nm")
		if err != nil {
			return nil, err
		}
		ssi, err := env.quantity(cols[0], "W/m^2/nm")
		if err != nil {
			return nil, err
		}
		return env.assemble(ssi, w, rawURL, whiAttrs(period), nil)
	}
}
