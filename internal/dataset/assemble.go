package dataset

import (
	"fmt"
	"time"

	"github.com/rayference/tengen/internal/units"
	"github.com/rayference/tengen/internal/version"
)

const (
	// WavelengthUnits is the canonical wavelength unit.
	WavelengthUnits = "nm"
	// IrradianceUnits is the canonical spectral irradiance unit.
	IrradianceUnits = "W/m^2/nm"

	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// Unknown is the placeholder for provenance a source does not supply.
const Unknown = "unknown"

// CF Standard Name Table v77.
func ssiAttrs() Attributes {
	return Attributes{
		{"standard_name", "solar_irradiance_per_unit_wavelength"},
		{"long_name", "solar spectral irradiance"},
		{"units", IrradianceUnits},
	}
}

func wAttrs() Attributes {
	return Attributes{
		{"standard_name", "radiation_wavelength"},
		{"long_name", "wavelength"},
		{"units", WavelengthUnits},
	}
}

func tAttrs() Attributes {
	return Attributes{
		{"standard_name", "time"},
		{"long_name", "time"},
	}
}

func defaultAttrs() Attributes {
	return Attributes{
		{"Conventions", "CF-1.8"},
		{"title", Unknown},
		{"institution", Unknown},
		{"source", Unknown},
		{"references", Unknown},
	}
}

type assembleOptions struct {
	times    []time.Time
	attrs    Attributes
	registry *units.Registry
	now      func() time.Time
	tool     string
	version  string
}

// Option customises Assemble.
type Option func(*assembleOptions)

// WithTime attaches a time axis; ssi is then interpreted as (t, w).
func WithTime(ts []time.Time) Option {
	return func(o *assembleOptions) { o.times = ts }
}

// WithAttrs sets the data set provenance attributes, in order.
func WithAttrs(attrs Attributes) Option {
	return func(o *assembleOptions) { o.attrs = attrs }
}

// WithRegistry selects the unit registry used for conversions.
func WithRegistry(r *units.Registry) Option {
	return func(o *assembleOptions) { o.registry = r }
}

// WithClock overrides the time source for history and url stamps.
func WithClock(now func() time.Time) Option {
	return func(o *assembleOptions) { o.now = now }
}

// WithTool overrides the producing tool name and version.
func WithTool(name, ver string) Option {
	return func(o *assembleOptions) { o.tool, o.version = name, ver }
}

// Assemble converts ssi and w to canonical units and builds a Dataset with
// CF metadata. history and url are always appended and override any value
// provided through WithAttrs.
func Assemble(ssi, w units.Quantity, dataURL string, opts ...Option) (*Dataset, error) {
	o := assembleOptions{
		registry: units.Default(),
		now:      time.Now,
		tool:     version.Tool,
		version:  version.Version,
	}
	for _, opt := range opts {
		opt(&o)
	}

	wNM, err := w.MagnitudeIn(o.registry.MustParse(WavelengthUnits))
	if err != nil {
		return nil, fmt.Errorf("assemble wavelength: %w", err)
	}
	ssiCanon, err := ssi.MagnitudeIn(o.registry.MustParse(IrradianceUnits))
	if err != nil {
		return nil, fmt.Errorf("assemble irradiance: %w", err)
	}

	ds := &Dataset{
		W:        wNM,
		T:        []time.Time{},
		SSI:      ssiCanon,
		WAttrs:   wAttrs(),
		TAttrs:   tAttrs(),
		SSIAttrs: ssiAttrs(),
	}
	if len(o.times) > 0 {
		ds.T = make([]time.Time, len(o.times))
		for i, ts := range o.times {
			ds.T[i] = truncateDay(ts)
		}
		ds.TimeUnits = "days since " + ds.T[0].Format(dateLayout)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	ds.Attrs = defaultAttrs()
	for _, attr := range o.attrs {
		ds.Attrs = ds.Attrs.Set(attr.Key, attr.Value)
	}
	stamp := o.now().UTC().Format(timestampLayout)
	ds.Attrs = ds.Attrs.Set("history", fmt.Sprintf("%s - data set creation - %s, version %s", stamp, o.tool, o.version))
	ds.Attrs = ds.Attrs.Set("url", fmt.Sprintf("original data available at %s (last accessed on %s)", dataURL, stamp))
	return ds, nil
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyRange returns the UTC dates from start to end inclusive.
func DailyRange(start, end time.Time) []time.Time {
	start, end = truncateDay(start), truncateDay(end)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
