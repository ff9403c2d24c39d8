package source

import (
	"context"
	"fmt"
	"os"

	"github.com/batchatco/go-native-netcdf/netcdf"

	"github.com/rayference/tengen/internal/dataset"
	"github.com/rayference/tengen/internal/units"
)

// CoddingtonResolution selects a spectral resolution variant of the TSIS-1
// HSRS file.
type CoddingtonResolution string

// Resolution variants, valued by their file name fragment.
const (
	CoddingtonHighResolution CoddingtonResolution = ""
	CoddingtonP005           CoddingtonResolution = "p005nm_resolution_"
	CoddingtonP025           CoddingtonResolution = "p025nm_resolution_"
	CoddingtonP1             CoddingtonResolution = "p1nm_resolution_"
	Coddington1              CoddingtonResolution = "1nm_resolution_"
)

const coddingtonRoot = "https://lasp.colorado.edu/lisird/resources/lasp/hsrs/"

// CoddingtonURL returns the file URL of a resolution variant.
func CoddingtonURL(res CoddingtonResolution) string {
	return fmt.Sprintf("%shybrid_reference_spectrum_%sc2021-03-04_with_unc.nc", coddingtonRoot, res)
}

var coddingtonAttrs = dataset.Attributes{
	{Key: "title", Value: "TSIS-1 Hybrid Solar Reference Spectrum (HSRS)"},
	{Key: "institution", Value: "Laboratory for Atmospheric and Space Physics"},
	{Key: "source", Value: "TSIS-1 Spectral Irradiance Monitor (SIM), CubeSat Compact SIM (CSIM), " +
		"Air Force Geophysical Laboratory ultraviolet solar irradiance balloon observations, " +
		"ground-based Quality Assurance of Spectral Ultraviolet Measurements In Europe Fourier " +
		"transform spectrometer solar irradiance observations, Kitt Peak National Observatory solar " +
		"transmittance atlas and the semi-empirical Solar Pseudo-Transmittance Spectrum atlas."},
	{Key: "references", Value: "https://doi.org/10.1029/2020GL091709"},
}

// Coddington2021 reads "Vacuum Wavelength" and "SSI" from the HSRS netCDF
// file. The SSI units attribute omits exponent carets and is repaired first.
var Coddington2021 TransformFunc = func(ctx context.Context, env *Env, src []string) (*dataset.Dataset, error) {
	rawURL, err := single(src)
	if err != nil {
		return nil, err
	}

	body, err := env.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// The netCDF reader needs a seekable file, so the payload is spooled.
	path, err := env.scratchPath(rawURL)
	if err != nil {
		return nil, err
	}
	defer env.removeScratch(path)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return nil, err
	}

	wVals, wUnits, ssiVals, ssiUnits, err := readCoddington(path)
	if err != nil {
		return nil, &ParseError{Source: rawURL, Err: err}
	}

	w, err := env.quantity(wVals, wUnits)
	if err != nil {
		return nil, err
	}
	ssi, err := env.quantity(ssiVals, units.FormatMissingCarets(ssiUnits))
	if err != nil {
		return nil, err
	}
	return env.assemble(ssi, w, rawURL, coddingtonAttrs, nil)
}

func readCoddington(path string) (w []float64, wUnits string, ssi []float64, ssiUnits string, err error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, "", nil, "", err
	}
	defer nc.Close()

	wv, err := nc.GetVariable("Vacuum Wavelength")
	if err != nil {
		return nil, "", nil, "", fmt.Errorf("variable Vacuum Wavelength: %w", err)
	}
	if w, err = dataset.Float64s(wv.Values); err != nil {
		return nil, "", nil, "", fmt.Errorf("variable Vacuum Wavelength: %w", err)
	}

	sv, err := nc.GetVariable("SSI")
	if err != nil {
		return nil, "", nil, "", fmt.Errorf("variable SSI: %w", err)
	}
	if ssi, err = dataset.Float64s(sv.Values); err != nil {
		return nil, "", nil, "", fmt.Errorf("variable SSI: %w", err)
	}

	wUnits, ssiUnits = dataset.StringAttr(wv, "units"), dataset.StringAttr(sv, "units")
	if wUnits == "" || ssiUnits == "" {
		return nil, "", nil, "", fmt.Errorf("missing units attribute")
	}
	return w, wUnits, ssi, ssiUnits, nil
}
