package registry

import "github.com/rayference/tengen/internal/source"

// Data set identifiers.
const (
	Thuillier2003                Identifier = "thuillier_2003"
	WHI2008SunspotActive         Identifier = "whi_2008_sunspot_active"
	WHI2008FaculaeActive         Identifier = "whi_2008_faculae_active"
	WHI2008QuietSun              Identifier = "whi_2008_quiet_sun"
	Meftah2018                   Identifier = "meftah_2018"
	SOLID2017                    Identifier = "solid_2017"
	Coddington2021HighResolution Identifier = "coddington_2021-high_resolution"
	Coddington2021P005           Identifier = "coddington_2021-p005"
	Coddington2021P025           Identifier = "coddington_2021-p025"
	Coddington2021P1             Identifier = "coddington_2021-p1"
	Coddington2021One            Identifier = "coddington_2021-1"
)

func init() {
	MustRegister(Descriptor{
		ID:          Thuillier2003,
		Description: "Thuillier (2003) solar irradiance spectrum",
		Sources:     []string{source.ThuillierURL},
		Transformer: source.Thuillier2003,
	})

	for id, period := range map[Identifier]string{
		WHI2008SunspotActive: "sunspot active",
		WHI2008FaculaeActive: "faculae active",
		WHI2008QuietSun:      "quiet sun",
	} {
		MustRegister(Descriptor{
			ID:          id,
			Description: "WHI (2008) reference spectrum, " + period + " period",
			Sources:     []string{source.WHIURL},
			Transformer: source.WHI2008(period),
		})
	}

	MustRegister(Descriptor{
		ID:          Meftah2018,
		Description: "Meftah et al. (2018) SOLAR/SOLSPEC reference spectrum",
		Sources:     []string{source.MeftahURL},
		Transformer: source.Meftah2018,
	})

	MustRegister(Descriptor{
		ID:          SOLID2017,
		Description: "SOLID (2017) daily composite spectra, 1978 to 2014",
		Sources:     source.SOLIDURLs(),
		Transformer: source.SOLID2017,
	})

	for id, res := range map[Identifier]source.CoddingtonResolution{
		Coddington2021HighResolution: source.CoddingtonHighResolution,
		Coddington2021P005:           source.CoddingtonP005,
		Coddington2021P025:           source.CoddingtonP025,
		Coddington2021P1:             source.CoddingtonP1,
		Coddington2021One:            source.Coddington1,
	} {
		MustRegister(Descriptor{
			ID:          id,
			Description: "TSIS-1 HSRS (Coddington 2021), " + string(id[len("coddington_2021-"):]),
			Sources:     []string{source.CoddingtonURL(res)},
			Transformer: source.Coddington2021,
		})
	}
}
