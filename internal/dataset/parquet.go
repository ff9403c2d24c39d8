package dataset

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Row is one (t, w, ssi) sample of the long-format Parquet export. T is the
// ISO date, empty for data sets without a time axis.
type Row struct {
	T   string  `parquet:"t,optional"`
	W   float64 `parquet:"w"`
	SSI float64 `parquet:"ssi"`
}

// Rows flattens ds into long-format rows, time-major.
func Rows(ds *Dataset) []Row {
	nt := 1
	if ds.HasTime() {
		nt = len(ds.T)
	}
	rows := make([]Row, 0, nt*len(ds.W))
	for ti := 0; ti < nt; ti++ {
		date := ""
		if ds.HasTime() {
			date = ds.T[ti].Format(dateLayout)
		}
		for wi, w := range ds.W {
			rows = append(rows, Row{T: date, W: w, SSI: ds.At(ti, wi)})
		}
	}
	return rows
}

// WriteParquet exports ds to path. Data set attributes, variable units and
// the time units are stored as key/value metadata.
func WriteParquet(ds *Dataset, path string) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	opts := []parquet.WriterOption{
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
	}
	for _, attr := range ds.Attrs {
		opts = append(opts, parquet.KeyValueMetadata(attr.Key, attr.Value))
	}
	opts = append(opts,
		parquet.KeyValueMetadata("w:units", WavelengthUnits),
		parquet.KeyValueMetadata("ssi:units", IrradianceUnits),
	)
	if ds.HasTime() {
		opts = append(opts, parquet.KeyValueMetadata("t:units", ds.TimeUnits))
	}

	if err := parquet.WriteFile(path, Rows(ds), opts...); err != nil {
		return fmt.Errorf("write parquet %s: %w", path, err)
	}
	return nil
}
