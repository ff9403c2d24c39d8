package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
)

// Encode writes ds to path as a classic netCDF file. An existing file at path
// is replaced.
//
// A zero-length time axis is not written: classic netCDF has no fixed
// zero-length dimension. Decode restores it.
func Encode(ds *Dataset, path string) (err error) {
	if err := ds.Validate(); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("encode %s: %w", path, cerr)
		}
	}()

	if err := addVar(cw, VarWavelength, ds.W, []string{VarWavelength}, ds.WAttrs); err != nil {
		return err
	}
	if ds.HasTime() {
		offsets := make([]int32, len(ds.T))
		for i, ts := range ds.T {
			offsets[i] = int32(ts.Sub(ds.T[0]).Hours() / 24)
		}
		tattrs := ds.TAttrs.Clone().Set("units", ds.TimeUnits)
		if err := addVar(cw, VarTime, offsets, []string{VarTime}, tattrs); err != nil {
			return err
		}

		rows := make([][]float64, len(ds.T))
		for i := range rows {
			rows[i] = append([]float64(nil), ds.Row(i)...)
		}
		if err := addVar(cw, VarSSI, rows, ds.SSIDims(), ds.SSIAttrs); err != nil {
			return err
		}
	} else {
		if err := addVar(cw, VarSSI, ds.SSI, ds.SSIDims(), ds.SSIAttrs); err != nil {
			return err
		}
	}

	global, err := orderedMap(ds.Attrs)
	if err != nil {
		return err
	}
	if err := cw.AddGlobalAttrs(global); err != nil {
		return fmt.Errorf("encode global attributes: %w", err)
	}
	return nil
}

func addVar(cw *cdf.CDFWriter, name string, values interface{}, dims []string, attrs Attributes) error {
	am, err := orderedMap(attrs)
	if err != nil {
		return err
	}
	if err := cw.AddVar(name, api.Variable{Values: values, Dimensions: dims, Attributes: am}); err != nil {
		return fmt.Errorf("encode variable %s: %w", name, err)
	}
	return nil
}

func orderedMap(attrs Attributes) (*util.OrderedMap, error) {
	vals := make(map[string]interface{}, len(attrs))
	for _, attr := range attrs {
		vals[attr.Key] = attr.Value
	}
	m, err := util.NewOrderedMap(attrs.Keys(), vals)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}
	return m, nil
}

// Decode reads a data set previously written by Encode.
func Decode(path string) (*Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer nc.Close()

	ds, err := DecodeGroup(nc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ds, nil
}

// DecodeGroup extracts a normalized data set from an open netCDF group.
func DecodeGroup(g api.Group) (*Dataset, error) {
	ds := &Dataset{
		T:     []time.Time{},
		Attrs: readAttributes(g.Attributes()),
	}

	wv, err := g.GetVariable(VarWavelength)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", VarWavelength, err)
	}
	if ds.W, err = Float64s(wv.Values); err != nil {
		return nil, fmt.Errorf("variable %s: %w", VarWavelength, err)
	}
	ds.WAttrs = readAttributes(wv.Attributes)

	ds.TAttrs = tAttrs()
	if tv, err := g.GetVariable(VarTime); err == nil {
		attrs := readAttributes(tv.Attributes)
		unitsAttr, _ := attrs.Get("units")
		ds.T, err = decodeTime(tv.Values, unitsAttr)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", VarTime, err)
		}
		ds.TimeUnits = unitsAttr
		ds.TAttrs = Attributes{}
		for _, attr := range attrs {
			if attr.Key != "units" {
				ds.TAttrs = append(ds.TAttrs, attr)
			}
		}
	}

	sv, err := g.GetVariable(VarSSI)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", VarSSI, err)
	}
	if ds.HasTime() {
		ds.SSI, err = flattenMatrix(sv.Values)
	} else {
		ds.SSI, err = Float64s(sv.Values)
	}
	if err != nil {
		return nil, fmt.Errorf("variable %s: %w", VarSSI, err)
	}
	ds.SSIAttrs = readAttributes(sv.Attributes)

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func readAttributes(am api.AttributeMap) Attributes {
	if am == nil {
		return Attributes{}
	}
	out := Attributes{}
	for _, key := range am.Keys() {
		v, ok := am.Get(key)
		if !ok {
			continue
		}
		out = append(out, Attribute{Key: key, Value: attributeString(v)})
	}
	return out
}

func attributeString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// StringAttr returns the string attribute key of v, or "" when absent.
func StringAttr(v *api.Variable, key string) string {
	if v == nil || v.Attributes == nil {
		return ""
	}
	raw, ok := v.Attributes.Get(key)
	if !ok {
		return ""
	}
	return attributeString(raw)
}

func decodeTime(values interface{}, unitsAttr string) ([]time.Time, error) {
	origin, err := parseDaysSince(unitsAttr)
	if err != nil {
		return nil, err
	}
	offsets, err := Float64s(values)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(offsets))
	for i, off := range offsets {
		out[i] = origin.AddDate(0, 0, int(off))
	}
	return out, nil
}

func parseDaysSince(s string) (time.Time, error) {
	const prefix = "days since "
	if !strings.HasPrefix(s, prefix) {
		return time.Time{}, fmt.Errorf("unsupported time units %q", s)
	}
	rest := strings.TrimSpace(strings.TrimPrefix(s, prefix))
	if len(rest) > len(dateLayout) {
		rest = rest[:len(dateLayout)]
	}
	origin, err := time.Parse(dateLayout, rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported time units %q: %w", s, err)
	}
	return origin, nil
}

// Float64s converts a one-dimensional numeric netCDF value slice.
func Float64s(values interface{}) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return append([]float64(nil), v...), nil
	case []float32:
		return widen(v), nil
	case []int32:
		return widen(v), nil
	case []int64:
		return widen(v), nil
	case []int16:
		return widen(v), nil
	case []int8:
		return widen(v), nil
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	case []uint64:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", values)
	}
}

type number interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func widen[T number](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// Matrix converts a two-dimensional numeric netCDF value into rows.
func Matrix(values interface{}) ([][]float64, error) {
	switch v := values.(type) {
	case [][]float64:
		out := make([][]float64, len(v))
		for i := range v {
			out[i] = append([]float64(nil), v[i]...)
		}
		return out, nil
	case [][]float32:
		out := make([][]float64, len(v))
		for i := range v {
			out[i] = widen(v[i])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported matrix type %T", values)
	}
}

func flattenMatrix(values interface{}) ([]float64, error) {
	rows, err := Matrix(values)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, row := range rows {
		out = append(out, row...)
	}
	return out, nil
}
