package dataset

import (
	"fmt"
	"time"
)

// Variable and dimension names of a normalized data set.
const (
	VarWavelength = "w"
	VarTime       = "t"
	VarSSI        = "ssi"
)

// Attribute is a single string-valued metadata entry.
type Attribute struct {
	Key   string
	Value string
}

// Attributes keeps metadata in insertion order so encoded files list them the
// way they were assembled.
type Attributes []Attribute

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Set replaces the value under key in place, or appends it when absent.
func (a Attributes) Set(key, value string) Attributes {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attribute{Key: key, Value: value})
}

// Keys lists attribute names in order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a))
	for i, attr := range a {
		keys[i] = attr.Key
	}
	return keys
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	return append(Attributes(nil), a...)
}

// Dataset is a solar spectral irradiance data set in canonical units.
//
// W is in nm and SSI in W/m^2/nm. When T is empty SSI has len(W) values,
// otherwise it is the row-major (t, w) matrix with len(T)*len(W) values.
type Dataset struct {
	W         []float64
	T         []time.Time
	SSI       []float64
	TimeUnits string

	Attrs    Attributes
	WAttrs   Attributes
	TAttrs   Attributes
	SSIAttrs Attributes
}

// HasTime reports whether the data set carries a non-empty time axis.
func (d *Dataset) HasTime() bool {
	return len(d.T) > 0
}

// SSIDims returns the dimension names of the ssi variable.
func (d *Dataset) SSIDims() []string {
	if d.HasTime() {
		return []string{VarTime, VarWavelength}
	}
	return []string{VarWavelength}
}

// Shape returns the length of every ssi dimension.
func (d *Dataset) Shape() []int {
	if d.HasTime() {
		return []int{len(d.T), len(d.W)}
	}
	return []int{len(d.W)}
}

// At returns the irradiance at time index ti and wavelength index wi. ti is
// ignored for data sets without a time axis.
func (d *Dataset) At(ti, wi int) float64 {
	if !d.HasTime() {
		return d.SSI[wi]
	}
	return d.SSI[ti*len(d.W)+wi]
}

// Row returns the spectrum at time index ti as a sub-slice of SSI.
func (d *Dataset) Row(ti int) []float64 {
	if !d.HasTime() {
		return d.SSI
	}
	n := len(d.W)
	return d.SSI[ti*n : (ti+1)*n]
}

// Validate checks the shape invariants between the coordinates and ssi.
func (d *Dataset) Validate() error {
	if len(d.W) == 0 {
		return fmt.Errorf("dataset: empty wavelength coordinate")
	}
	want := len(d.W)
	if d.HasTime() {
		want *= len(d.T)
	}
	if len(d.SSI) != want {
		return fmt.Errorf("dataset: ssi has %d values, shape %v needs %d", len(d.SSI), d.Shape(), want)
	}
	return nil
}
