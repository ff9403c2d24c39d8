package units

import "fmt"

// DimensionError reports a conversion between incompatible units.
type DimensionError struct {
	From string
	To   string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("cannot convert from %q to %q: incompatible dimensions", e.From, e.To)
}

// Quantity is an array of magnitudes tagged with their unit.
type Quantity struct {
	Values []float64
	Unit   Unit
}

// Quantity parses expr and tags values with the resulting unit.
func (r *Registry) Quantity(values []float64, expr string) (Quantity, error) {
	u, err := r.Parse(expr)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Values: values, Unit: u}, nil
}

// Factor returns the multiplier converting magnitudes in from to magnitudes in to.
func Factor(from, to Unit) (float64, error) {
	if !from.Compatible(to) {
		return 0, &DimensionError{From: from.Expr, To: to.Expr}
	}
	return from.Scale / to.Scale, nil
}

// To returns the magnitudes of q expressed in target. The receiver is left
// untouched.
func (q Quantity) To(target Unit) (Quantity, error) {
	f, err := Factor(q.Unit, target)
	if err != nil {
		return Quantity{}, err
	}
	out := make([]float64, len(q.Values))
	for i, v := range q.Values {
		out[i] = v * f
	}
	return Quantity{Values: out, Unit: target}, nil
}

// MagnitudeIn is a shorthand for To(target).Values.
func (q Quantity) MagnitudeIn(target Unit) ([]float64, error) {
	c, err := q.To(target)
	if err != nil {
		return nil, err
	}
	return c.Values, nil
}
