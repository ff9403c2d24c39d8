// Package units parses unit expressions found in solar irradiance data files
// and converts magnitudes between dimensionally compatible units.
//
// A Registry is an immutable symbol table. Callers construct one with
// NewRegistry and pass it explicitly; Default returns a shared read-only
// instance initialised once per process.
package units

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// Dimension holds the exponents of the base dimensions length, mass, time
// and temperature.
type Dimension [4]int

var (
	dimLength      = Dimension{1, 0, 0, 0}
	dimMass        = Dimension{0, 1, 0, 0}
	dimTime        = Dimension{0, 0, 1, 0}
	dimTemperature = Dimension{0, 0, 0, 1}
	dimEnergy      = Dimension{2, 1, -2, 0}
	dimPower       = Dimension{2, 1, -3, 0}
	dimForce       = Dimension{1, 1, -2, 0}
	dimFrequency   = Dimension{0, 0, -1, 0}
	dimNone        = Dimension{}
)

func (d Dimension) add(o Dimension, sign int) Dimension {
	for i := range d {
		d[i] += sign * o[i]
	}
	return d
}

func (d Dimension) scale(n int) Dimension {
	for i := range d {
		d[i] *= n
	}
	return d
}

// Unit is a parsed unit expression: a scale factor relative to SI base units
// and a dimension vector.
type Unit struct {
	Expr  string
	Scale float64
	Dim   Dimension
}

func (u Unit) String() string {
	return u.Expr
}

// Compatible reports whether u and o measure the same physical dimension.
func (u Unit) Compatible(o Unit) bool {
	return u.Dim == o.Dim
}

type definition struct {
	scale float64
	dim   Dimension
}

type prefix struct {
	name   string
	factor float64
}

// Registry resolves unit symbols and names. It is safe for concurrent use
// because it is never mutated after construction.
type Registry struct {
	units    map[string]definition
	prefixes []prefix
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, built on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry builds a registry with SI prefixes and the units that appear in
// spectral irradiance data sets.
func NewRegistry() *Registry {
	r := &Registry{units: map[string]definition{
		"m":        {1, dimLength},
		"meter":    {1, dimLength},
		"metre":    {1, dimLength},
		"micron":   {1e-6, dimLength},
		"Å":        {1e-10, dimLength},
		"Angstrom": {1e-10, dimLength},
		"angstrom": {1e-10, dimLength},
		"g":        {1e-3, dimMass},
		"gram":     {1e-3, dimMass},
		"s":        {1, dimTime},
		"sec":      {1, dimTime},
		"second":   {1, dimTime},
		"minute":   {60, dimTime},
		"hour":     {3600, dimTime},
		"day":      {86400, dimTime},
		"K":        {1, dimTemperature},
		"kelvin":   {1, dimTemperature},
		"W":        {1, dimPower},
		"watt":     {1, dimPower},
		"J":        {1, dimEnergy},
		"joule":    {1, dimEnergy},
		"erg":      {1e-7, dimEnergy},
		"N":        {1, dimForce},
		"newton":   {1, dimForce},
		"Hz":       {1, dimFrequency},
		"hertz":    {1, dimFrequency},

		"dimensionless": {1, dimNone},
	}}

	long := map[string]float64{
		"yotta": 1e24, "zetta": 1e21, "exa": 1e18, "peta": 1e15, "tera": 1e12,
		"giga": 1e9, "mega": 1e6, "kilo": 1e3, "hecto": 1e2, "deca": 1e1,
		"deci": 1e-1, "centi": 1e-2, "milli": 1e-3, "micro": 1e-6, "nano": 1e-9,
		"pico": 1e-12, "femto": 1e-15, "atto": 1e-18, "zepto": 1e-21, "yocto": 1e-24,
	}
	short := map[string]float64{
		"Y": 1e24, "Z": 1e21, "E": 1e18, "P": 1e15, "T": 1e12, "G": 1e9,
		"M": 1e6, "k": 1e3, "h": 1e2, "da": 1e1, "d": 1e-1, "c": 1e-2,
		"m": 1e-3, "u": 1e-6, "µ": 1e-6, "μ": 1e-6, "n": 1e-9, "p": 1e-12,
		"f": 1e-15, "a": 1e-18, "z": 1e-21, "y": 1e-24,
	}
	for name, f := range long {
		r.prefixes = append(r.prefixes, prefix{name, f})
	}
	for name, f := range short {
		r.prefixes = append(r.prefixes, prefix{name, f})
	}
	// Longest prefix first so "da" wins over "d" and "micro" over "m".
	sort.Slice(r.prefixes, func(i, j int) bool {
		if len(r.prefixes[i].name) != len(r.prefixes[j].name) {
			return len(r.prefixes[i].name) > len(r.prefixes[j].name)
		}
		return r.prefixes[i].name < r.prefixes[j].name
	})
	return r
}

// MustParse is Parse for expressions known at compile time.
func (r *Registry) MustParse(expr string) Unit {
	u, err := r.Parse(expr)
	if err != nil {
		panic(err)
	}
	return u
}

// Parse evaluates a unit expression such as "W/m^2/nm", "W m^-2 nm^-1" or
// "microwatt/cm^2/nm". Products may be written with "*", "." or whitespace,
// exponents with "^" or "**". Division binds to the following factor only.
func (r *Registry) Parse(expr string) (Unit, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return Unit{}, fmt.Errorf("parse unit %q: %w", expr, err)
	}
	if len(tokens) == 0 {
		return Unit{}, fmt.Errorf("parse unit %q: empty expression", expr)
	}

	result := Unit{Expr: strings.TrimSpace(expr), Scale: 1}
	sign := 1
	expectFactor := true
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.kind {
		case tokenMul:
			if expectFactor {
				return Unit{}, fmt.Errorf("parse unit %q: unexpected %q", expr, tok.text)
			}
			sign, expectFactor = 1, true
			continue
		case tokenDiv:
			if expectFactor {
				return Unit{}, fmt.Errorf("parse unit %q: unexpected %q", expr, tok.text)
			}
			sign, expectFactor = -1, true
			continue
		case tokenPow:
			return Unit{}, fmt.Errorf("parse unit %q: exponent without base", expr)
		}

		var def definition
		switch tok.kind {
		case tokenNumber:
			v, err := strconv.ParseFloat(tok.text, 64)
			if err != nil {
				return Unit{}, fmt.Errorf("parse unit %q: %w", expr, err)
			}
			def = definition{scale: v, dim: dimNone}
		case tokenName:
			d, ok := r.lookup(tok.text)
			if !ok {
				return Unit{}, fmt.Errorf("parse unit %q: unknown unit %q", expr, tok.text)
			}
			def = d
		}

		exp := 1
		if i+2 < len(tokens) && tokens[i+1].kind == tokenPow {
			n, err := strconv.Atoi(tokens[i+2].text)
			if err != nil || tokens[i+2].kind != tokenNumber {
				return Unit{}, fmt.Errorf("parse unit %q: invalid exponent %q", expr, tokens[i+2].text)
			}
			exp = n
			i += 2
		} else if i+1 < len(tokens) && tokens[i+1].kind == tokenPow {
			return Unit{}, fmt.Errorf("parse unit %q: missing exponent", expr)
		}

		exp *= sign
		result.Scale *= math.Pow(def.scale, float64(exp))
		result.Dim = result.Dim.add(def.dim.scale(exp), 1)
		sign, expectFactor = 1, false
	}
	if expectFactor {
		return Unit{}, fmt.Errorf("parse unit %q: dangling operator", expr)
	}
	return result, nil
}

func (r *Registry) lookup(name string) (definition, bool) {
	if d, ok := r.units[name]; ok {
		return d, true
	}
	for _, p := range r.prefixes {
		if !strings.HasPrefix(name, p.name) || len(name) == len(p.name) {
			continue
		}
		if d, ok := r.units[name[len(p.name):]]; ok {
			return definition{scale: p.factor * d.scale, dim: d.dim}, true
		}
	}
	return definition{}, false
}

type tokenKind int

const (
	tokenName tokenKind = iota
	tokenNumber
	tokenMul
	tokenDiv
	tokenPow
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(strings.TrimSpace(expr))
	implicit := func() {
		// Whitespace between two factors is a product.
		if n := len(tokens); n > 0 {
			last := tokens[n-1].kind
			if last == tokenName || last == tokenNumber {
				tokens = append(tokens, token{tokenMul, " "})
			}
		}
	}

	for i := 0; i < len(runes); {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '*' && i+1 < len(runes) && runes[i+1] == '*':
			tokens = append(tokens, token{tokenPow, "**"})
			i += 2
		case c == '^':
			tokens = append(tokens, token{tokenPow, "^"})
			i++
		case c == '*' || c == '.' || c == '·':
			tokens = append(tokens, token{tokenMul, string(c)})
			i++
		case c == '/':
			tokens = append(tokens, token{tokenDiv, "/"})
			i++
		case unicode.IsDigit(c) || c == '-' || c == '+':
			start := i
			i = scanNumber(runes, i+1)
			if n := len(tokens); n > 0 && tokens[n-1].kind == tokenName {
				return nil, fmt.Errorf("number %q follows unit %q without an operator", string(runes[start:i]), tokens[n-1].text)
			}
			if n := len(tokens); n == 0 || tokens[n-1].kind != tokenPow {
				implicit()
			}
			tokens = append(tokens, token{tokenNumber, string(runes[start:i])})
		case unicode.IsLetter(c) || c == 'µ' || c == 'Å':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == '_') {
				i++
			}
			implicit()
			tokens = append(tokens, token{tokenName, string(runes[start:i])})
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return tokens, nil
}

// scanNumber returns the index just past the number body starting at i. An
// exponent marker is only consumed when digits follow it.
func scanNumber(runes []rune, i int) int {
	for i < len(runes) {
		r := runes[i]
		if unicode.IsDigit(r) || r == '.' {
			i++
			continue
		}
		if r == 'e' || r == 'E' {
			j := i + 1
			if j < len(runes) && (runes[j] == '-' || runes[j] == '+') {
				j++
			}
			if j < len(runes) && unicode.IsDigit(runes[j]) {
				i = j + 1
				continue
			}
		}
		break
	}
	return i
}
