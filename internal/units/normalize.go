package units

import "regexp"

var (
	signedExponent = regexp.MustCompile(`[-+][0-9]`)
	bareExponent   = regexp.MustCompile(`[a-z ][0-9]`)
)

// FormatMissingCarets inserts the exponent marker that third-party files omit,
// e.g. "m-2 s-1" becomes "m^-2 s^-1" and "m2" becomes "m^2".
//
// The transform is not idempotent: applying it to an already marked string
// inserts a second caret. Call it exactly once per raw unit string.
func FormatMissingCarets(s string) string {
	// Signed exponents: the caret goes before the sign.
	for count, loc := range signedExponent.FindAllStringIndex(s, -1) {
		i := loc[0] + count
		s = s[:i] + "^" + s[i:]
	}

	// Bare exponents: the caret goes between the letter and the digit.
	for count, loc := range bareExponent.FindAllStringIndex(s, -1) {
		i := loc[0] + count + 1
		s = s[:i] + "^" + s[i:]
	}
	return s
}
