package spice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SI scale factors accepted after a numeric value. SPICE is case-insensitive,
// so "meg" is the only way to say mega; a lone m is always milli.
var scaleFactors = map[string]float64{
	"t":   1e12,
	"g":   1e9,
	"meg": 1e6,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

// Trailing unit letters (1kOhm, 10uF, 5mH) are ignored after the scale suffix.
var valueRe = regexp.MustCompile(`(?i)^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[tgkmunpf])?[a-z]*$`)

// ParseValue parses a SPICE numeric token: plain or scientific-notation
// float, optional scale suffix, optional trailing unit word.
func ParseValue(tok string) (float64, error) {
	m := valueRe.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return 0, fmt.Errorf("spice: invalid value %q", tok)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("spice: invalid value %q: %w", tok, err)
	}
	if m[2] != "" {
		num *= scaleFactors[strings.ToLower(m[2])]
	}
	return num, nil
}

// IsValue reports whether tok parses as a numeric value token.
func IsValue(tok string) bool {
	_, err := ParseValue(tok)
	return err == nil
}
