package main

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// StringTransformer defines the contract for a function that can transform a string.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

// defaultTransformer is the production implementation of our interface.
type defaultTransformer struct{}

// TransformString calls the actual transform.String function.
func (dt defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

// Use a variable of the interface type. This is our "injection point".
var transformer StringTransformer = defaultTransformer{}

// digitMapper maps Persian (U+06F0..U+06F9) and Arabic-Indic (U+0660..U+0669)
// digit glyphs onto their ASCII equivalents and leaves every other rune alone.
var digitMapper = runes.Map(func(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	}
	return r
})

// normalizeNumerals replaces every localized decimal digit in s with its ASCII
// equivalent. The mapping is total and idempotent: text that is already ASCII
// comes back unchanged, and non-digit runes are preserved exactly.
func normalizeNumerals(s string) string {
	result, _, err := transformer.TransformString(digitMapper, s)
	if err != nil {
		// runes.Map never fails on valid input; fall back to the original
		// text so the caller's parse step reports the real problem.
		return s
	}
	return result
}
