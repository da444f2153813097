package main

import "testing"

func TestNormalizeNumerals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"persian digits", "۲۸ شهریور", "28 شهریور"},
		{"arabic-indic digits", "٢٨ شهریور", "28 شهریور"},
		{"ascii passthrough", "28 شهریور", "28 شهریور"},
		{"mixed digits", "ساعت ۱۲:3٠", "ساعت 12:30"},
		{"no digits", "تهران", "تهران"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeNumerals(tc.input)
			if got != tc.expected {
				t.Errorf("normalizeNumerals(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeNumeralsIdempotent(t *testing.T) {
	input := "۲۸ شهریور ۱۴۰۴"
	once := normalizeNumerals(input)
	twice := normalizeNumerals(once)
	if once != twice {
		t.Errorf("normalization is not idempotent: %q != %q", once, twice)
	}
}
