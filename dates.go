package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// This file turns the free-text travel dates travelers type ("۲۸ شهریور")
// into the zero-padded YEAR-MM-DD strings the route API expects. Localized
// digits are tolerated by running the numeral normalizer first. The year is
// not part of the input; it comes from configuration because the provider
// searches within the current Jalali year.

// ErrInvalidDateFormat is returned when the input does not parse as a
// "day month-name" pair. The user-facing reply asks for that exact shape.
var ErrInvalidDateFormat = errors.New("date must be \"day month-name\"")

// UnknownMonthError is returned when the month token is not a Jalali month.
type UnknownMonthError struct {
	Name string
}

func (e *UnknownMonthError) Error() string {
	return fmt.Sprintf("unknown month %q", e.Name)
}

// jalaliMonths maps Jalali month names to their two-digit codes.
var jalaliMonths = map[string]string{
	"فروردین":  "01",
	"اردیبهشت": "02",
	"خرداد":    "03",
	"تیر":      "04",
	"مرداد":    "05",
	"شهریور":   "06",
	"مهر":      "07",
	"آبان":     "08",
	"آذر":      "09",
	"دی":       "10",
	"بهمن":     "11",
	"اسفند":    "12",
}

// DateFormatter assembles provider-ready travel dates from free text.
type DateFormatter struct {
	months map[string]string
	year   string
}

// NewDateFormatter builds a formatter that stamps every date with year.
func NewDateFormatter(year string) *DateFormatter {
	return &DateFormatter{
		months: jalaliMonths,
		year:   year,
	}
}

// Format parses raw into a YEAR-MM-DD string. Input must hold exactly two
// whitespace-separated tokens: a day (1-31, localized digits allowed) and a
// Jalali month name. The day is zero-padded to two digits.
func (f *DateFormatter) Format(raw string) (string, error) {
	normalized := normalizeNumerals(raw)

	tokens := strings.Fields(normalized)
	if len(tokens) != 2 {
		return "", fmt.Errorf("%w: got %d tokens", ErrInvalidDateFormat, len(tokens))
	}

	day, err := strconv.Atoi(tokens[0])
	if err != nil {
		return "", fmt.Errorf("%w: day %q is not a number", ErrInvalidDateFormat, tokens[0])
	}
	if day < 1 || day > 31 {
		return "", fmt.Errorf("%w: day %d out of range", ErrInvalidDateFormat, day)
	}

	month, ok := f.months[tokens[1]]
	if !ok {
		return "", &UnknownMonthError{Name: tokens[1]}
	}

	return fmt.Sprintf("%s-%s-%02d", f.year, month, day), nil
}
