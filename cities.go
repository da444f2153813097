package main

import "fmt"

// This file provides the city resolution used to translate the Persian city
// names typed by travelers into the slugs the Safar724 route API understands.
// The table is fixed and loaded once at startup; several spellings of the same
// city deliberately share one slug, so lookups stay exact and case-sensitive
// with no fuzzy matching. Trimming the input is the caller's concern.

// UnknownCityError is returned when a city name is absent from the table.
// It carries the exact name the traveler entered so the reply can quote it.
type UnknownCityError struct {
	Name string
}

func (e *UnknownCityError) Error() string {
	return fmt.Sprintf("unknown city %q", e.Name)
}

// CityResolver maps traveler-entered city names to provider city codes.
type CityResolver struct {
	table map[string]string
}

// NewCityResolver builds a resolver over the given name-to-code table.
// The resolver takes ownership of the map; callers must not mutate it after.
func NewCityResolver(table map[string]string) *CityResolver {
	return &CityResolver{table: table}
}

// Resolve returns the provider code for name, or an UnknownCityError.
func (r *CityResolver) Resolve(name string) (string, error) {
	code, ok := r.table[name]
	if !ok {
		return "", &UnknownCityError{Name: name}
	}
	return code, nil
}

// defaultCityTable returns the city slugs supported by the deployment.
// The aliases (e.g. the three spellings around Aran o Bidgol) are intentional.
func defaultCityTable() map[string]string {
	return map[string]string{
		"تهران":       "tehran",
		"اصفهان":      "isfahan",
		"شیراز":       "shiraz",
		"مشهد":        "mashhad",
		"یزد":         "yazd",
		"رشت":         "rasht",
		"بابل":        "babol",
		"ساری":        "sari",
		"آمل":         "amol",
		"قائمشهر":     "qaemshahr",
		"همدان":       "hamadan",
		"بابلسر":      "babolsar",
		"کاشان":       "kashan",
		"آران":        "aranvabidgol",
		"آران و بیدگل": "aranvabidgol",
		"بیدگل":       "aranvabidgol",
	}
}
