package main

import (
	"strings"
	"testing"
)

func makeOffers(n int) []TicketOffer {
	offers := make([]TicketOffer, n)
	for i := range offers {
		offers[i] = TicketOffer{
			Company:        "شرکت",
			DepartureTime:  "08:00",
			Price:          500000,
			OriginTerminal: "ترمینال",
		}
	}
	return offers
}

func TestFormatOffersCapsAtFive(t *testing.T) {
	out := formatOffers("تهران", "بابل", "1404-06-28", makeOffers(7))

	if got := strings.Count(out, "🚌"); got != 5 {
		t.Errorf("Expected exactly 5 offer blocks, got %d", got)
	}
}

func TestFormatOffersPriceGrouping(t *testing.T) {
	offers := []TicketOffer{{
		Company:        "ایران پیما",
		DepartureTime:  "08:00",
		Price:          1234500,
		OriginTerminal: "ترمینال جنوب",
	}}

	out := formatOffers("تهران", "بابل", "1404-06-28", offers)

	// Provider units are rials; display is tomans, thousands-grouped.
	if !strings.Contains(out, "123,450") {
		t.Errorf("Expected grouped price 123,450 in output, got:\n%s", out)
	}
}

func TestFormatOffersHeaderAndFields(t *testing.T) {
	offers := []TicketOffer{{
		Company:        "ایران پیما",
		DepartureTime:  "08:00",
		Price:          500000,
		OriginTerminal: "ترمینال جنوب",
		BusType:        "VIP",
	}}

	out := formatOffers("تهران", "بابل", "1404-06-28", offers)

	for _, want := range []string{"تهران", "بابل", "1404-06-28", "ایران پیما", "08:00", "50,000", "ترمینال جنوب", "VIP"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatOffersOmitsEmptyBusType(t *testing.T) {
	out := formatOffers("تهران", "بابل", "1404-06-28", makeOffers(1))

	if strings.Contains(out, "نوع وسیله") {
		t.Errorf("Expected no bus type line for offers without one, got:\n%s", out)
	}
}

func TestMsgUnknownCities(t *testing.T) {
	one := msgUnknownCities([]string{"قم"})
	if !strings.Contains(one, "«قم»") {
		t.Errorf("Expected the unresolved name to be quoted, got %q", one)
	}

	two := msgUnknownCities([]string{"قم", "کرج"})
	if !strings.Contains(two, "«قم»") || !strings.Contains(two, "«کرج»") {
		t.Errorf("Expected both unresolved names, got %q", two)
	}
}
