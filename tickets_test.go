package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

const sampleOffersJSON = `{
	"items": [
		{
			"companyPersianName": "ایران پیما",
			"departureTime": "08:00",
			"price": 1234500,
			"originTerminalPersianName": "ترمینال جنوب",
			"busType": "VIP"
		},
		{
			"companyPersianName": "سیر و سفر",
			"departureTime": "09:30",
			"price": 980000,
			"originTerminalPersianName": "ترمینال بیهقی"
		}
	]
}`

func TestSearchTickets(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sampleOffersJSON))
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())

	offers, err := client.SearchTickets(context.Background(), SearchRequest{
		OriginCode:      "tehran",
		DestinationCode: "babol",
		Date:            "1404-06-28",
	})
	if err != nil {
		t.Fatalf("SearchTickets() returned an unexpected error: %v", err)
	}

	if len(offers) != 2 {
		t.Fatalf("Expected 2 offers, got %d", len(offers))
	}
	if offers[0].Company != "ایران پیما" {
		t.Errorf("Expected company %q, got %q", "ایران پیما", offers[0].Company)
	}
	if offers[0].Price != 1234500 {
		t.Errorf("Expected price 1234500, got %d", offers[0].Price)
	}
	if offers[0].BusType != "VIP" {
		t.Errorf("Expected bus type VIP, got %q", offers[0].BusType)
	}
	if offers[1].BusType != "" {
		t.Errorf("Expected empty bus type for second offer, got %q", offers[1].BusType)
	}
}

func TestSearchTicketsEmptyItemsIsNotAnError(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items": []}`))
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())

	offers, err := client.SearchTickets(context.Background(), SearchRequest{})
	if err != nil {
		t.Fatalf("SearchTickets() returned an unexpected error: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("Expected no offers, got %d", len(offers))
	}
}

func TestSearchTicketsMissingItemsFieldIsNotAnError(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())

	offers, err := client.SearchTickets(context.Background(), SearchRequest{})
	if err != nil {
		t.Fatalf("SearchTickets() returned an unexpected error: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("Expected no offers, got %d", len(offers))
	}
}

func TestSearchTicketsSkipsIncompleteOffers(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"items": [
				{"departureTime": "08:00", "price": 500000},
				{
					"companyPersianName": "ایران پیما",
					"departureTime": "10:00",
					"price": 600000,
					"originTerminalPersianName": "ترمینال جنوب"
				}
			]
		}`))
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())

	offers, err := client.SearchTickets(context.Background(), SearchRequest{})
	if err != nil {
		t.Fatalf("SearchTickets() returned an unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("Expected the incomplete offer to be skipped, got %d offers", len(offers))
	}
	if offers[0].DepartureTime != "10:00" {
		t.Errorf("Expected the complete offer to survive, got departure %q", offers[0].DepartureTime)
	}
}

func TestSearchTicketsProviderError(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())

	_, err := client.SearchTickets(context.Background(), SearchRequest{})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("Expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSearchTicketsMalformedBody(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())

	_, err := client.SearchTickets(context.Background(), SearchRequest{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestBuildQuerySchemas(t *testing.T) {
	req := SearchRequest{OriginCode: "tehran", DestinationCode: "babol", Date: "1404-06-28"}

	tests := []struct {
		schema   string
		expected map[string]string
	}{
		{SchemaSlugDash, map[string]string{"Origin": "tehran", "Destination": "babol", "Date": "1404-06-28"}},
		{SchemaSlugSlash, map[string]string{"Origin": "tehran", "Destination": "babol", "Date": "1404/06/28"}},
		{SchemaNumeric, map[string]string{"origin": "tehran", "destination": "babol", "date": "1404/06/28"}},
	}

	for _, tc := range tests {
		t.Run(tc.schema, func(t *testing.T) {
			client := NewSafar724Client("https://example.com", tc.schema, nil, newTestLogger())
			q := client.buildQuery(req)
			if len(q) != len(tc.expected) {
				t.Fatalf("Expected %d parameters, got %d (%v)", len(tc.expected), len(q), q)
			}
			for key, want := range tc.expected {
				if got := q.Get(key); got != want {
					t.Errorf("Parameter %q = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestSearchTicketsSendsConfiguredSchema(t *testing.T) {
	var gotQuery map[string][]string
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items": []}`))
	})
	defer server.Close()

	client := NewSafar724Client(server.URL, SchemaSlugDash, server.Client(), newTestLogger())
	_, err := client.SearchTickets(context.Background(), SearchRequest{
		OriginCode:      "tehran",
		DestinationCode: "babol",
		Date:            "1404-06-28",
	})
	if err != nil {
		t.Fatalf("SearchTickets() returned an unexpected error: %v", err)
	}

	if got := gotQuery["Date"]; len(got) != 1 || got[0] != "1404-06-28" {
		t.Errorf("Expected Date=1404-06-28 on the wire, got %v", gotQuery)
	}
}
