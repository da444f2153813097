package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"
)

// This file provides shared helpers for the package tests: a silenced
// logger, fake implementations of the service interfaces, and a config
// constructor wired entirely with in-memory collaborators.

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupMockServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

// stubTicketService returns a canned result (or error) and records the last
// request it saw.
type stubTicketService struct {
	offers  []TicketOffer
	err     error
	lastReq SearchRequest
	calls   int
}

func (s *stubTicketService) SearchTickets(_ context.Context, req SearchRequest) ([]TicketOffer, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.offers, nil
}

// stubExtractor returns canned trip fields (or an error).
type stubExtractor struct {
	fields TripFields
	err    error
}

func (s *stubExtractor) ExtractTrip(_ context.Context, _ string) (TripFields, error) {
	if s.err != nil {
		return TripFields{}, s.err
	}
	return s.fields, nil
}

// newTestConfig builds an apiConfig with in-memory sessions and the given
// fakes, mirroring what config() wires in production.
func newTestConfig(tickets TicketService, extractor TripExtractor) *apiConfig {
	memStore := NewMemorySessionStore()
	return &apiConfig{
		cities:          NewCityResolver(defaultCityTable()),
		dates:           NewDateFormatter("1404"),
		tickets:         tickets,
		extractor:       extractor,
		sessions:        memStore,
		memSessions:     memStore,
		httpClient:      &http.Client{Timeout: time.Second},
		sessionTTL:      30 * time.Minute,
		janitorInterval: 10 * time.Minute,
		port:            "8080",
		logger:          newTestLogger(),
	}
}

func strPtr(s string) *string {
	return &s
}
