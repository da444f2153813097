package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// This file implements the client for the Safar724 bus-route search API.
// It abstracts the provider behind a `TicketService` interface, making the
// rest of the application independent of the concrete HTTP contract. The
// provider changed its query-parameter layout several times over the years,
// so the layout is configurable rather than hardcoded.

// ErrProviderUnavailable is returned when the route API cannot be reached or
// answers with a non-2xx status. The traveler sees a generic "try again
// later" message; the full detail goes to the log.
var ErrProviderUnavailable = errors.New("ticket provider unavailable")

// ErrMalformedResponse is returned when the route API answers with a body
// that is not the expected JSON shape.
var ErrMalformedResponse = errors.New("ticket provider response malformed")

// Supported query-parameter layouts. The provider went through three
// incompatible generations; slug-dash is the current one and the default.
const (
	// SchemaSlugDash sends city slugs with a hyphenated date:
	// ?Origin=tehran&Destination=babol&Date=1404-06-28
	SchemaSlugDash = "slug-dash"
	// SchemaSlugSlash sends city slugs with a slash-separated date:
	// ?Origin=tehran&Destination=babol&Date=1404/06/28
	SchemaSlugSlash = "slug-slash"
	// SchemaNumeric sends numeric city codes (the city table must be
	// configured with codes instead of slugs) and a slash-separated date:
	// ?origin=11&destination=291&date=1404/06/28
	SchemaNumeric = "numeric"
)

// SearchRequest carries one fully resolved ticket query.
type SearchRequest struct {
	OriginCode      string
	DestinationCode string
	Date            string
}

// TicketOffer is one entry from the provider's result list.
type TicketOffer struct {
	Company        string
	DepartureTime  string
	Price          int64
	OriginTerminal string
	BusType        string
}

// TicketService defines a generic interface for ticket searches. Using an
// interface decouples the dialogue and extraction paths from the concrete
// provider client, which simplifies testing with fakes.
type TicketService interface {
	SearchTickets(ctx context.Context, req SearchRequest) ([]TicketOffer, error)
}

// Safar724Client is the TicketService implementation for service.safar724.com.
type Safar724Client struct {
	baseURL    string
	schema     string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSafar724Client creates a client against baseURL using the given
// parameter schema. An unrecognized schema falls back to slug-dash.
func NewSafar724Client(baseURL, schema string, httpClient *http.Client, logger *slog.Logger) *Safar724Client {
	switch schema {
	case SchemaSlugDash, SchemaSlugSlash, SchemaNumeric:
	default:
		logger.Warn("unknown provider schema, using slug-dash", "schema", schema)
		schema = SchemaSlugDash
	}
	return &Safar724Client{
		baseURL:    baseURL,
		schema:     schema,
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36",
		httpClient: httpClient,
		logger:     logger,
	}
}

// buildQuery encodes req according to the configured parameter schema.
// The date arrives hyphenated (YEAR-MM-DD) from the formatter; the legacy
// schemas rewrite the separator to the slash form the old endpoints expect.
func (c *Safar724Client) buildQuery(req SearchRequest) url.Values {
	q := url.Values{}
	switch c.schema {
	case SchemaSlugSlash:
		q.Set("Origin", req.OriginCode)
		q.Set("Destination", req.DestinationCode)
		q.Set("Date", strings.ReplaceAll(req.Date, "-", "/"))
	case SchemaNumeric:
		q.Set("origin", req.OriginCode)
		q.Set("destination", req.DestinationCode)
		q.Set("date", strings.ReplaceAll(req.Date, "-", "/"))
	default:
		q.Set("Origin", req.OriginCode)
		q.Set("Destination", req.DestinationCode)
		q.Set("Date", req.Date)
	}
	return q
}

// SearchTickets issues a single GET against the route endpoint and returns
// the decoded offers. An empty or absent items list is a normal outcome and
// yields an empty slice, not an error. No retry is attempted on failure.
func (c *Safar724Client) SearchTickets(ctx context.Context, req SearchRequest) ([]TicketOffer, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse route base URL: %w", err)
	}
	endpoint.RawQuery = c.buildQuery(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build route request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %s", ErrProviderUnavailable, resp.Status)
	}

	var response routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	offers := make([]TicketOffer, 0, len(response.Items))
	for _, item := range response.Items {
		offer, ok := item.toOffer()
		if !ok {
			// A single incomplete record must not sink the whole batch.
			c.logger.Warn("skipping incomplete offer in provider response",
				"origin", req.OriginCode, "destination", req.DestinationCode, "date", req.Date)
			continue
		}
		offers = append(offers, offer)
	}

	return offers, nil
}

// The following structs represent the structure of the route API JSON
// response. Fields the formatter depends on are decoded as pointers so that
// their absence can be detected instead of silently defaulting.
type routeResponse struct {
	Items []routeItem `json:"items"`
}

type routeItem struct {
	CompanyPersianName        *string `json:"companyPersianName"`
	DepartureTime             *string `json:"departureTime"`
	Price                     *int64  `json:"price"`
	OriginTerminalPersianName *string `json:"originTerminalPersianName"`
	BusType                   string  `json:"busType"`
}

// toOffer converts one raw record into a TicketOffer, reporting whether all
// required fields were present. BusType is optional on older fleet entries.
func (i routeItem) toOffer() (TicketOffer, bool) {
	if i.CompanyPersianName == nil || i.DepartureTime == nil || i.Price == nil || i.OriginTerminalPersianName == nil {
		return TicketOffer{}, false
	}
	return TicketOffer{
		Company:        *i.CompanyPersianName,
		DepartureTime:  *i.DepartureTime,
		Price:          *i.Price,
		OriginTerminal: *i.OriginTerminalPersianName,
		BusType:        i.BusType,
	}, true
}
