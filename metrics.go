package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal tracks the total number of HTTP requests, partitioned by
// the request's URL path, HTTP method, and the resulting status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "safarbot_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// ticketSearchesTotal counts ticket pipeline runs by outcome
// (ok, no_tickets, unknown_city, bad_date, provider_error, bad_response).
var ticketSearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "safarbot_ticket_searches_total",
	Help: "Total number of ticket searches by outcome.",
}, []string{"outcome"})

// extractionsTotal counts natural-language extraction attempts by outcome
// (ok, incomplete, unparseable, unavailable, error).
var extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "safarbot_extractions_total",
	Help: "Total number of natural-language extractions by outcome.",
}, []string{"outcome"})
