package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

// completionReply wraps content in the minimal chat-completions envelope.
func completionReply(content string) []byte {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(reply)
	return data
}

func TestExtractTrip(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(completionReply(`{"origin":"تهران","destination":"بابل","date":"۲۸ شهریور"}`))
	})
	defer server.Close()

	extractor := NewOpenAIExtractor("test-key", server.URL, "gpt-4o-mini", server.Client(), newTestLogger())

	fields, err := extractor.ExtractTrip(context.Background(), "میخوام ۲۸ شهریور از تهران برم بابل")
	if err != nil {
		t.Fatalf("ExtractTrip() returned an unexpected error: %v", err)
	}
	if fields.Origin == nil || *fields.Origin != "تهران" {
		t.Errorf("Expected origin تهران, got %v", fields.Origin)
	}
	if fields.Destination == nil || *fields.Destination != "بابل" {
		t.Errorf("Expected destination بابل, got %v", fields.Destination)
	}
	if fields.Date == nil || *fields.Date != "۲۸ شهریور" {
		t.Errorf("Expected date ۲۸ شهریور, got %v", fields.Date)
	}
}

func TestExtractTripFencedReply(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(completionReply("```json\n{\"origin\":\"تهران\",\"destination\":\"بابل\",\"date\":\"۲۸ شهریور\"}\n```"))
	})
	defer server.Close()

	extractor := NewOpenAIExtractor("test-key", server.URL, "gpt-4o-mini", server.Client(), newTestLogger())

	fields, err := extractor.ExtractTrip(context.Background(), "میخوام ۲۸ شهریور از تهران برم بابل")
	if err != nil {
		t.Fatalf("ExtractTrip() returned an unexpected error: %v", err)
	}
	if fields.Origin == nil || fields.Destination == nil || fields.Date == nil {
		t.Errorf("Expected all fields from fenced reply, got %+v", fields)
	}
}

func TestExtractTripNullFields(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(completionReply(`{"origin":"تهران","destination":null,"date":null}`))
	})
	defer server.Close()

	extractor := NewOpenAIExtractor("test-key", server.URL, "gpt-4o-mini", server.Client(), newTestLogger())

	fields, err := extractor.ExtractTrip(context.Background(), "از تهران")
	if err != nil {
		t.Fatalf("ExtractTrip() returned an unexpected error: %v", err)
	}
	if fields.Origin == nil {
		t.Error("Expected origin to be present")
	}
	if fields.Destination != nil || fields.Date != nil {
		t.Errorf("Expected destination and date to be nil, got %+v", fields)
	}
}

func TestExtractTripNoKeyShortCircuits(t *testing.T) {
	// No server: the call must fail before any network traffic.
	extractor := NewOpenAIExtractor("", "http://127.0.0.1:0", "gpt-4o-mini", http.DefaultClient, newTestLogger())

	_, err := extractor.ExtractTrip(context.Background(), "هر چیزی")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestExtractTripUnparseableReply(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(completionReply("متاسفم، نمی‌توانم کمکی کنم."))
	})
	defer server.Close()

	extractor := NewOpenAIExtractor("test-key", server.URL, "gpt-4o-mini", server.Client(), newTestLogger())

	_, err := extractor.ExtractTrip(context.Background(), "هر چیزی")
	if !errors.Is(err, ErrModelUnparseable) {
		t.Errorf("Expected ErrModelUnparseable, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"plain fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fences", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"inline fences", "```{\"a\":1}```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFences(tc.input); got != tc.expected {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
