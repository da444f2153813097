package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// This file implements the single-shot entry path: one free-form Persian
// sentence goes to a hosted language model with a fixed extraction prompt,
// and the model answers with a JSON object holding the origin, destination
// and date (any of which may be null). The model service is abstracted
// behind a `TripExtractor` interface so the chat handler can be tested
// against a fake.

// ErrModelUnavailable is returned before any network call when no API key is
// configured.
var ErrModelUnavailable = errors.New("language model not configured")

// ErrModelUnparseable is returned when the model reply holds no JSON object
// after fence stripping.
var ErrModelUnparseable = errors.New("language model reply not parseable")

// TripFields is the extraction result. Nil means the model could not find
// that field in the sentence.
type TripFields struct {
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	Date        *string `json:"date"`
}

// TripExtractor pulls structured trip fields out of one free-text sentence.
type TripExtractor interface {
	ExtractTrip(ctx context.Context, sentence string) (TripFields, error)
}

// extractionPrompt is the fixed instruction template. The two worked examples
// anchor the model on the exact output shape; %s receives the user sentence.
const extractionPrompt = `از جمله زیر مبدا، مقصد و تاریخ سفر را استخراج کن و فقط یک شیء JSON با کلیدهای origin و destination و date برگردان. اگر فیلدی در جمله نبود مقدار آن را null بگذار.

مثال ۱:
جمله: «میخوام ۲۸ شهریور از تهران برم بابل»
خروجی: {"origin":"تهران","destination":"بابل","date":"۲۸ شهریور"}

مثال ۲:
جمله: «بلیط مشهد به یزد برای ۳ مهر»
خروجی: {"origin":"مشهد","destination":"یزد","date":"۳ مهر"}

جمله: «%s»
خروجی:`

// OpenAIExtractor is a TripExtractor backed by an OpenAI-compatible
// chat-completions endpoint.
type OpenAIExtractor struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIExtractor creates an extractor against baseURL (e.g.
// "https://api.openai.com/v1"). An empty apiKey is allowed; extraction then
// fails fast with ErrModelUnavailable.
func NewOpenAIExtractor(apiKey, baseURL, model string, httpClient *http.Client, logger *slog.Logger) *OpenAIExtractor {
	return &OpenAIExtractor{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Structs for the subset of the chat-completions contract we touch.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ExtractTrip sends the sentence through the extraction prompt and parses the
// model's JSON reply. The raw reply is logged on every parse failure so a bad
// prompt/model pairing can be diagnosed without reproducing the request.
func (e *OpenAIExtractor) ExtractTrip(ctx context.Context, sentence string) (TripFields, error) {
	if strings.TrimSpace(e.apiKey) == "" {
		return TripFields{}, ErrModelUnavailable
	}

	payload := chatCompletionRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, sentence)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return TripFields{}, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return TripFields{}, fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return TripFields{}, fmt.Errorf("execute completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TripFields{}, fmt.Errorf("completion request returned status %s", resp.Status)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return TripFields{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return TripFields{}, fmt.Errorf("%w: no choices in response", ErrModelUnparseable)
	}

	raw := completion.Choices[0].Message.Content
	var fields TripFields
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &fields); err != nil {
		e.logger.Warn("model reply did not parse as JSON", "reply", raw, "error", err)
		return TripFields{}, fmt.Errorf("%w: %v", ErrModelUnparseable, err)
	}

	return fields, nil
}

// stripCodeFences removes a wrapping fenced code block (``` or ```json) from
// the model reply, if present. Replies without fences pass through unchanged.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 && !strings.HasPrefix(s, "{") {
		// Drop the language tag on the opening fence ("json").
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
