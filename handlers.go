package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// This file contains the HTTP handlers for the application. The chat handler
// is the conversational front-end: any bridge (Telegram, WhatsApp, a web
// widget) posts inbound text with a session id and relays the reply. The
// search handler exposes the same pipeline for structured callers.

type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type TicketOfferJSON struct {
	Company        string `json:"company"`
	DepartureTime  string `json:"departure_time"`
	Price          int64  `json:"price_toman"`
	OriginTerminal string `json:"origin_terminal"`
	BusType        string `json:"bus_type,omitempty"`
}

type SearchResponse struct {
	Origin      string            `json:"origin"`
	Destination string            `json:"destination"`
	Date        string            `json:"date"`
	Offers      []TicketOfferJSON `json:"offers"`
	Summary     string            `json:"summary"`
}

type ConfigResponse struct {
	DevMode        bool   `json:"dev_mode"`
	ExtractorReady bool   `json:"extractor_ready"`
	SessionTTL     string `json:"session_ttl"`
}

// @Summary      Exchange one chat message
// @Description  Receives one inbound message for a conversation session and returns the bot's reply.
// @Description  Omitting session_id starts a new session; the minted id is echoed back.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request body ChatRequest true "Inbound message"
// @Success      200  {object}  ChatResponse
// @Failure      400  {object}  map[string]string "Bad Request - empty message or invalid body"
// @Router       /api/chat [post]
func (cfg *apiConfig) handlerChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		cfg.respondWithError(w, http.StatusBadRequest, "Message must not be empty", nil)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	cfg.logger.Debug("chat message received", "session_id", sessionID)

	reply := cfg.handleChatMessage(r.Context(), sessionID, req.Message)

	cfg.respondWithJSON(w, http.StatusOK, ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
	})
}

// @Summary      Search bus tickets
// @Description  Resolves the origin and destination city names, formats the travel date and
// @Description  queries the ticket provider once, returning structured offers plus the same
// @Description  summary text the chat paths produce.
// @Tags         search
// @Produce      json
// @Param        origin      query  string  true  "Origin city name (e.g. 'تهران')"
// @Param        destination query  string  true  "Destination city name (e.g. 'بابل')"
// @Param        date        query  string  true  "Travel date as 'day month-name' (e.g. '۲۸ شهریور')"
// @Success      200  {object}  SearchResponse
// @Failure      400  {object}  map[string]string "Bad Request - unknown city or bad date"
// @Failure      502  {object}  map[string]string "Bad Gateway - provider unreachable or malformed"
// @Router       /api/search [get]
func (cfg *apiConfig) handlerSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	originName := strings.TrimSpace(r.URL.Query().Get("origin"))
	destinationName := strings.TrimSpace(r.URL.Query().Get("destination"))
	rawDate := strings.TrimSpace(r.URL.Query().Get("date"))
	if originName == "" || destinationName == "" || rawDate == "" {
		cfg.respondWithError(w, http.StatusBadRequest, "origin, destination and date are required", nil)
		return
	}

	var unknown []string
	originCode, err := cfg.cities.Resolve(originName)
	if err != nil {
		unknown = append(unknown, originName)
	}
	destinationCode, err := cfg.cities.Resolve(destinationName)
	if err != nil {
		unknown = append(unknown, destinationName)
	}
	if len(unknown) > 0 {
		ticketSearchesTotal.WithLabelValues("unknown_city").Inc()
		cfg.respondWithError(w, http.StatusBadRequest, msgUnknownCities(unknown), nil)
		return
	}

	date, err := cfg.dates.Format(rawDate)
	if err != nil {
		ticketSearchesTotal.WithLabelValues("bad_date").Inc()
		cfg.respondWithError(w, http.StatusBadRequest, msgBadDate, err)
		return
	}

	offers, err := cfg.tickets.SearchTickets(ctx, SearchRequest{
		OriginCode:      originCode,
		DestinationCode: destinationCode,
		Date:            date,
	})
	switch {
	case errors.Is(err, ErrMalformedResponse):
		ticketSearchesTotal.WithLabelValues("bad_response").Inc()
		cfg.respondWithError(w, http.StatusBadGateway, msgBadResponse, err)
		return
	case err != nil:
		ticketSearchesTotal.WithLabelValues("provider_error").Inc()
		cfg.respondWithError(w, http.StatusBadGateway, msgProviderError, err)
		return
	}

	var summary string
	if len(offers) == 0 {
		ticketSearchesTotal.WithLabelValues("no_tickets").Inc()
		summary = msgNoTickets(originName, destinationName, date)
	} else {
		ticketSearchesTotal.WithLabelValues("ok").Inc()
		summary = formatOffers(originName, destinationName, date, offers)
	}

	offersJSON := make([]TicketOfferJSON, len(offers))
	for i, offer := range offers {
		offersJSON[i] = TicketOfferJSON{
			Company:        offer.Company,
			DepartureTime:  offer.DepartureTime,
			Price:          offer.Price / 10,
			OriginTerminal: offer.OriginTerminal,
			BusType:        offer.BusType,
		}
	}

	cfg.respondWithJSON(w, http.StatusOK, SearchResponse{
		Origin:      originName,
		Destination: destinationName,
		Date:        date,
		Offers:      offersJSON,
		Summary:     summary,
	})
}

// handlerConfig provides front-end bridges with necessary configuration,
// such as whether free-text extraction is available.

// @Summary      Get application configuration
// @Description  Reports whether the service runs in development mode, whether the
// @Description  natural-language extractor is configured, and the dialogue session TTL.
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  ConfigResponse
// @Router       /api/config [get]
func (cfg *apiConfig) handlerConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, ConfigResponse{
		DevMode:        cfg.devMode,
		ExtractorReady: cfg.extractorReady,
		SessionTTL:     cfg.sessionTTL.String(),
	})
}
