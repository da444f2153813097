package main

import (
	"context"
	"errors"
	"strings"
	"time"
)

// This file is the heart of the conversation: it routes inbound chat text to
// the right handler (commands, dialogue steps, or free-text extraction) and
// drives the three-step collector that gathers origin, destination and date
// before handing off to the ticket pipeline. Every failure is converted to
// exactly one Persian reply here; nothing propagates past this boundary.

// Chat commands understood by the front-end.
const (
	cmdStart  = "/start"
	cmdSearch = "/search"
	cmdCancel = "/cancel"
)

// handleChatMessage produces the single reply for one inbound message.
func (cfg *apiConfig) handleChatMessage(ctx context.Context, sessionID, text string) string {
	text = strings.TrimSpace(text)

	switch text {
	case cmdStart:
		return msgGreeting()
	case cmdSearch:
		return cfg.beginDialogue(ctx, sessionID)
	case cmdCancel:
		return cfg.cancelDialogue(ctx, sessionID)
	}

	state, active, err := cfg.sessions.Get(ctx, sessionID)
	if err != nil {
		cfg.logger.Error("session lookup failed", "session_id", sessionID, "error", err)
		return msgProviderError
	}
	if active {
		return cfg.handleDialogueStep(ctx, sessionID, state, text)
	}

	return cfg.handleFreeText(ctx, text)
}

// beginDialogue opens a fresh dialogue, discarding any half-finished one.
func (cfg *apiConfig) beginDialogue(ctx context.Context, sessionID string) string {
	state := ConversationState{
		Stage:     StageAwaitingOrigin,
		UpdatedAt: time.Now().UTC(),
	}
	if err := cfg.sessions.Put(ctx, sessionID, state); err != nil {
		cfg.logger.Error("could not store dialogue state", "session_id", sessionID, "error", err)
		return msgProviderError
	}
	return msgAskOrigin
}

// cancelDialogue clears the session from any stage.
func (cfg *apiConfig) cancelDialogue(ctx context.Context, sessionID string) string {
	if err := cfg.sessions.Delete(ctx, sessionID); err != nil {
		cfg.logger.Error("could not clear dialogue state", "session_id", sessionID, "error", err)
	}
	return msgCancelled
}

// handleDialogueStep stores the received text under the field matching the
// current stage and either prompts for the next field or, at the date step,
// runs the search and ends the dialogue. A failed search is terminal too:
// the traveler re-enters with /search rather than being re-prompted.
func (cfg *apiConfig) handleDialogueStep(ctx context.Context, sessionID string, state ConversationState, text string) string {
	switch state.Stage {
	case StageAwaitingOrigin:
		if !canAdvance(state.Stage, StageAwaitingDestination) {
			break
		}
		state.Origin = text
		state.Stage = StageAwaitingDestination
		state.UpdatedAt = time.Now().UTC()
		if err := cfg.sessions.Put(ctx, sessionID, state); err != nil {
			cfg.logger.Error("could not store dialogue state", "session_id", sessionID, "error", err)
			return msgProviderError
		}
		return msgAskDestination

	case StageAwaitingDestination:
		if !canAdvance(state.Stage, StageAwaitingDate) {
			break
		}
		state.Destination = text
		state.Stage = StageAwaitingDate
		state.UpdatedAt = time.Now().UTC()
		if err := cfg.sessions.Put(ctx, sessionID, state); err != nil {
			cfg.logger.Error("could not store dialogue state", "session_id", sessionID, "error", err)
			return msgProviderError
		}
		return msgAskDate

	case StageAwaitingDate:
		state.TravelDate = text
		if err := cfg.sessions.Delete(ctx, sessionID); err != nil {
			cfg.logger.Warn("could not clear dialogue state", "session_id", sessionID, "error", err)
		}
		result := cfg.runTicketSearch(ctx, state.Origin, state.Destination, state.TravelDate)
		return msgSearching + "\n\n" + result
	}

	// Unknown or corrupted stage: drop the record and start over.
	cfg.logger.Warn("dropping dialogue in unexpected stage", "session_id", sessionID, "stage", state.Stage)
	if err := cfg.sessions.Delete(ctx, sessionID); err != nil {
		cfg.logger.Error("could not clear dialogue state", "session_id", sessionID, "error", err)
	}
	return msgCancelled
}

// handleFreeText sends one sentence through the natural-language extractor
// and, when all three fields come back, through the same ticket pipeline as
// the dialogue path.
func (cfg *apiConfig) handleFreeText(ctx context.Context, text string) string {
	trip, err := cfg.extractor.ExtractTrip(ctx, text)
	switch {
	case errors.Is(err, ErrModelUnavailable):
		extractionsTotal.WithLabelValues("unavailable").Inc()
		return msgModelDown
	case errors.Is(err, ErrModelUnparseable):
		extractionsTotal.WithLabelValues("unparseable").Inc()
		return msgRephrase
	case err != nil:
		cfg.logger.Error("extraction failed", "input", text, "error", err)
		extractionsTotal.WithLabelValues("error").Inc()
		return msgRephrase
	}

	if trip.Origin == nil || trip.Destination == nil || trip.Date == nil {
		cfg.logger.Info("extraction incomplete", "input", text,
			"has_origin", trip.Origin != nil, "has_destination", trip.Destination != nil, "has_date", trip.Date != nil)
		extractionsTotal.WithLabelValues("incomplete").Inc()
		return msgRephrase
	}
	extractionsTotal.WithLabelValues("ok").Inc()

	return cfg.runTicketSearch(ctx, *trip.Origin, *trip.Destination, *trip.Date)
}

// runTicketSearch is the convergence point of both entry paths: it resolves
// the two cities, formats the date, queries the provider once, and renders
// either the offer summary or the matching failure message. Identical inputs
// and provider responses produce byte-identical replies regardless of which
// path supplied the fields.
func (cfg *apiConfig) runTicketSearch(ctx context.Context, originName, destinationName, rawDate string) string {
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
		cfg.logger.Info("unresolved city names", "names", unknown)
		ticketSearchesTotal.WithLabelValues("unknown_city").Inc()
		return msgUnknownCities(unknown)
	}

	date, err := cfg.dates.Format(rawDate)
	if err != nil {
		cfg.logger.Info("unparseable travel date", "input", rawDate, "error", err)
		ticketSearchesTotal.WithLabelValues("bad_date").Inc()
		return msgBadDate
	}

	offers, err := cfg.tickets.SearchTickets(ctx, SearchRequest{
		OriginCode:      originCode,
		DestinationCode: destinationCode,
		Date:            date,
	})
	switch {
	case errors.Is(err, ErrMalformedResponse):
		cfg.logger.Error("malformed provider response", "origin", originCode, "destination", destinationCode, "date", date, "error", err)
		ticketSearchesTotal.WithLabelValues("bad_response").Inc()
		return msgBadResponse
	case err != nil:
		cfg.logger.Error("provider request failed", "origin", originCode, "destination", destinationCode, "date", date, "error", err)
		ticketSearchesTotal.WithLabelValues("provider_error").Inc()
		return msgProviderError
	}

	if len(offers) == 0 {
		ticketSearchesTotal.WithLabelValues("no_tickets").Inc()
		return msgNoTickets(originName, destinationName, date)
	}

	ticketSearchesTotal.WithLabelValues("ok").Inc()
	return formatOffers(originName, destinationName, date, offers)
}
