package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cinematicvideographers/nora/internal/advisor"
	"github.com/cinematicvideographers/nora/internal/logging"
	"github.com/cinematicvideographers/nora/internal/pricing"
)

type quoteAPIRequest struct {
	pricing.WireRequest
	Summarize bool `json:"summarize"`
}

type quoteAPIResponse struct {
	OK      bool         `json:"ok"`
	Quote   quotePayload `json:"quote"`
	Summary string       `json:"summary,omitempty"`
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var apiReq quoteAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_json")
		return
	}

	req, err := pricing.NormalizeRequest(apiReq.WireRequest, s.table)
	if err != nil {
		var invalid *pricing.InvalidInputError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Reason)
			return
		}
		logging.Sugar.Errorw("failed to normalize quote request", "error", err)
		writeError(w, http.StatusInternalServerError, "quote_failed")
		return
	}

	quote, err := pricing.Calculate(req, s.table)
	if err != nil {
		// Normalization guarantees priced keys, so this indicates a table
		// or engine defect rather than bad client input.
		logging.Sugar.Errorw("quote calculation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "quote_failed")
		return
	}

	resp := quoteAPIResponse{OK: true, Quote: quoteToPayload(quote)}

	if err := s.saveQuote(r.Context(), req, resp.Quote); err != nil {
		// The quote log is an audit aid; losing a row must not fail the quote.
		logging.Sugar.Errorw("failed to save quote", "error", err)
	}

	if apiReq.Summarize {
		summary, err := s.advisor.SummarizeQuote(r.Context(), quote, req.EventDate)
		switch {
		case err == nil:
			resp.Summary = summary
		case errors.Is(err, advisor.ErrUnavailable):
			logging.Sugar.Debugw("quote summary skipped, advisor not configured")
		default:
			logging.Sugar.Errorw("quote summary failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) saveQuote(ctx context.Context, req pricing.QuoteRequest, quote quotePayload) error {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return err
	}
	quoteJSON, err := json.Marshal(quote)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (location, event_date, request_json, quote_json, total)
		VALUES (?, ?, ?, ?, ?)
	`, req.Location, req.EventDate, string(requestJSON), string(quoteJSON), quote.Total)
	return err
}
