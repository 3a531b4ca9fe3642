package main

import (
	"encoding/json"
	"net/http"

	"github.com/cinematicvideographers/nora/internal/logging"
	"github.com/cinematicvideographers/nora/internal/pricing"
)

// Wire payloads. Amounts go out as plain JSON numbers; decimals stay
// internal to the pricing package.

type lineItemPayload struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

type quotePayload struct {
	LineItems   []lineItemPayload `json:"lineItems"`
	Total       float64           `json:"total"`
	BilledHours float64           `json:"billedHours"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func quoteToPayload(quote pricing.Quote) quotePayload {
	items := make([]lineItemPayload, 0, len(quote.LineItems))
	for _, it := range quote.LineItems {
		items = append(items, lineItemPayload{
			Label:  it.Label,
			Amount: it.Amount.InexactFloat64(),
			Note:   it.Note,
		})
	}
	return quotePayload{
		LineItems:   items,
		Total:       quote.Total.InexactFloat64(),
		BilledHours: quote.BilledHours,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Sugar.Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, errorResponse{OK: false, Error: reason})
}
