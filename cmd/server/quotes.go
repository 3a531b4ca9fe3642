package main

import (
	"net/http"
	"strings"

	"github.com/cinematicvideographers/nora/internal/logging"
)

type quoteLogItem struct {
	ID        int64   `json:"id"`
	CreatedAt string  `json:"createdAt"`
	Location  string  `json:"location"`
	EventDate string  `json:"eventDate"`
	Total     float64 `json:"total"`
}

type quoteLogResponse struct {
	OK     bool           `json:"ok"`
	Quotes []quoteLogItem `json:"quotes"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(query)
	if err != nil {
		logging.Sugar.Errorw("failed to list quotes", "error", err)
		writeError(w, http.StatusInternalServerError, "quote_log_failed")
		return
	}

	writeJSON(w, http.StatusOK, quoteLogResponse{OK: true, Quotes: quotes})
}

func (s *server) listQuotes(query string) ([]quoteLogItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, created_at, location, event_date, total
		FROM quotes
		WHERE (? = '' OR location LIKE ? OR event_date LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT 100
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]quoteLogItem, 0)
	for rows.Next() {
		var item quoteLogItem
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Location, &item.EventDate, &item.Total); err != nil {
			return nil, err
		}
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return quotes, nil
}
