package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinematicvideographers/nora/internal/advisor"
	"github.com/cinematicvideographers/nora/internal/config"
	"github.com/cinematicvideographers/nora/internal/db"
	"github.com/cinematicvideographers/nora/internal/logging"
	"github.com/cinematicvideographers/nora/internal/migrations"
	"github.com/cinematicvideographers/nora/internal/pricing"
)

// advisoryService is the prose side of the product. Quote math never depends
// on it; every caller must tolerate ErrUnavailable.
type advisoryService interface {
	Chat(ctx context.Context, message string) (string, error)
	SummarizeQuote(ctx context.Context, quote pricing.Quote, eventDate string) (string, error)
}

type server struct {
	db      *sql.DB
	table   *pricing.PriceTable
	advisor advisoryService
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Sugar.Fatalw("failed to load config", "error", err)
	}
	logging.Initialize(cfg.LogLevel, cfg.LogFormat)
	defer logging.Sync()

	table, err := pricing.NewTable(cfg.Pricing)
	if err != nil {
		logging.Sugar.Fatalw("invalid price table", "error", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logging.Sugar.Fatalw("failed to open database", "error", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "migrations"); err != nil {
		logging.Sugar.Fatalw("failed to run database migrations", "error", err)
	}

	if cfg.OpenAIAPIKey == "" {
		logging.Sugar.Warn("OPENAI_API_KEY not set; chat and quote summaries are disabled")
	}
	adv := advisor.New(advisor.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}, table.PublicPolicy())

	srv := &server{db: database, table: table, advisor: adv}

	addr := ":" + cfg.Port
	logging.Sugar.Infow("listening", "addr", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		logging.Sugar.Fatalw("server stopped", "error", err)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", s.handleIndex)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/quote", s.handleQuote)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/quotes", s.handleQuotesList)

	return r
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "web/static/index.html")
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		logging.Sugar.Errorw("health check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "database_unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
