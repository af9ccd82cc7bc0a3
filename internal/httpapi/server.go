package httpapi

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/oofcrazy123/futbin-price-monitor/internal/alert"
	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
	"github.com/oofcrazy123/futbin-price-monitor/internal/httpapi/middleware"
	"github.com/oofcrazy123/futbin-price-monitor/internal/repo"
	"github.com/oofcrazy123/futbin-price-monitor/internal/scheduler"
	"github.com/oofcrazy123/futbin-price-monitor/internal/scraper"
)

// CycleSource reports the most recent monitoring cycle.
type CycleSource interface {
	LastCycle() scheduler.CycleInfo
}

type Server struct {
	Logger  *zap.Logger
	Cards   repo.CardStore
	History repo.HistoryStore
	Engine  *alert.Engine
	Checker scraper.Checker
	Cycles  CycleSource

	Keys        middleware.Keys
	PublicRPM   int
	PublicBurst int

	startedAt time.Time
}

func NewServer(
	l *zap.Logger,
	cards repo.CardStore,
	history repo.HistoryStore,
	engine *alert.Engine,
	checker scraper.Checker,
	cycles CycleSource,
) *Server {
	return &Server{
		Logger:    l,
		Cards:     cards,
		History:   history,
		Engine:    engine,
		Checker:   checker,
		Cycles:    cycles,
		startedAt: time.Now().UTC(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(s.PublicRPM, s.PublicBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireViewer(s.Keys))
		r.Get("/", s.handleDashboard)
		r.Get("/status", s.handleStatus)
		r.Get("/api/cards", s.handleListCards)
		r.Get("/api/history", s.handleHistory)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(s.Keys))
		r.Post("/api/cards", s.handleAddCard)
		r.Get("/api/backup", s.handleBackup)
		r.Post("/api/restore", s.handleRestore)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.Cards.Count(r.Context())
	if err != nil {
		http.Error(w, "count error", http.StatusInternalServerError)
		return
	}
	body := map[string]any{
		"running":    true,
		"uptime":     time.Since(s.startedAt).Round(time.Second).String(),
		"card_count": count,
	}
	if s.Cycles != nil {
		body["last_cycle"] = s.Cycles.LastCycle()
	}
	writeJSON(w, body)
}

type addCardPayload struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var p addCardPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.URL == "" {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	id := scraper.CardIDFromURL(p.URL)
	if id == "" {
		http.Error(w, "url is not a player page", http.StatusBadRequest)
		return
	}

	c := &domain.Card{
		ID:        domain.CardID(id),
		Name:      p.Name,
		Rating:    p.Rating,
		SourceURL: p.URL,
		CreatedAt: time.Now().UTC(),
	}
	if c.Name == "" {
		c.Name = id
	}
	if err := s.Cards.Add(r.Context(), c); err != nil {
		http.Error(w, "could not add", http.StatusInternalServerError)
		return
	}

	// Check once synchronously so the caller sees the current status.
	var obs *domain.Observation
	if s.Checker != nil {
		out, err := s.Checker.Check(r.Context(), c)
		if err != nil {
			s.Logger.Warn("add_card_check_error", zap.String("url", p.URL), zap.Error(err))
		} else {
			obs = &domain.Observation{CardID: c.ID, Status: out.Status, ObservedAt: out.CheckedAt}
			_ = s.History.AppendStatus(r.Context(), obs)
		}
	}

	s.Logger.Info("card_added", zap.String("card_id", id), zap.String("url", p.URL))
	writeJSON(w, map[string]any{"card": c, "observation": obs})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Cards.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cards)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.History.Recent(r.Context(), 100)
	if err != nil {
		http.Error(w, "history error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

// backupPayload is the portable snapshot: the monitored catalog plus the
// per-card alert state, enough to move an install without losing cooldowns.
type backupPayload struct {
	ExportedAt time.Time                          `json:"exported_at"`
	Cards      []*domain.Card                     `json:"cards"`
	AlertState map[domain.CardID]repo.AlertRecord `json:"alert_state"`
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Cards.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, backupPayload{
		ExportedAt: time.Now().UTC(),
		Cards:      cards,
		AlertState: s.Engine.Snapshot(),
	})
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var p backupPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	restored := 0
	for _, c := range p.Cards {
		if c == nil || c.SourceURL == "" {
			continue
		}
		if err := s.Cards.Add(r.Context(), c); err != nil {
			s.Logger.Warn("restore_card_error", zap.String("url", c.SourceURL), zap.Error(err))
			continue
		}
		restored++
	}
	if p.AlertState != nil {
		s.Engine.Restore(p.AlertState)
	}

	s.Logger.Info("backup_restored",
		zap.Int("cards", restored),
		zap.Int("alert_records", len(p.AlertState)),
	)
	writeJSON(w, map[string]any{"cards": restored, "alert_records": len(p.AlertState)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	count, _ := s.Cards.Count(r.Context())
	rows, _ := s.History.Recent(r.Context(), 20)

	var cycle scheduler.CycleInfo
	if s.Cycles != nil {
		cycle = s.Cycles.LastCycle()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html><head><title>Extinct Card Monitor</title></head><body>
<h1>Extinct Card Monitor</h1>
<p>Cards tracked: %d</p>
<p>Last cycle #%d: checked %d, extinct %d, alerted %d</p>
<h2>Recent checks</h2><ul>
`, count, cycle.Number, cycle.Checked, cycle.Extinct, cycle.Alerted)
	for i := len(rows) - 1; i >= 0; i-- {
		o := rows[i]
		fmt.Fprintf(w, "<li>%s %s %s</li>\n",
			o.ObservedAt.Format("15:04:05"),
			html.EscapeString(string(o.CardID)),
			html.EscapeString(string(o.Status)),
		)
	}
	fmt.Fprint(w, "</ul></body></html>")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
