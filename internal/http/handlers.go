package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"ledgerbot/internal/core"
	"ledgerbot/internal/log"
	"ledgerbot/internal/middleware/trace"
)

type priceJSON struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
}

type actionJSON struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type summaryJSON struct {
	User        string       `json:"user,omitempty"`
	Period      string       `json:"period"`
	WindowStart string       `json:"window_start,omitempty"`
	Actions     []actionJSON `json:"actions"`
	Total       int64        `json:"total"`
	Skipped     int          `json:"skipped"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	entries := s.deps.Catalog.Entries()
	out := make([]priceJSON, len(entries))
	for i, e := range entries {
		out[i] = priceJSON{Name: e.Name, UnitPrice: e.UnitPrice}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSummary serves GET /api/summary?user=&period=. Both parameters are
// optional; without user every sender is included.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	period, err := core.ParsePeriod(query.Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "period must be one of daily, weekly, monthly")
		return
	}
	today := core.DateOf(s.deps.Now().In(s.deps.Location))
	q := core.SummaryQuery{
		User:        strings.TrimSpace(query.Get("user")),
		WindowStart: period.WindowStart(today),
	}

	summary, err := s.deps.Ledger.Summarize(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "Summary failed",
			log.FieldOperation, log.OpSummarize,
			log.FieldRequestID, trace.GetRequestID(ctx),
			log.FieldError, err)
		writeError(w, http.StatusBadGateway, "ledger unavailable")
		return
	}

	out := summaryJSON{
		User:    q.User,
		Period:  string(period),
		Actions: make([]actionJSON, len(summary.PerAction)),
		Total:   summary.TotalAmount,
		Skipped: summary.Skipped,
	}
	if out.Period == "" {
		out.Period = "all"
	}
	if !q.WindowStart.IsEmpty() {
		out.WindowStart = q.WindowStart.String()
	}
	for i, a := range summary.PerAction {
		out.Actions[i] = actionJSON{Name: a.Name, Quantity: a.Quantity}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
