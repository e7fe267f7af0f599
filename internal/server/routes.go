package server

import (
	"net/http"
	"regexp"
	"time"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/go-chi/chi/v5"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type consumptionRow struct {
	Rank         int                          `json:"rank"`
	UserID       string                       `json:"user_id"`
	Name         string                       `json:"name"`
	Counts       map[models.SubstanceKind]int `json:"counts"`
	EthanolGrams float64                      `json:"ethanol_grams"`
}

type intoxicationRow struct {
	Rank   int     `json:"rank"`
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Metric float64 `json:"metric"`
}

func (s *Server) handleConsumption(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" && !monthPattern.MatchString(month) {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	output, err := s.tracker.RankConsumption(r.Context(), &tracker.RankConsumptionInput{
		GuildID: chi.URLParam(r, "guildID"),
		Month:   month,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	rows := make([]consumptionRow, 0, len(output.Entries))
	for _, entry := range output.Entries {
		rows = append(rows, consumptionRow{
			Rank:         entry.Rank,
			UserID:       entry.UserID,
			Name:         entry.Name,
			Counts:       entry.Counts,
			EthanolGrams: entry.EthanolGrams,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"month":   output.Month,
		"entries": rows,
	})
}

func (s *Server) handleIntoxication(w http.ResponseWriter, r *http.Request) {
	output, err := s.tracker.RankIntoxication(r.Context(), &tracker.RankIntoxicationInput{
		GuildID: chi.URLParam(r, "guildID"),
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	rows := make([]intoxicationRow, 0, len(output.Entries))
	for _, entry := range output.Entries {
		rows = append(rows, intoxicationRow{
			Rank:   entry.Rank,
			UserID: entry.UserID,
			Name:   entry.Name,
			Metric: entry.Metric,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"at":      output.At.Format(time.RFC3339),
		"entries": rows,
	})
}

func (s *Server) handleUserStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.tracker.GetStatus(r.Context(), &tracker.GetStatusInput{
		GuildID: chi.URLParam(r, "guildID"),
		UserID:  chi.URLParam(r, "userID"),
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":       status.UserID,
		"display_name":  status.DisplayName,
		"metric":        status.Metric,
		"month":         status.Month,
		"counts":        status.Counts,
		"weight_kg":     status.WeightKg,
		"display_mode":  status.DisplayMode,
		"active_events": status.ActiveEvents,
	})
}
