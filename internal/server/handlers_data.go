package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/claude/dianafit/internal/backup"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/stats"
	"github.com/go-chi/chi/v5"
)

type settingsRequest struct {
	ActivePlan    *int             `json:"activePlan"`
	Theme         *models.Theme    `json:"theme"`
	ViewMode      *models.ViewMode `json:"viewMode"`
	CurrentScreen *string          `json:"currentScreen"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.tracker.History(r.Context())
	if history == nil {
		history = []models.WorkoutRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}

// handleCalendar returns the calendar for ?month=YYYY-MM, the current month
// by default.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	m := s.tracker.CurrentMonth()
	if q := r.URL.Query().Get("month"); q != "" {
		parsed, err := stats.ParseMonth(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		m = parsed
	}
	writeJSON(w, http.StatusOK, s.tracker.Calendar(r.Context(), m))
}

func (s *Server) handleDayWorkouts(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	workouts := s.tracker.DayWorkouts(r.Context(), date)
	if workouts == nil {
		workouts = []models.WorkoutRecord{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Settings(r.Context()))
}

// handleUpdateSettings applies the fields present in the body.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	if req.ActivePlan != nil {
		if err := s.tracker.SetActivePlan(ctx, *req.ActivePlan); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	if req.Theme != nil {
		if err := s.tracker.SetTheme(ctx, *req.Theme); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	if req.ViewMode != nil {
		if err := s.tracker.SetViewMode(ctx, *req.ViewMode); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	if req.CurrentScreen != nil {
		if err := s.tracker.SetCurrentScreen(ctx, *req.CurrentScreen); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.tracker.Settings(ctx))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc := s.tracker.Export(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.tracker.ExportFilename()))
	if err := backup.Write(w, doc); err != nil {
		s.log.Error("writing backup", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	n, err := s.tracker.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"workouts": n})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.tracker.ClearAll(r.Context(), req.Confirm); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
