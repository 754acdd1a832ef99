package server

import (
	"net/http"

	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/claude/dianafit/internal/workout"
)

type startRequest struct {
	PassKey string          `json:"passKey"`
	Mode    models.ViewMode `json:"mode"`
}

type setRequest struct {
	SetIndex int    `json:"setIndex"`
	Weight   string `json:"weight"`
	Reps     string `json:"reps"`
}

type navigateRequest struct {
	Direction string `json:"direction"`
}

type rowRequest struct {
	Exercise int    `json:"exercise"`
	Row      int    `json:"row"`
	Weight   string `json:"weight"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.tracker.Session()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PassKey == "" {
		writeError(w, http.StatusBadRequest, "passKey is required")
		return
	}
	if req.Mode != "" && !req.Mode.Valid() {
		writeError(w, http.StatusBadRequest, "mode must be list or detailed")
		return
	}
	view, err := s.tracker.StartPass(r.Context(), req.PassKey, req.Mode)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleQuickStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action tracker.QuickAction `json:"action"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Action != tracker.QuickLast && req.Action != tracker.QuickNext {
		writeError(w, http.StatusBadRequest, "action must be last-workout or next-workout")
		return
	}
	view, err := s.tracker.QuickStart(r.Context(), req.Action)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if !decodeBody(w, r, &req) {
		return
	}
	view, recorded, err := s.tracker.CompleteSet(req.SetIndex, workout.SetInput{Weight: req.Weight, Reps: req.Reps})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recorded": recorded, "session": view})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var dir workout.Direction
	switch req.Direction {
	case "prev":
		dir = workout.Prev
	case "next":
		dir = workout.Next
	default:
		writeError(w, http.StatusBadRequest, "direction must be prev or next")
		return
	}
	view, moved, err := s.tracker.Navigate(dir)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "session": view})
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	view, err := s.tracker.SkipRest()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	rec, err := s.tracker.Finish(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Cancel(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSwitchDetailed(w http.ResponseWriter, r *http.Request) {
	view, err := s.tracker.SwitchToDetailed(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleToggleRow(w http.ResponseWriter, r *http.Request) {
	var req rowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	done, err := s.tracker.ToggleRow(req.Exercise, req.Row)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"completed": done})
}

func (s *Server) handleRowWeight(w http.ResponseWriter, r *http.Request) {
	var req rowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.tracker.SetRowWeight(req.Exercise, req.Row, req.Weight); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
