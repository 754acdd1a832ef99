package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/dianafit/internal/backup"
	"github.com/claude/dianafit/internal/models"
	"github.com/claude/dianafit/internal/shopping"
	"github.com/claude/dianafit/internal/tracker"
	"github.com/claude/dianafit/internal/workout"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies, backups included.
const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, tracker.ErrNoSession),
		errors.Is(err, tracker.ErrUnknownPass),
		errors.Is(err, tracker.ErrUnknownRecipe),
		errors.Is(err, tracker.ErrNoHistory),
		errors.Is(err, shopping.ErrUnknownEntry),
		errors.Is(err, shopping.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, shopping.ErrDuplicateRecipe),
		errors.Is(err, tracker.ErrWrongMode),
		errors.Is(err, workout.ErrNotActive):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, backup.ErrInvalidBackup),
		errors.Is(err, tracker.ErrInvalidSetting),
		errors.Is(err, shopping.ErrInvalidPortions),
		errors.Is(err, workout.ErrSetOutOfRange),
		errors.Is(err, workout.ErrRowOutOfRange):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeDomainError writes err with its mapped status. Internal errors are
// logged and reported without detail.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// decodeBody decodes a JSON request body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Catalog().Plans())
}

func (s *Server) handleActivePasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Passes(r.Context()))
}

// handleRecipes lists recipes, optionally filtered by ?category=.
func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	cat := models.Category(r.URL.Query().Get("category"))
	if cat != "" && !cat.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	recipes := s.tracker.Catalog().RecipesByCategory(cat)
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// handleRecipe returns one recipe, scaled when ?portions= is given.
func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	portions := 1
	if p := r.URL.Query().Get("portions"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid portions")
			return
		}
		portions = n
	}
	recipe, err := s.tracker.ScaledRecipe(chi.URLParam(r, "id"), portions)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	c := s.tracker.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"restGuidelines": c.RestGuidelines(),
		"warmups":        c.WarmupOptions(),
		"nutrition":      c.Nutrition(),
	})
}
