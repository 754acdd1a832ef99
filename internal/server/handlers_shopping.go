package server

import (
	"errors"
	"net/http"

	"github.com/claude/dianafit/internal/shopping"
	"github.com/go-chi/chi/v5"
)

type addRecipeRequest struct {
	RecipeID string `json:"recipeId"`
	Portions int    `json:"portions"`
	// Resolution answers a previous 409: "replace", "add" or "cancel".
	Resolution string `json:"resolution"`
}

func (s *Server) handleShoppingList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.ShoppingList())
}

// handleAddShoppingRecipe adds a recipe. Adding one that is already on the
// list answers 409 with the possible resolutions; the client repeats the
// request with one of them.
func (s *Server) handleAddShoppingRecipe(w http.ResponseWriter, r *http.Request) {
	var req addRecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Portions == 0 {
		req.Portions = 1
	}

	if req.Resolution != "" {
		res, err := shopping.ParseResolution(req.Resolution)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.tracker.ResolveDuplicate(r.Context(), req.RecipeID, req.Portions, res); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s.tracker.ShoppingList())
		return
	}

	if _, err := s.tracker.AddRecipe(r.Context(), req.RecipeID, req.Portions); err != nil {
		if errors.Is(err, shopping.ErrDuplicateRecipe) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":       err.Error(),
				"resolutions": []string{"replace", "add", "cancel"},
			})
			return
		}
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.tracker.ShoppingList())
}

func (s *Server) handleRemoveShoppingRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.RemoveShoppingRecipe(r.Context(), chi.URLParam(r, "entryID")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.ShoppingList())
}

func (s *Server) handleToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.tracker.ToggleShoppingItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleClearShopping(w http.ResponseWriter, r *http.Request) {
	s.tracker.ClearShopping(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
