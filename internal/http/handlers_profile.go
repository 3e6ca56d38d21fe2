package http

import (
	"net/http"
)

type budgetRequest struct {
	BudgetLimit flexString `json:"budget_limit"`
}

// handleCreateProfile registers the caller. A missing identity is a bad
// request here rather than an authentication failure.
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)
	if userID == "" {
		BadRequestError("User ID is required").Write(w)
		return
	}

	profile, err := s.profiles.CreateProfile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, "create_profile", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(newProfileView(profile)).Write(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	profile, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, "get_profile", err)
		return
	}
	NewJSONResponse().Body(newProfileView(profile)).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "update_budget", err)
		return
	}

	profile, err := s.profiles.UpdateBudgetLimit(r.Context(), userID, string(req.BudgetLimit))
	if err != nil {
		s.writeError(w, r, "update_budget", err)
		return
	}
	NewJSONResponse().Body(newProfileView(profile)).Write(w)
}
