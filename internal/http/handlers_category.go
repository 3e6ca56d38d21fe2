package http

import (
	"net/http"
)

type categoryRequest struct {
	Name string `json:"name"`
}

// Categories are shared by every user; the caller still has to identify.

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	cats, err := s.categories.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, "list_categories", err)
		return
	}
	NewJSONResponse().Body(newCategoryViews(cats)).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	var req categoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, "create_category", err)
		return
	}

	cat, err := s.categories.CreateCategory(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		s.writeError(w, r, "create_category", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(categoryView{ID: cat.ID, Name: cat.Name}).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	id, err := ParsePathID(r, "id")
	if err != nil {
		s.writeError(w, r, "delete_category", err)
		return
	}

	if err := s.categories.DeleteCategory(r.Context(), id); err != nil {
		s.writeError(w, r, "delete_category", err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
