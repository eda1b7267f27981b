package handlers

import (
	"blogCMS/internal/session"
	"net/http"
)

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handlers) GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.TaxonomyService.ListTags(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, tags, http.StatusOK)
}

func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.TaxonomyService.ListCategories(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, categories, http.StatusOK)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	category, err := h.TaxonomyService.CreateCategory(r.Context(), session.ActorFrom(r.Context()), req.Name)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, category, http.StatusCreated)
}
