package handlers

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/repository"
	"blogCMS/internal/service"
	"blogCMS/internal/session"
	"net/http"

	"github.com/gorilla/mux"
)

type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"required"`
	Excerpt    *string  `json:"excerpt" validate:"omitempty,max=500"`
	Thumbnail  *string  `json:"thumbnail" validate:"omitempty,url"`
	CategoryID *string  `json:"categoryId"`
	Published  bool     `json:"published"`
	Featured   bool     `json:"featured"`
	Tags       []string `json:"tags" validate:"omitempty,dive,max=50"`
}

type UpdatePostRequest struct {
	Title      *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Content    *string   `json:"content" validate:"omitempty,min=1"`
	Excerpt    *string   `json:"excerpt" validate:"omitempty,max=500"`
	Thumbnail  *string   `json:"thumbnail" validate:"omitempty,url"`
	CategoryID *string   `json:"categoryId"`
	Published  *bool     `json:"published"`
	Featured   *bool     `json:"featured"`
	Tags       *[]string `json:"tags"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	published, ok := queryBool(r, "published")
	if !ok {
		WriteAppError(w, apperrors.Validation("Invalid data",
			apperrors.FieldError{Field: "published", Message: "must be true or false"}))
		return
	}

	filter := service.PostListFilter{
		Published: published,
		AuthorID:  r.URL.Query().Get("authorId"),
		Tag:       r.URL.Query().Get("tag"),
	}

	page, err := h.PostService.ListPosts(r.Context(), session.ActorFrom(r.Context()), filter,
		queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), session.ActorFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	actor := session.ActorFrom(r.Context())
	post, err := h.PostService.CreatePost(r.Context(), actor, repository.CreatePostRequest{
		AuthorID:   actor.UserID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Thumbnail:  req.Thumbnail,
		Published:  req.Published,
		Featured:   req.Featured,
		Tags:       req.Tags,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, post, http.StatusCreated)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	post, err := h.PostService.UpdatePost(r.Context(), session.ActorFrom(r.Context()), repository.UpdatePostRequest{
		PostID:     mux.Vars(r)["id"],
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Thumbnail:  req.Thumbnail,
		Published:  req.Published,
		Featured:   req.Featured,
		Tags:       req.Tags,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.PostService.DeletePost(r.Context(), session.ActorFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, map[string]string{"message": "Post deleted successfully"}, http.StatusOK)
}
