package handlers

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/service"
	"blogCMS/internal/session"
	"net/http"

	"github.com/gorilla/mux"
)

type CreateCommentRequest struct {
	PostID  string `json:"postId" validate:"required"`
	Content string `json:"content"`
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	approved, ok := queryBool(r, "approved")
	if !ok {
		WriteAppError(w, apperrors.Validation("Invalid data",
			apperrors.FieldError{Field: "approved", Message: "must be true or false"}))
		return
	}
	// the public listing shows approved comments unless asked otherwise
	if approved == nil {
		yes := true
		approved = &yes
	}

	comments, err := h.CommentService.ListForPost(r.Context(), r.URL.Query().Get("postId"), approved)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, comments, http.StatusOK)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	comment, err := h.CommentService.Submit(r.Context(), session.ActorFrom(r.Context()), req.PostID, req.Content)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, comment, http.StatusCreated)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID := mux.Vars(r)["id"]

	var req service.UpdateCommentInput
	if err := h.decodeJSON(r, &req); err != nil {
		// a missing comment wins over a bad body
		if _, getErr := h.CommentService.Get(r.Context(), commentID); getErr != nil {
			WriteAppError(w, getErr)
			return
		}
		WriteAppError(w, err)
		return
	}

	comment, err := h.CommentService.Moderate(r.Context(), session.ActorFrom(r.Context()), commentID, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, comment, http.StatusOK)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.CommentService.Delete(r.Context(), session.ActorFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Comment deleted successfully"}, http.StatusOK)
}

func (h *Handlers) GetModerationQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.CommentService.ModerationQueue(r.Context(), session.ActorFrom(r.Context()),
		r.URL.Query().Get("status"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, queue, http.StatusOK)
}
