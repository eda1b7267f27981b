package handlers

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/repository"
	"blogCMS/internal/session"
	"io"
	"net/http"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
)

var allowedAvatarTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type UpdateUserRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Role *string `json:"role" validate:"omitempty,oneof=admin author reader"`
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Me(r.Context(), session.ActorFrom(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, user, http.StatusOK)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.UserService.List(r.Context(), session.ActorFrom(r.Context()),
		r.URL.Query().Get("role"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), session.ActorFrom(r.Context()), repository.UpdateUserRequest{
		UserID: mux.Vars(r)["id"],
		Name:   req.Name,
		Role:   req.Role,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, user, http.StatusOK)
}

// UploadAvatar accepts a multipart "file" field holding a jpeg, png, gif or webp image.
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	actor := session.ActorFrom(r.Context())
	if !actor.Authenticated() {
		WriteAppError(w, apperrors.New(apperrors.KindUnauthenticated, "Authentication required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+1024*1024)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		WriteError(w, "File is too large or the form is invalid", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.Cfg.MaxUploadSize {
		WriteError(w, "File is too large", http.StatusBadRequest)
		return
	}

	// sniff the content, the client-provided header is not trusted
	mtype, err := mimetype.DetectReader(file)
	if err != nil || !slices.Contains(allowedAvatarTypes, mtype.String()) {
		WriteError(w, "Only JPEG, PNG, GIF and WEBP images are allowed", http.StatusBadRequest)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		WriteAppError(w, err)
		return
	}

	user, err := h.UserService.UploadAvatar(r.Context(), actor, header.Filename, file, header.Size)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	writeJSON(w, user, http.StatusOK)
}
