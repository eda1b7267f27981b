package handlers

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/session"
	"net/http"
)

type CreateInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RedeemInviteRequest struct {
	Code  string `json:"code" validate:"required"`
	Email string `json:"email" validate:"required"`
}

func (h *Handlers) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.InviteService.List(r.Context(), session.ActorFrom(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, invites, http.StatusOK)
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actor := session.ActorFrom(r.Context())
	// non-admins learn nothing about the body
	if !actor.IsAdmin() {
		WriteAppError(w, apperrors.New(apperrors.KindPermissionDenied, "Unauthorized"))
		return
	}

	var req CreateInviteRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	invite, err := h.InviteService.Issue(r.Context(), actor, req.Email)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, invite, http.StatusCreated)
}

// VerifyInvite checks a code without consuming it.
func (h *Handlers) VerifyInvite(w http.ResponseWriter, r *http.Request) {
	validity, err := h.InviteService.Check(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, validity, http.StatusOK)
}

func (h *Handlers) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	var req RedeemInviteRequest
	if err := h.decodeJSON(r, &req); err != nil {
		WriteAppError(w, err)
		return
	}

	result, err := h.InviteService.Redeem(r.Context(), req.Code, req.Email)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}
