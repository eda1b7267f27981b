package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/config"
	"blogCMS/internal/models"
	"blogCMS/internal/notify"
	"blogCMS/internal/repository"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	RedemptionAccepted             = "accepted"
	RedemptionRegistrationRequired = "registration_required"
)

// InviteValidity is the read-only answer to a code check.
type InviteValidity struct {
	Valid         bool   `json:"valid"`
	Email         string `json:"email"`
	InvitedByName string `json:"invitedBy"`
}

// PublicInvite is what an unauthenticated caller may learn about an invite.
type PublicInvite struct {
	InviteID  string         `json:"id"`
	Email     string         `json:"email"`
	InvitedBy *models.Author `json:"invitedBy"`
}

type RedemptionResult struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	User    *models.User  `json:"user,omitempty"`
	Invite  *PublicInvite `json:"invite,omitempty"`
}

type InviteService interface {
	Issue(ctx context.Context, actor models.Actor, email string) (*models.Invite, error)
	List(ctx context.Context, actor models.Actor) ([]*models.Invite, error)
	Check(ctx context.Context, code string) (*InviteValidity, error)
	Redeem(ctx context.Context, code, email string) (*RedemptionResult, error)
	// Validate runs the full redemption checks without changing anything.
	Validate(ctx context.Context, code, email string) (*models.Invite, error)
}

type inviteService struct {
	userRepo   repository.UserRepository
	inviteRepo repository.InviteRepository
	notifier   notify.Notifier
	ttl        time.Duration
	now        func() time.Time
	newCode    func() (string, error)
}

func NewInviteService(userRepo repository.UserRepository, inviteRepo repository.InviteRepository, notifier notify.Notifier, cfg *config.Config) InviteService {
	ttl := models.InviteTTL
	if cfg != nil && cfg.InviteTTL > 0 {
		ttl = cfg.InviteTTL
	}

	return &inviteService{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		notifier:   notifier,
		ttl:        ttl,
		now:        time.Now,
		newCode:    generateInviteCode,
	}
}

func generateInviteCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("ошибка генерации кода приглашения: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *inviteService) Issue(ctx context.Context, actor models.Actor, email string) (*models.Invite, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "Unauthorized")
	}
	if email == "" {
		return nil, apperrors.Validation("Invalid data", apperrors.FieldError{Field: "email", Message: "required"})
	}

	inviter, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, internalError("Failed to create invite", err)
	}

	registered, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, internalError("Failed to create invite", err)
	}
	if registered {
		return nil, apperrors.New(apperrors.KindAlreadyRegistered, "User with this email already exists")
	}

	now := s.now()

	active, err := s.inviteRepo.HasActive(ctx, email, now)
	if err != nil {
		return nil, internalError("Failed to create invite", err)
	}
	if active {
		return nil, duplicateInvite()
	}

	code, err := s.newCode()
	if err != nil {
		return nil, internalError("Failed to create invite", err)
	}

	invite := &models.Invite{
		Email:       email,
		Code:        code,
		ExpiresAt:   now.Add(s.ttl),
		InvitedByID: inviter.UserID,
		CreatedAt:   now,
	}

	// the repository re-checks under a per-email lock, so a concurrent issue
	// for the same address loses here
	if err := s.inviteRepo.CreateIfNoActive(ctx, invite, now); err != nil {
		if errors.Is(err, repository.ErrActiveInviteExists) || errors.Is(err, repository.ErrUniqueViolation) {
			return nil, duplicateInvite()
		}
		return nil, internalError("Failed to create invite", err)
	}

	inviterName := inviter.Name
	if inviterName == "" {
		inviterName = "Admin"
	}

	if err := s.notifier.SendInviteEmail(ctx, email, code, inviterName); err != nil {
		// undo: no invite may outlive a failed notification
		if delErr := s.inviteRepo.Delete(context.WithoutCancel(ctx), invite.InviteID); delErr != nil {
			log.Printf("failed to roll back invite %s after notification error: %v", invite.InviteID, delErr)
		}
		return nil, apperrors.Wrap(apperrors.KindNotificationFailed, "Failed to send invitation email", err)
	}

	invite.InvitedBy = &models.Author{
		UserID: inviter.UserID,
		Name:   inviter.Name,
		Email:  inviter.Email,
		Image:  inviter.Image,
	}

	return invite, nil
}

func duplicateInvite() error {
	return apperrors.New(apperrors.KindDuplicateActiveInvite, "Pending invite already exists for this email")
}

func (s *inviteService) List(ctx context.Context, actor models.Actor) ([]*models.Invite, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "Unauthorized")
	}

	invites, err := s.inviteRepo.List(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch invites", err)
	}
	return invites, nil
}

// lookup applies the checks shared by Check and Redeem, in order:
// not found, already used, expired.
func (s *inviteService) lookup(ctx context.Context, code string) (*models.Invite, error) {
	if code == "" {
		return nil, apperrors.Validation("Invitation code is required", apperrors.FieldError{Field: "code", Message: "required"})
	}

	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Invalid invitation code")
		}
		return nil, internalError("Failed to check invitation", err)
	}

	if invite.Used {
		return nil, apperrors.New(apperrors.KindAlreadyUsed, "Invitation code has already been used")
	}

	if invite.Expired(s.now()) {
		return nil, apperrors.New(apperrors.KindExpired, "Invitation code has expired")
	}

	return invite, nil
}

func (s *inviteService) Check(ctx context.Context, code string) (*InviteValidity, error) {
	invite, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	validity := &InviteValidity{Valid: true, Email: invite.Email}
	if invite.InvitedBy != nil {
		validity.InvitedByName = invite.InvitedBy.Name
	}
	return validity, nil
}

func (s *inviteService) Validate(ctx context.Context, code, email string) (*models.Invite, error) {
	invite, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}

	// exact match, no case folding
	if invite.Email != email {
		return nil, apperrors.New(apperrors.KindEmailMismatch, "Email does not match invitation")
	}

	return invite, nil
}

func (s *inviteService) Redeem(ctx context.Context, code, email string) (*RedemptionResult, error) {
	invite, err := s.Validate(ctx, code, email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// registration consumes the invite later
			return &RedemptionResult{
				Status:  RedemptionRegistrationRequired,
				Message: "Invitation is valid. Please complete your registration.",
				Invite: &PublicInvite{
					InviteID:  invite.InviteID,
					Email:     invite.Email,
					InvitedBy: invite.InvitedBy,
				},
			}, nil
		}
		return nil, internalError("Failed to verify invitation", err)
	}

	upgraded, err := s.inviteRepo.Redeem(ctx, invite.InviteID, user.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrInviteUsed) {
			return nil, apperrors.New(apperrors.KindAlreadyUsed, "Invitation code has already been used")
		}
		return nil, internalError("Failed to verify invitation", err)
	}

	return &RedemptionResult{
		Status:  RedemptionAccepted,
		Message: "Invitation accepted. Your account has been upgraded to author.",
		User:    upgraded,
	}, nil
}
