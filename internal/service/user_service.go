package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/config"
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"blogCMS/internal/storage"
	"context"
	"errors"
	"io"
	"log"
)

const DefaultUserPageSize = 10

type UserPage struct {
	Users      []*models.User `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

type UserService interface {
	Me(ctx context.Context, actor models.Actor) (*models.User, error)
	List(ctx context.Context, actor models.Actor, role string, page, limit int) (*UserPage, error)
	UpdateUser(ctx context.Context, actor models.Actor, req repository.UpdateUserRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, actor models.Actor, fileName string, file io.Reader, size int64) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
	cfg      *config.Config
}

func NewUserService(userRepo repository.UserRepository, storage storage.Storage, cfg *config.Config) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleAuthor || role == models.RoleReader
}

func (s *userService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	if !actor.Authenticated() {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "Authentication required")
	}

	user, err := s.userRepo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindUnauthenticated, "Authentication required")
		}
		return nil, internalError("Failed to fetch user", err)
	}

	return user, nil
}

func (s *userService) List(ctx context.Context, actor models.Actor, role string, page, limit int) (*UserPage, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "Unauthorized")
	}

	// unknown roles are ignored, like a missing filter
	if !validRole(role) {
		role = ""
	}

	page, limit, offset := normalizePage(page, limit, DefaultUserPageSize)

	users, total, err := s.userRepo.List(ctx, role, limit, offset)
	if err != nil {
		return nil, internalError("Failed to fetch users", err)
	}

	return &UserPage{Users: users, Pagination: NewPagination(page, limit, total)}, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor models.Actor, req repository.UpdateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "Unauthorized")
	}

	if req.Role != nil && !validRole(*req.Role) {
		return nil, apperrors.Validation("Invalid data",
			apperrors.FieldError{Field: "role", Message: "must be one of admin, author, reader"})
	}

	// get user by id
	user, err := s.userRepo.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "User not found")
		}
		return nil, internalError("Failed to update user", err)
	}

	// an admin cannot lock themselves out
	if user.UserID == actor.UserID && req.Role != nil && *req.Role != models.RoleAdmin {
		return nil, apperrors.Validation("Cannot change your own admin role")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	// update user
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "User not found")
		}
		return nil, internalError("Failed to update user", err)
	}

	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, actor models.Actor, fileName string, file io.Reader, size int64) (*models.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	objectName, url, err := s.storage.UploadAvatar(ctx, user.UserID, fileName, file, size)
	if err != nil {
		return nil, internalError("Failed to upload avatar", err)
	}

	previous := user.Image
	user.Image = &url

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if delErr := s.storage.DeleteObject(ctx, objectName); delErr != nil {
			log.Printf("failed to clean up avatar %s: %v", objectName, delErr)
		}
		return nil, internalError("Failed to upload avatar", err)
	}

	if previous != nil {
		if old := storage.ObjectNameFromURL(s.cfg.MinIO, *previous); old != "" {
			if err := s.storage.DeleteObject(ctx, old); err != nil {
				log.Printf("failed to delete previous avatar %s: %v", old, err)
			}
		}
	}

	return user, nil
}
