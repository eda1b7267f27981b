package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/config"
	"blogCMS/internal/notify"
	"blogCMS/internal/repository"
	"blogCMS/internal/storage"
)

type Service struct {
	User     UserService
	Auth     AuthService
	Post     PostService
	Comment  CommentService
	Invite   InviteService
	Taxonomy TaxonomyService
	Tables   TablesService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, notifier notify.Notifier) *Service {
	invites := NewInviteService(rep.User, rep.Invite, notifier, cfg)

	return &Service{
		User:     NewUserService(rep.User, storage, cfg),
		Auth:     NewAuthService(rep.User, invites, cfg),
		Post:     NewPostService(rep.Post, rep.Tag, rep.Category, rep.Comment),
		Comment:  NewCommentService(rep.Comment, rep.Post),
		Invite:   invites,
		Taxonomy: NewTaxonomyService(rep.Tag, rep.Category),
		Tables:   NewTablesService(rep.Tables),
	}
}

// Pagination is returned with every paged list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// normalizePage clamps page and limit and returns the row offset.
func normalizePage(page, limit, defaultLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

func internalError(message string, err error) error {
	return apperrors.Wrap(apperrors.KindInternal, message, err)
}
