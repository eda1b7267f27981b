package repository

import (
	"blogCMS/internal/models"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	CreateUserWithInvite(ctx context.Context, user *models.User, password, inviteID string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, role string, limit, offset int) ([]*models.User, int, error)
	UpdateUser(ctx context.Context, user *models.User) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
}

type InviteRepository interface {
	CreateIfNoActive(ctx context.Context, invite *models.Invite, now time.Time) error
	HasActive(ctx context.Context, email string, now time.Time) (bool, error)
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
	List(ctx context.Context) ([]*models.Invite, error)
	Delete(ctx context.Context, inviteID string) error
	Redeem(ctx context.Context, inviteID, userID string) (*models.User, error)
}

type PostFilter struct {
	Published *bool
	AuthorID  string
	TagSlug   string
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagIDs []string) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, int, error)
	Update(ctx context.Context, post *models.Post, tagIDs []string) error
	Delete(ctx context.Context, postID string) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type TagRepository interface {
	Upsert(ctx context.Context, name, slug string) (*models.Tag, error)
	GetByPostIDs(ctx context.Context, postIDs []string) (map[string][]models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
}

type CategoryRepository interface {
	Upsert(ctx context.Context, name, slug string) (*models.Category, error)
	GetByID(ctx context.Context, categoryID string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string, approved *bool) ([]*models.Comment, error)
	List(ctx context.Context, approved *bool, limit, offset int) ([]*models.Comment, int, error)
	Stats(ctx context.Context) (*models.CommentStats, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, commentID string) error
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
}

type Repository struct {
	User     UserRepository
	Invite   InviteRepository
	Post     PostRepository
	Tag      TagRepository
	Category CategoryRepository
	Comment  CommentRepository
	Tables   TablesRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:     NewUserRepository(db),
		Invite:   NewInviteRepository(db),
		Post:     NewPostRepository(db),
		Tag:      NewTagRepository(db),
		Category: NewCategoryRepository(db),
		Comment:  NewCommentRepository(db),
		Tables:   NewTablesRepository(db),
	}
}
