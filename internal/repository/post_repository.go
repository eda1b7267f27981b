package repository

import (
	"blogCMS/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

type CreatePostRequest struct {
	AuthorID   string   `json:"authorId"`
	CategoryID *string  `json:"categoryId"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    *string  `json:"excerpt"`
	Thumbnail  *string  `json:"thumbnail"`
	Published  bool     `json:"published"`
	Featured   bool     `json:"featured"`
	Tags       []string `json:"tags"`
}

// UpdatePostRequest carries a partial update; nil fields are left as they are.
type UpdatePostRequest struct {
	PostID     string    `json:"postId"`
	CategoryID *string   `json:"categoryId"`
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	Thumbnail  *string   `json:"thumbnail"`
	Published  *bool     `json:"published"`
	Featured   *bool     `json:"featured"`
	Tags       *[]string `json:"tags"`
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post, tagIDs []string) error {
	query := `
        INSERT INTO posts
        (post_id, author_id, category_id, title, slug, content, excerpt, thumbnail, published, featured, published_at, created_at, updated_at)
        VALUES
        (:post_id, :author_id, :category_id, :title, :slug, :content, :excerpt, :thumbnail, :published, :featured, :published_at, :created_at, :updated_at)
    `

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, query, post); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("пост с slug %s уже существует: %w", post.Slug, ErrUniqueViolation)
		}
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	if err := insertPostTags(ctx, tx, post.PostID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `
        SELECT * FROM posts
        WHERE post_id = $1
    `

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пост с ID %s не найден: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	return &post, nil
}

const postFilterClause = `
	WHERE ($1::boolean IS NULL OR p.published = $1)
	  AND ($2 = '' OR p.author_id::text = $2)
	  AND ($3 = '' OR EXISTS (
		SELECT 1 FROM post_tags pt
		JOIN tags t ON t.tag_id = pt.tag_id
		WHERE pt.post_id = p.post_id AND t.slug = $3
	  ))
`

func (r *PostRepositoryImpl) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, int, error) {
	var total int
	err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM posts p`+postFilterClause,
		filter.Published, filter.AuthorID, filter.TagSlug)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчёте постов: %w", err)
	}

	query := `SELECT p.* FROM posts p` + postFilterClause + `
		ORDER BY p.created_at DESC
		LIMIT $4 OFFSET $5
	`

	posts := []*models.Post{}
	err = r.DB.SelectContext(ctx, &posts, query, filter.Published, filter.AuthorID, filter.TagSlug, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	return posts, total, nil
}

// Update writes the post row. A non-nil tagIDs replaces the post's tags.
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post, tagIDs []string) error {
	query := `
		UPDATE posts SET
			category_id = :category_id,
			title = :title,
			slug = :slug,
			content = :content,
			excerpt = :excerpt,
			thumbnail = :thumbnail,
			published = :published,
			featured = :featured,
			published_at = :published_at,
			updated_at = :updated_at
		WHERE post_id = :post_id
	`

	post.UpdatedAt = time.Now()

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, query, post)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("пост с slug %s уже существует: %w", post.Slug, ErrUniqueViolation)
		}
		return fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %s не найден: %w", post.PostID, ErrNotFound)
	}

	if tagIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, post.PostID); err != nil {
			return fmt.Errorf("ошибка при удалении тегов поста: %w", err)
		}
		if err := insertPostTags(ctx, tx, post.PostID, tagIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}

// Delete removes the post; comments and tag links go with it through ON DELETE CASCADE.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	query := `DELETE FROM posts WHERE post_id = $1`

	result, err := r.DB.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %s не найден: %w", postID, ErrNotFound)
	}

	return nil
}

func (r *PostRepositoryImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool

	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке slug: %w", err)
	}

	return exists, nil
}

func insertPostTags(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, tagID)
		if err != nil {
			return fmt.Errorf("ошибка при привязке тега к посту: %w", err)
		}
	}
	return nil
}
