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

type commentRepository struct {
	db *sqlx.DB
}

type commentRow struct {
	models.Comment
	AuthorName  sql.NullString `db:"author_name"`
	AuthorEmail sql.NullString `db:"author_email"`
	AuthorImage *string        `db:"author_image"`
	PostTitle   sql.NullString `db:"post_title"`
	PostSlug    sql.NullString `db:"post_slug"`
}

func (r commentRow) toModel() *models.Comment {
	comment := r.Comment
	comment.Author = &models.Author{
		UserID: comment.AuthorID,
		Name:   r.AuthorName.String,
		Email:  r.AuthorEmail.String,
		Image:  r.AuthorImage,
	}
	comment.Post = &models.PostRef{
		PostID: comment.PostID,
		Title:  r.PostTitle.String,
		Slug:   r.PostSlug.String,
	}
	return &comment
}

const selectCommentQuery = `
	SELECT c.comment_id, c.post_id, c.author_id, c.content, c.approved, c.created_at,
	       u.name AS author_name, u.email AS author_email, u.image AS author_image,
	       p.title AS post_title, p.slug AS post_slug
	FROM comments c
	LEFT JOIN users u ON u.user_id = c.author_id
	LEFT JOIN posts p ON p.post_id = c.post_id
`

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (comment_id, post_id, author_id, content, approved, created_at)
		VALUES (:comment_id, :post_id, :author_id, :content, :approved, :created_at)
	`

	if comment.CommentID == "" {
		comment.CommentID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("ошибка при создании комментария: %w", err)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var row commentRow

	err := r.db.GetContext(ctx, &row, selectCommentQuery+` WHERE c.comment_id = $1`, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("комментарий с ID %s не найден: %w", commentID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении комментария: %w", err)
	}

	return row.toModel(), nil
}

// ListByPost returns a post's comments, newest first. A nil approved
// returns both states.
func (r *commentRepository) ListByPost(ctx context.Context, postID string, approved *bool) ([]*models.Comment, error) {
	query := selectCommentQuery + `
		WHERE c.post_id = $1 AND ($2::boolean IS NULL OR c.approved = $2)
		ORDER BY c.created_at DESC
	`

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, postID, approved); err != nil {
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	return toComments(rows), nil
}

func (r *commentRepository) List(ctx context.Context, approved *bool, limit, offset int) ([]*models.Comment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE ($1::boolean IS NULL OR approved = $1)`, approved)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчёте комментариев: %w", err)
	}

	query := selectCommentQuery + `
		WHERE ($1::boolean IS NULL OR c.approved = $1)
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, approved, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	return toComments(rows), total, nil
}

func (r *commentRepository) Stats(ctx context.Context) (*models.CommentStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT approved) AS pending,
			COUNT(*) FILTER (WHERE approved) AS approved,
			COUNT(*) AS total
		FROM comments
	`

	var stats models.CommentStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте статистики комментариев: %w", err)
	}

	return &stats, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := `
		UPDATE comments SET
			content = :content,
			approved = :approved
		WHERE comment_id = :comment_id
	`

	result, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении комментария: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("комментарий с ID %s не найден: %w", comment.CommentID, ErrNotFound)
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении комментария: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("комментарий с ID %s не найден: %w", commentID, ErrNotFound)
	}

	return nil
}

func toComments(rows []commentRow) []*models.Comment {
	comments := make([]*models.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toModel())
	}
	return comments
}
