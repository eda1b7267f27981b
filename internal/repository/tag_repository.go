package repository

import (
	"blogCMS/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type tagRepository struct {
	db *sqlx.DB
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// upsertBySlug inserts a name/slug row and re-reads it. Losing an insert race
// to a concurrent upsert of the same slug is not an error.
func upsertBySlug(ctx context.Context, db *sqlx.DB, table, idColumn, name, slug string, dest interface{}) error {
	insert := fmt.Sprintf(
		`INSERT INTO %s (%s, name, slug) VALUES ($1, $2, $3) ON CONFLICT (slug) DO NOTHING`,
		table, idColumn)
	if _, err := db.ExecContext(ctx, insert, uuid.New().String(), name, slug); err != nil {
		if !isUniqueViolation(err) {
			return fmt.Errorf("ошибка при создании %s: %w", table, err)
		}
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE slug = $1`, table)
	if err := db.GetContext(ctx, dest, query, slug); err != nil {
		return fmt.Errorf("ошибка при получении %s: %w", table, err)
	}
	return nil
}

func (r *tagRepository) Upsert(ctx context.Context, name, slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := upsertBySlug(ctx, r.db, "tags", "tag_id", name, slug, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetByPostIDs(ctx context.Context, postIDs []string) (map[string][]models.Tag, error) {
	result := make(map[string][]models.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT pt.post_id, t.tag_id, t.name, t.slug
		FROM post_tags pt
		JOIN tags t ON t.tag_id = pt.tag_id
		WHERE pt.post_id::text = ANY($1)
		ORDER BY t.name
	`

	var rows []struct {
		PostID string `db:"post_id"`
		models.Tag
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("ошибка при получении тегов: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Tag)
	}
	return result, nil
}

func (r *tagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	if err := r.db.SelectContext(ctx, &tags, `SELECT * FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("ошибка при получении тегов: %w", err)
	}
	return tags, nil
}

func (r *categoryRepository) Upsert(ctx context.Context, name, slug string) (*models.Category, error) {
	var category models.Category
	if err := upsertBySlug(ctx, r.db, "categories", "category_id", name, slug, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, categoryID string) (*models.Category, error) {
	var category models.Category

	err := r.db.GetContext(ctx, &category, `SELECT * FROM categories WHERE category_id = $1`, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("категория с ID %s не найдена: %w", categoryID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении категории: %w", err)
	}

	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	categories := []*models.Category{}
	if err := r.db.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("ошибка при получении категорий: %w", err)
	}
	return categories, nil
}
