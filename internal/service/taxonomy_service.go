package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"context"
)

type TaxonomyService interface {
	ListTags(ctx context.Context) ([]*models.Tag, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreateCategory(ctx context.Context, actor models.Actor, name string) (*models.Category, error)
}

type taxonomyService struct {
	tagRepo      repository.TagRepository
	categoryRepo repository.CategoryRepository
}

func NewTaxonomyService(tagRepo repository.TagRepository, categoryRepo repository.CategoryRepository) TaxonomyService {
	return &taxonomyService{tagRepo: tagRepo, categoryRepo: categoryRepo}
}

func (s *taxonomyService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch tags", err)
	}
	return tags, nil
}

func (s *taxonomyService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch categories", err)
	}
	return categories, nil
}

// CreateCategory is idempotent: an existing category with the same slug is returned as is.
func (s *taxonomyService) CreateCategory(ctx context.Context, actor models.Actor, name string) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.KindForbidden, "Admin access required")
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, apperrors.Validation("Invalid data", apperrors.FieldError{Field: "name", Message: "required"})
	}

	category, err := s.categoryRepo.Upsert(ctx, name, slug)
	if err != nil {
		return nil, internalError("Failed to create category", err)
	}
	return category, nil
}
