package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"context"
	"errors"
	"unicode/utf8"
)

const (
	MaxCommentLength          = 1000
	DefaultModerationPageSize = 20

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusAll      = "all"
)

// UpdateCommentInput is a partial update. Nil fields stay unchanged.
type UpdateCommentInput struct {
	Approved *bool   `json:"approved"`
	Content  *string `json:"content"`
}

type ModerationQueue struct {
	Comments   []*models.Comment   `json:"comments"`
	Pagination Pagination          `json:"pagination"`
	Stats      models.CommentStats `json:"stats"`
}

type CommentService interface {
	Submit(ctx context.Context, actor models.Actor, postID, content string) (*models.Comment, error)
	ListForPost(ctx context.Context, postID string, approved *bool) ([]*models.Comment, error)
	Get(ctx context.Context, commentID string) (*models.Comment, error)
	ModerationQueue(ctx context.Context, actor models.Actor, status string, page, limit int) (*ModerationQueue, error)
	Moderate(ctx context.Context, actor models.Actor, commentID string, input UpdateCommentInput) (*models.Comment, error)
	Delete(ctx context.Context, actor models.Actor, commentID string) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func validateCommentContent(content string) error {
	length := utf8.RuneCountInString(content)
	if length < 1 || length > MaxCommentLength {
		return &apperrors.Error{
			Kind:    apperrors.KindInvalidContent,
			Message: "Invalid data",
			Fields: []apperrors.FieldError{
				{Field: "content", Message: "must be between 1 and 1000 characters"},
			},
		}
	}
	return nil
}

func (s *commentService) Submit(ctx context.Context, actor models.Actor, postID, content string) (*models.Comment, error) {
	if !actor.Authenticated() {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "Authentication required to comment")
	}

	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Post not found")
		}
		return nil, internalError("Failed to create comment", err)
	}

	if !post.Published {
		return nil, apperrors.New(apperrors.KindPostNotPublished, "Cannot comment on unpublished post")
	}

	// every comment starts pending, whoever wrote it
	comment := &models.Comment{
		PostID:   post.PostID,
		AuthorID: actor.UserID,
		Content:  content,
		Approved: false,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, internalError("Failed to create comment", err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.CommentID)
	if err != nil {
		return nil, internalError("Failed to create comment", err)
	}

	return created, nil
}

func (s *commentService) ListForPost(ctx context.Context, postID string, approved *bool) ([]*models.Comment, error) {
	if postID == "" {
		return nil, apperrors.Validation("Post ID is required", apperrors.FieldError{Field: "postId", Message: "required"})
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, approved)
	if err != nil {
		return nil, internalError("Failed to fetch comments", err)
	}

	for _, c := range comments {
		hideAuthorEmail(c)
	}

	return comments, nil
}

// Get returns a single comment without its author's e-mail.
func (s *commentService) Get(ctx context.Context, commentID string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Comment not found")
		}
		return nil, internalError("Failed to fetch comment", err)
	}

	hideAuthorEmail(comment)
	return comment, nil
}

func hideAuthorEmail(c *models.Comment) {
	if c.Author != nil {
		author := *c.Author
		author.Email = ""
		c.Author = &author
	}
}

func parseModerationStatus(status string) (*bool, error) {
	switch status {
	case StatusPending:
		approved := false
		return &approved, nil
	case StatusApproved:
		approved := true
		return &approved, nil
	case StatusAll, "":
		return nil, nil
	default:
		return nil, apperrors.Validation("Invalid data",
			apperrors.FieldError{Field: "status", Message: "must be one of pending, approved, all"})
	}
}

func (s *commentService) ModerationQueue(ctx context.Context, actor models.Actor, status string, page, limit int) (*ModerationQueue, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.New(apperrors.KindForbidden, "Admin access required")
	}

	approved, err := parseModerationStatus(status)
	if err != nil {
		return nil, err
	}

	page, limit, offset := normalizePage(page, limit, DefaultModerationPageSize)

	comments, total, err := s.commentRepo.List(ctx, approved, limit, offset)
	if err != nil {
		return nil, internalError("Failed to fetch comments", err)
	}

	// stats are global and ignore the status filter
	stats, err := s.commentRepo.Stats(ctx)
	if err != nil {
		return nil, internalError("Failed to fetch comments", err)
	}

	return &ModerationQueue{
		Comments:   comments,
		Pagination: NewPagination(page, limit, total),
		Stats:      *stats,
	}, nil
}

// loadForModeration fetches the comment and its post and checks the shared
// permission predicate.
func (s *commentService) loadForModeration(ctx context.Context, actor models.Actor, commentID string) (*models.Comment, *models.Post, error) {
	if !actor.Authenticated() {
		return nil, nil, apperrors.New(apperrors.KindUnauthenticated, "Unauthorized")
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.New(apperrors.KindNotFound, "Comment not found")
		}
		return nil, nil, internalError("Failed to fetch comment", err)
	}

	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, nil, internalError("Failed to fetch comment", err)
	}

	return comment, post, nil
}

func (s *commentService) Moderate(ctx context.Context, actor models.Actor, commentID string, input UpdateCommentInput) (*models.Comment, error) {
	comment, post, err := s.loadForModeration(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}

	if input.Content != nil {
		if err := validateCommentContent(*input.Content); err != nil {
			return nil, err
		}
	}

	if !CanModerateComment(actor, comment, post) {
		return nil, apperrors.New(apperrors.KindForbidden, "Forbidden")
	}

	if input.Approved != nil && !CanApproveComment(actor, post) {
		return nil, apperrors.New(apperrors.KindForbidden, "Cannot moderate this comment")
	}

	if input.Content != nil {
		comment.Content = *input.Content
	}
	if input.Approved != nil {
		comment.Approved = *input.Approved
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Comment not found")
		}
		return nil, internalError("Failed to update comment", err)
	}

	hideAuthorEmail(comment)
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor models.Actor, commentID string) error {
	comment, post, err := s.loadForModeration(ctx, actor, commentID)
	if err != nil {
		return err
	}

	if !CanModerateComment(actor, comment, post) {
		return apperrors.New(apperrors.KindForbidden, "Forbidden")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "Comment not found")
		}
		return internalError("Failed to delete comment", err)
	}

	return nil
}
