package service

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"context"
	"errors"
	"time"
)

const DefaultPostPageSize = 10

type PostListFilter struct {
	Published *bool
	AuthorID  string
	Tag       string
}

type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

type PostService interface {
	CreatePost(ctx context.Context, actor models.Actor, req repository.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, actor models.Actor, postID string) (*models.Post, error)
	ListPosts(ctx context.Context, actor models.Actor, filter PostListFilter, page, limit int) (*PostPage, error)
	UpdatePost(ctx context.Context, actor models.Actor, req repository.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, actor models.Actor, postID string) error
}

type postService struct {
	postRepo     repository.PostRepository
	tagRepo      repository.TagRepository
	categoryRepo repository.CategoryRepository
	commentRepo  repository.CommentRepository
	now          func() time.Time
}

func NewPostService(postRepo repository.PostRepository, tagRepo repository.TagRepository,
	categoryRepo repository.CategoryRepository, commentRepo repository.CommentRepository) PostService {
	return &postService{
		postRepo:     postRepo,
		tagRepo:      tagRepo,
		categoryRepo: categoryRepo,
		commentRepo:  commentRepo,
		now:          time.Now,
	}
}

func postConflict() error {
	return apperrors.New(apperrors.KindConflict, "A post with this title already exists")
}

func (p *postService) loadPost(ctx context.Context, postID string) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "Post not found")
		}
		return nil, internalError("Failed to fetch post", err)
	}
	return post, nil
}

// resolveTags upserts every tag name by slug. Blank names are skipped and
// duplicates collapse to one tag.
func (p *postService) resolveTags(ctx context.Context, names []string) ([]models.Tag, []string, error) {
	tags := []models.Tag{}
	ids := []string{}
	seen := map[string]bool{}

	for _, name := range names {
		slug := Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, err := p.tagRepo.Upsert(ctx, name, slug)
		if err != nil {
			return nil, nil, internalError("Failed to save tags", err)
		}
		tags = append(tags, *tag)
		ids = append(ids, tag.TagID)
	}

	return tags, ids, nil
}

func (p *postService) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil || *categoryID == "" {
		return nil
	}
	if _, err := p.categoryRepo.GetByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "Category not found")
		}
		return internalError("Failed to fetch category", err)
	}
	return nil
}

func (p *postService) CreatePost(ctx context.Context, actor models.Actor, req repository.CreatePostRequest) (*models.Post, error) {
	if !actor.Authenticated() {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "Unauthorized")
	}
	if !CanWritePosts(actor) {
		return nil, apperrors.New(apperrors.KindForbidden, "Only authors can create posts")
	}

	slug := Slugify(req.Title)
	if slug == "" {
		return nil, apperrors.Validation("Invalid data", apperrors.FieldError{Field: "title", Message: "required"})
	}

	exists, err := p.postRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, internalError("Failed to create post", err)
	}
	if exists {
		return nil, postConflict()
	}

	if err := p.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	tags, tagIDs, err := p.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:   actor.UserID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Slug:       slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Thumbnail:  req.Thumbnail,
		Published:  req.Published,
		Featured:   req.Featured,
	}
	if post.Published {
		now := p.now()
		post.PublishedAt = &now
	}

	if err := p.postRepo.Create(ctx, post, tagIDs); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, postConflict()
		}
		return nil, internalError("Failed to create post", err)
	}

	post.Tags = tags
	return post, nil
}

// GetPost returns a post with its tags and approved comments. Drafts are
// visible only to their author and admins; everyone else gets NotFound.
func (p *postService) GetPost(ctx context.Context, actor models.Actor, postID string) (*models.Post, error) {
	post, err := p.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.Published && !CanEditPost(actor, post) {
		return nil, apperrors.New(apperrors.KindNotFound, "Post not found")
	}

	tags, err := p.tagRepo.GetByPostIDs(ctx, []string{post.PostID})
	if err != nil {
		return nil, internalError("Failed to fetch post", err)
	}
	post.Tags = tags[post.PostID]

	approved := true
	comments, err := p.commentRepo.ListByPost(ctx, post.PostID, &approved)
	if err != nil {
		return nil, internalError("Failed to fetch post", err)
	}
	post.Comments = make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.Author != nil {
			c.Author.Email = ""
		}
		post.Comments = append(post.Comments, *c)
	}

	return post, nil
}

func (p *postService) ListPosts(ctx context.Context, actor models.Actor, filter PostListFilter, page, limit int) (*PostPage, error) {
	repoFilter := repository.PostFilter{
		Published: filter.Published,
		AuthorID:  filter.AuthorID,
		TagSlug:   Slugify(filter.Tag),
	}

	// drafts only show up for admins and for authors listing their own posts
	ownPosts := actor.Authenticated() && filter.AuthorID == actor.UserID
	if !actor.IsAdmin() && !ownPosts {
		published := true
		repoFilter.Published = &published
	}

	page, limit, offset := normalizePage(page, limit, DefaultPostPageSize)

	posts, total, err := p.postRepo.List(ctx, repoFilter, limit, offset)
	if err != nil {
		return nil, internalError("Failed to fetch posts", err)
	}

	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.PostID)
	}

	tags, err := p.tagRepo.GetByPostIDs(ctx, ids)
	if err != nil {
		return nil, internalError("Failed to fetch posts", err)
	}
	for _, post := range posts {
		post.Tags = tags[post.PostID]
		if post.Tags == nil {
			post.Tags = []models.Tag{}
		}
	}

	return &PostPage{Posts: posts, Pagination: NewPagination(page, limit, total)}, nil
}

func (p *postService) UpdatePost(ctx context.Context, actor models.Actor, req repository.UpdatePostRequest) (*models.Post, error) {
	if !actor.Authenticated() {
		return nil, apperrors.New(apperrors.KindUnauthenticated, "Unauthorized")
	}

	post, err := p.loadPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if !CanEditPost(actor, post) {
		return nil, apperrors.New(apperrors.KindForbidden, "Forbidden")
	}

	if req.Title != nil {
		slug := Slugify(*req.Title)
		if slug == "" {
			return nil, apperrors.Validation("Invalid data", apperrors.FieldError{Field: "title", Message: "required"})
		}
		if slug != post.Slug {
			exists, err := p.postRepo.SlugExists(ctx, slug)
			if err != nil {
				return nil, internalError("Failed to update post", err)
			}
			if exists {
				return nil, postConflict()
			}
		}
		post.Title = *req.Title
		post.Slug = slug
	}

	if req.CategoryID != nil {
		if err := p.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = req.CategoryID
		if *req.CategoryID == "" {
			post.CategoryID = nil
		}
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = req.Excerpt
	}
	if req.Thumbnail != nil {
		post.Thumbnail = req.Thumbnail
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.Published != nil {
		post.Published = *req.Published
		// publishedAt records the first publication and survives unpublishing
		if post.Published && post.PublishedAt == nil {
			now := p.now()
			post.PublishedAt = &now
		}
	}

	var tags []models.Tag
	var tagIDs []string
	if req.Tags != nil {
		tags, tagIDs, err = p.resolveTags(ctx, *req.Tags)
		if err != nil {
			return nil, err
		}
	}

	if err := p.postRepo.Update(ctx, post, tagIDs); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.New(apperrors.KindNotFound, "Post not found")
		case errors.Is(err, repository.ErrUniqueViolation):
			return nil, postConflict()
		}
		return nil, internalError("Failed to update post", err)
	}

	if req.Tags != nil {
		post.Tags = tags
	}
	return post, nil
}

func (p *postService) DeletePost(ctx context.Context, actor models.Actor, postID string) error {
	if !actor.Authenticated() {
		return apperrors.New(apperrors.KindUnauthenticated, "Unauthorized")
	}

	post, err := p.loadPost(ctx, postID)
	if err != nil {
		return err
	}

	if !CanEditPost(actor, post) {
		return apperrors.New(apperrors.KindForbidden, "Forbidden")
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.KindNotFound, "Post not found")
		}
		return internalError("Failed to delete post", err)
	}

	return nil
}
