package service

import "blogCMS/internal/models"

// CanModerateComment reports whether actor may edit or delete comment on post:
// admins, the post's author and the comment's own author.
func CanModerateComment(actor models.Actor, comment *models.Comment, post *models.Post) bool {
	if !actor.Authenticated() || comment == nil || post == nil {
		return false
	}
	return actor.IsAdmin() || actor.UserID == post.AuthorID || actor.UserID == comment.AuthorID
}

// CanApproveComment reports whether actor may flip the approval flag of
// comments on post. Commenters cannot approve their own comments.
func CanApproveComment(actor models.Actor, post *models.Post) bool {
	if !actor.Authenticated() || post == nil {
		return false
	}
	return actor.IsAdmin() || actor.UserID == post.AuthorID
}

func CanEditPost(actor models.Actor, post *models.Post) bool {
	return CanApproveComment(actor, post)
}

func CanWritePosts(actor models.Actor) bool {
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleAuthor
}
