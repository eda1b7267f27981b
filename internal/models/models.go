package models

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleReader = "reader"
)

// InviteTTL is how long an issued invite stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

type User struct {
	UserID                 string    `json:"id" db:"user_id"`
	Email                  string    `json:"email" db:"email"`
	Name                   string    `json:"name" db:"name"`
	Role                   string    `json:"role" db:"role"`
	Image                  *string   `json:"image" db:"image"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
}

// Author is the public projection of a user attached to posts and comments.
type Author struct {
	UserID string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email,omitempty"`
	Image  *string `json:"image"`
}

type Post struct {
	PostID      string     `json:"id" db:"post_id"`
	AuthorID    string     `json:"authorId" db:"author_id"`
	CategoryID  *string    `json:"categoryId" db:"category_id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Content     string     `json:"content" db:"content"`
	Excerpt     *string    `json:"excerpt" db:"excerpt"`
	Thumbnail   *string    `json:"thumbnail" db:"thumbnail"`
	Published   bool       `json:"published" db:"published"`
	Featured    bool       `json:"featured" db:"featured"`
	PublishedAt *time.Time `json:"publishedAt" db:"published_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	Tags        []Tag      `json:"tags" db:"-"`
	Comments    []Comment  `json:"comments,omitempty" db:"-"`
}

type Tag struct {
	TagID string `json:"id" db:"tag_id"`
	Name  string `json:"name" db:"name"`
	Slug  string `json:"slug" db:"slug"`
}

type Category struct {
	CategoryID string `json:"id" db:"category_id"`
	Name       string `json:"name" db:"name"`
	Slug       string `json:"slug" db:"slug"`
}

type Comment struct {
	CommentID string    `json:"id" db:"comment_id"`
	PostID    string    `json:"postId" db:"post_id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	Approved  bool      `json:"approved" db:"approved"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Author    *Author   `json:"author,omitempty" db:"-"`
	Post      *PostRef  `json:"post,omitempty" db:"-"`
}

// PostRef is the short post reference shown in the moderation queue.
type PostRef struct {
	PostID string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
}

// CommentStats are global counts, independent of any list filter.
type CommentStats struct {
	Pending  int `json:"pending" db:"pending"`
	Approved int `json:"approved" db:"approved"`
	Total    int `json:"total" db:"total"`
}

type Invite struct {
	InviteID    string    `json:"id" db:"invite_id"`
	Email       string    `json:"email" db:"email"`
	Code        string    `json:"code" db:"code"`
	Used        bool      `json:"used" db:"used"`
	ExpiresAt   time.Time `json:"expiresAt" db:"expires_at"`
	InvitedByID string    `json:"invitedById" db:"invited_by_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	InvitedBy   *Author   `json:"invitedBy,omitempty" db:"-"`
}

// Active reports whether the invite can still be redeemed at now.
func (i *Invite) Active(now time.Time) bool {
	return !i.Used && !i.Expired(now)
}

func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// Actor is the identity resolved for the current request.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
