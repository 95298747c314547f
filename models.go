package blog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Username      string    `bun:"username,notnull,unique" json:"username"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Public returns a copy of the user safe to embed in other
// resources.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Category groups posts. Name and slug are unique.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull,unique" json:"name"`
	Slug          string    `bun:"slug,notnull,unique" json:"slug"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Post is a blog entry owned by its author
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID   `bun:"id,pk,type:uuid" json:"id"`
	Title         string      `bun:"title,notnull" json:"title"`
	Slug          string      `bun:"slug,notnull,unique" json:"slug"`
	Content       string      `bun:"content,notnull" json:"content"`
	ImageURL      string      `bun:"image_url" json:"image,omitempty"`
	AuthorID      uuid.UUID   `bun:"author_id,notnull,type:uuid" json:"authorId"`
	Author        *User       `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Categories    []*Category `bun:"m2m:post_categories,join:Post=Category" json:"categories"`
	CategoryIDs   []uuid.UUID `bun:"-" json:"-"`
	CreatedAt     time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// IsAuthoredBy reports whether userID owns the post
func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p != nil && p.AuthorID == userID
}

// PostCategory is the join table between posts and categories
type PostCategory struct {
	bun.BaseModel `bun:"table:post_categories,alias:pc"`
	PostID        uuid.UUID `bun:"post_id,pk,type:uuid"`
	Post          *Post     `bun:"rel:belongs-to,join:post_id=id"`
	CategoryID    uuid.UUID `bun:"category_id,pk,type:uuid"`
	Category      *Category `bun:"rel:belongs-to,join:category_id=id"`
}

// Comment is a note left on a post by a user
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Content       string    `bun:"content,notnull" json:"content"`
	AuthorID      uuid.UUID `bun:"author_id,notnull,type:uuid" json:"authorId"`
	Author        *User     `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	PostID        uuid.UUID `bun:"post_id,notnull,type:uuid" json:"postId"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// IsAuthoredBy reports whether userID owns the comment
func (c *Comment) IsAuthoredBy(userID uuid.UUID) bool {
	return c != nil && c.AuthorID == userID
}

// Like records that a user liked a post. The (user, post)
// pair is unique.
type Like struct {
	bun.BaseModel `bun:"table:likes,alias:lk"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid,unique:likes_user_post" json:"userId"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	PostID        uuid.UUID `bun:"post_id,notnull,type:uuid,unique:likes_user_post" json:"postId"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

// Page is a slice of records plus the numbers needed to
// walk the rest of the collection.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// Offset is the number of records skipped before this page
func (p Page[T]) Offset() int {
	return (p.Page - 1) * p.Limit
}
