package blog

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options the services read at construction time
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetTokenExpiration() time.Duration
	GetSaltRounds() int
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// FindByUsernameOrEmail returns ErrRecordNotFound when neither matches
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
}

// CategoryStore persists categories
type CategoryStore interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByNameOrSlug(ctx context.Context, name, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostStore persists posts. Returned posts carry their author and
// categories.
type PostStore interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*Post, error)
	Count(ctx context.Context) (int, error)
	// Update saves the scalar fields of post. When replaceCategories is
	// set the category links are replaced with post.CategoryIDs.
	Update(ctx context.Context, post *Post, replaceCategories bool) (*Post, error)
	// Delete removes the post with its comments, likes and category links
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentStore persists comments. Returned comments carry their author.
type CommentStore interface {
	Create(ctx context.Context, comment *Comment) (*Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
	Update(ctx context.Context, comment *Comment) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LikeStore persists likes
type LikeStore interface {
	Create(ctx context.Context, like *Like) (*Like, error)
	Find(ctx context.Context, postID, userID uuid.UUID) (*Like, error)
	// Delete returns ErrRecordNotFound when no like matched
	Delete(ctx context.Context, postID, userID uuid.UUID) error
	CountByPost(ctx context.Context, postID uuid.UUID) (int, error)
	ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*Like, error)
}

// RepositoryManager exposes all stores
type RepositoryManager interface {
	Validate() error
	Users() UserStore
	Categories() CategoryStore
	Posts() PostStore
	Comments() CommentStore
	Likes() LikeStore
}

// ImageUpload is an image received from a client
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ImageStore saves post images and hands back the public URL
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (string, error)
	Remove(ctx context.Context, url string) error
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// DefaultLogger writes prefixed lines to stdout
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] BLOG "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] BLOG "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] BLOG "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] BLOG "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
