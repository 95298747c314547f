package mongostore

import (
	"time"

	"github.com/google/uuid"

	blog "github.com/goliatone/go-blog"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func newUserDoc(u *blog.User) userDoc {
	return userDoc{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) model() *blog.User {
	return &blog.User{
		ID:           parseID(d.ID),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type categoryDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Slug      string    `bson:"slug"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newCategoryDoc(c *blog.Category) categoryDoc {
	return categoryDoc{
		ID:        c.ID.String(),
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d categoryDoc) model() *blog.Category {
	return &blog.Category{
		ID:        parseID(d.ID),
		Name:      d.Name,
		Slug:      d.Slug,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// postDoc embeds the category ids in place of a join collection
type postDoc struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Slug        string    `bson:"slug"`
	Content     string    `bson:"content"`
	ImageURL    string    `bson:"image_url,omitempty"`
	AuthorID    string    `bson:"author_id"`
	CategoryIDs []string  `bson:"category_ids"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newPostDoc(p *blog.Post) postDoc {
	return postDoc{
		ID:          p.ID.String(),
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		ImageURL:    p.ImageURL,
		AuthorID:    p.AuthorID.String(),
		CategoryIDs: idStrings(p.CategoryIDs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d postDoc) model() *blog.Post {
	ids := make([]uuid.UUID, 0, len(d.CategoryIDs))
	for _, id := range d.CategoryIDs {
		ids = append(ids, parseID(id))
	}
	return &blog.Post{
		ID:          parseID(d.ID),
		Title:       d.Title,
		Slug:        d.Slug,
		Content:     d.Content,
		ImageURL:    d.ImageURL,
		AuthorID:    parseID(d.AuthorID),
		CategoryIDs: ids,
		Categories:  []*blog.Category{},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	AuthorID  string    `bson:"author_id"`
	PostID    string    `bson:"post_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newCommentDoc(c *blog.Comment) commentDoc {
	return commentDoc{
		ID:        c.ID.String(),
		Content:   c.Content,
		AuthorID:  c.AuthorID.String(),
		PostID:    c.PostID.String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d commentDoc) model() *blog.Comment {
	return &blog.Comment{
		ID:        parseID(d.ID),
		Content:   d.Content,
		AuthorID:  parseID(d.AuthorID),
		PostID:    parseID(d.PostID),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type likeDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	PostID    string    `bson:"post_id"`
	CreatedAt time.Time `bson:"created_at"`
}

func newLikeDoc(l *blog.Like) likeDoc {
	return likeDoc{
		ID:        l.ID.String(),
		UserID:    l.UserID.String(),
		PostID:    l.PostID.String(),
		CreatedAt: l.CreatedAt,
	}
}

func (d likeDoc) model() *blog.Like {
	return &blog.Like{
		ID:        parseID(d.ID),
		UserID:    parseID(d.UserID),
		PostID:    parseID(d.PostID),
		CreatedAt: d.CreatedAt,
	}
}

// parseID yields uuid.Nil for ids this package did not write
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
