package repository

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
)

// CommentStore implements blog.CommentStore on top of a generic Bun
// repository. Comments are returned with their author loaded.
type CommentStore struct {
	repo repository.Repository[*blog.Comment]
}

var _ blog.CommentStore = (*CommentStore)(nil)

func NewCommentStore(db bun.IDB) *CommentStore {
	return &CommentStore{
		repo: repository.NewRepository[*blog.Comment](db, repository.ModelHandlers[*blog.Comment]{
			NewRecord: func() *blog.Comment { return &blog.Comment{} },
			GetID: func(c *blog.Comment) uuid.UUID {
				if c == nil {
					return uuid.Nil
				}
				return c.ID
			},
			SetID: func(c *blog.Comment, id uuid.UUID) {
				if c != nil {
					c.ID = id
				}
			},
			GetIdentifier: func() string { return "id" },
		}),
	}
}

func (s *CommentStore) Create(ctx context.Context, comment *blog.Comment) (*blog.Comment, error) {
	if _, err := s.repo.Create(ctx, comment); err != nil {
		return nil, translate(err)
	}
	return s.GetByID(ctx, comment.ID)
}

func (s *CommentStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.Comment, error) {
	comment, err := s.repo.GetByID(ctx, id.String(), repository.Relation("Author"))
	if err != nil {
		return nil, translate(err)
	}
	comment.Author = comment.Author.Public()
	return comment, nil
}

// ListByPost returns the comments of a post, oldest first
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]*blog.Comment, error) {
	comments, _, err := s.repo.List(ctx,
		repository.Relation("Author"),
		repository.SelectBy("post_id", "=", postID.String()),
		repository.Paginate(0, 0),
		orderBy("created_at ASC", "id ASC"),
	)
	if err != nil {
		return nil, translate(err)
	}
	for _, comment := range comments {
		comment.Author = comment.Author.Public()
	}
	return comments, nil
}

// Update saves the content of an existing comment
func (s *CommentStore) Update(ctx context.Context, comment *blog.Comment) (*blog.Comment, error) {
	_, err := s.repo.Update(ctx, comment, repository.UpdateColumns("content", "updated_at"))
	if err != nil {
		return nil, translate(err)
	}
	return s.GetByID(ctx, comment.ID)
}

func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	comment, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return translate(err)
	}
	return translate(s.repo.Delete(ctx, comment))
}
