package repository

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
)

// LikeStore implements blog.LikeStore on top of a generic Bun
// repository. The likes_user_post unique index backs the one like per
// user and post rule.
type LikeStore struct {
	repo repository.Repository[*blog.Like]
}

var _ blog.LikeStore = (*LikeStore)(nil)

func NewLikeStore(db bun.IDB) *LikeStore {
	return &LikeStore{
		repo: repository.NewRepository[*blog.Like](db, repository.ModelHandlers[*blog.Like]{
			NewRecord: func() *blog.Like { return &blog.Like{} },
			GetID: func(l *blog.Like) uuid.UUID {
				if l == nil {
					return uuid.Nil
				}
				return l.ID
			},
			SetID: func(l *blog.Like, id uuid.UUID) {
				if l != nil {
					l.ID = id
				}
			},
			GetIdentifier: func() string { return "id" },
		}),
	}
}

func (s *LikeStore) Create(ctx context.Context, like *blog.Like) (*blog.Like, error) {
	created, err := s.repo.Create(ctx, like)
	if err != nil {
		return nil, translate(err)
	}
	return created, nil
}

func (s *LikeStore) Find(ctx context.Context, postID, userID uuid.UUID) (*blog.Like, error) {
	like, err := s.repo.Get(ctx, byPair(postID, userID)...)
	if err != nil {
		return nil, translate(err)
	}
	return like, nil
}

func (s *LikeStore) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	like, err := s.Find(ctx, postID, userID)
	if err != nil {
		return err
	}
	return translate(s.repo.Delete(ctx, like))
}

func (s *LikeStore) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	_, total, err := s.repo.List(ctx,
		repository.SelectBy("post_id", "=", postID.String()),
		repository.SelectColumns("id"),
		repository.Paginate(1, 0),
	)
	if err != nil {
		return 0, translate(err)
	}
	return total, nil
}

// ListByPost returns the likes of a post with their users, most recent
// first
func (s *LikeStore) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*blog.Like, error) {
	likes, _, err := s.repo.List(ctx,
		repository.Relation("User"),
		repository.SelectBy("post_id", "=", postID.String()),
		repository.Paginate(limit, offset),
		orderBy("created_at DESC", "id DESC"),
	)
	if err != nil {
		return nil, translate(err)
	}
	for _, like := range likes {
		like.User = like.User.Public()
	}
	return likes, nil
}

func byPair(postID, userID uuid.UUID) []repository.SelectCriteria {
	return []repository.SelectCriteria{
		repository.SelectBy("post_id", "=", postID.String()),
		repository.SelectBy("user_id", "=", userID.String()),
	}
}
