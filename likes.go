package blog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LikeService tracks which users liked which posts. A user likes a
// post at most once.
type LikeService struct {
	activityRecorder
	likes LikeStore
	posts PostStore
	now   func() time.Time
}

func NewLikeService(likes LikeStore, posts PostStore) *LikeService {
	return &LikeService{
		activityRecorder: newActivityRecorder(),
		likes:            likes,
		posts:            posts,
		now:              time.Now,
	}
}

func (s *LikeService) WithLogger(logger Logger) *LikeService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *LikeService) WithActivitySink(sink ActivitySink) *LikeService {
	s.sink = normalizeActivitySink(sink)
	return s
}

// Like moves the (requester, post) pair from not liked to liked
func (s *LikeService) Like(ctx context.Context, requester *User, postID uuid.UUID) (*Like, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	if err := ensurePostExists(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	_, err := s.likes.Find(ctx, postID, requester.ID)
	switch {
	case err == nil:
		return nil, ErrAlreadyLiked
	case !errors.Is(err, ErrRecordNotFound):
		return nil, storeError(err, nil, nil, "find like")
	}

	like, err := s.likes.Create(ctx, &Like{
		ID:        uuid.New(),
		UserID:    requester.ID,
		PostID:    postID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		// the unique (user, post) index catches concurrent likes
		return nil, storeError(err, nil, ErrAlreadyLiked, "create like")
	}

	s.emit(ctx, ActivityEventPostLiked, requester.ID.String(), postID.String(), nil)

	return like, nil
}

// Unlike moves the (requester, post) pair from liked to not liked
func (s *LikeService) Unlike(ctx context.Context, requester *User, postID uuid.UUID) error {
	if requester == nil {
		return ErrIdentityRequired
	}

	if err := s.likes.Delete(ctx, postID, requester.ID); err != nil {
		return storeError(err, ErrLikeNotFound, nil, "delete like")
	}

	s.emit(ctx, ActivityEventPostUnliked, requester.ID.String(), postID.String(), nil)

	return nil
}

// Count returns how many users liked the post
func (s *LikeService) Count(ctx context.Context, postID uuid.UUID) (int, error) {
	total, err := s.likes.CountByPost(ctx, postID)
	if err != nil {
		return 0, storeError(err, nil, nil, "count likes")
	}
	return total, nil
}

func (s *LikeService) HasLiked(ctx context.Context, requester *User, postID uuid.UUID) (bool, error) {
	if requester == nil {
		return false, ErrIdentityRequired
	}

	_, err := s.likes.Find(ctx, postID, requester.ID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrRecordNotFound):
		return false, nil
	}
	return false, storeError(err, nil, nil, "find like")
}

// ListLikers returns one page of the likes on a post, newest first,
// each carrying the user who liked it.
func (s *LikeService) ListLikers(ctx context.Context, postID uuid.UUID, page, limit int) (*Page[*Like], error) {
	result, err := NewPage[*Like](page, limit)
	if err != nil {
		return nil, err
	}

	if err := ensurePostExists(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.likes.ListByPost(gctx, postID, result.Offset(), result.Limit)
		if err != nil {
			return err
		}
		if items != nil {
			result.Items = items
		}
		return nil
	})
	g.Go(func() error {
		total, err := s.likes.CountByPost(gctx, postID)
		result.Total = total
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, storeError(err, nil, nil, "list likes")
	}

	return &result, nil
}
