package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CommentService manages comments. A comment can only be edited or
// removed by the user who wrote it.
type CommentService struct {
	activityRecorder
	comments CommentStore
	posts    PostStore
	now      func() time.Time
}

func NewCommentService(comments CommentStore, posts PostStore) *CommentService {
	return &CommentService{
		activityRecorder: newActivityRecorder(),
		comments:         comments,
		posts:            posts,
		now:              time.Now,
	}
}

func (s *CommentService) WithLogger(logger Logger) *CommentService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *CommentService) WithActivitySink(sink ActivitySink) *CommentService {
	s.sink = normalizeActivitySink(sink)
	return s
}

func (s *CommentService) Create(ctx context.Context, requester *User, postID uuid.UUID, input CommentInput) (*Comment, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	input.normalize()
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	if err := ensurePostExists(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	comment, err := s.comments.Create(ctx, &Comment{
		ID:        uuid.New(),
		Content:   input.Content,
		AuthorID:  requester.ID,
		PostID:    postID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, storeError(err, ErrPostNotFound, nil, "create comment")
	}

	s.emit(ctx, ActivityEventCommentCreated, requester.ID.String(), comment.ID.String(), map[string]any{"post_id": postID.String()})

	return comment, nil
}

// ListByPost returns the comments on a post, oldest first
func (s *CommentService) ListByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	if err := ensurePostExists(ctx, s.posts, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, nil, nil, "list comments")
	}
	if comments == nil {
		comments = []*Comment{}
	}
	return comments, nil
}

func (s *CommentService) Update(ctx context.Context, requester *User, commentID uuid.UUID, input CommentInput) (*Comment, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	input.normalize()
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	comment, err := s.owned(ctx, requester, commentID)
	if err != nil {
		return nil, err
	}

	comment.Content = input.Content
	comment.UpdatedAt = s.now().UTC()

	updated, err := s.comments.Update(ctx, comment)
	if err != nil {
		return nil, storeError(err, ErrCommentNotFound, nil, "update comment")
	}

	s.emit(ctx, ActivityEventCommentUpdated, requester.ID.String(), updated.ID.String(), nil)

	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, requester *User, commentID uuid.UUID) error {
	if requester == nil {
		return ErrIdentityRequired
	}

	comment, err := s.owned(ctx, requester, commentID)
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return storeError(err, ErrCommentNotFound, nil, "delete comment")
	}

	s.emit(ctx, ActivityEventCommentDeleted, requester.ID.String(), comment.ID.String(), nil)

	return nil
}

// owned loads a comment and checks requester wrote it. Ownership is
// a plain identifier comparison.
func (s *CommentService) owned(ctx context.Context, requester *User, commentID uuid.UUID) (*Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, storeError(err, ErrCommentNotFound, nil, "get comment")
	}
	if !comment.IsAuthoredBy(requester.ID) {
		s.emit(ctx, ActivityEventOwnershipDenied, requester.ID.String(), comment.ID.String(), map[string]any{"resource": "comment"})
		return nil, ErrCommentForbidden
	}
	return comment, nil
}

func ensurePostExists(ctx context.Context, posts PostStore, postID uuid.UUID) error {
	ok, err := posts.Exists(ctx, postID)
	if err != nil {
		return storeError(err, ErrPostNotFound, nil, "check post")
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}
