package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PostService manages posts. Only the author may change or remove
// a post.
type PostService struct {
	activityRecorder
	posts      PostStore
	categories CategoryStore
	images     ImageStore
	now        func() time.Time
}

func NewPostService(posts PostStore, categories CategoryStore, images ImageStore) *PostService {
	return &PostService{
		activityRecorder: newActivityRecorder(),
		posts:            posts,
		categories:       categories,
		images:           images,
		now:              time.Now,
	}
}

func (s *PostService) WithLogger(logger Logger) *PostService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *PostService) WithActivitySink(sink ActivitySink) *PostService {
	s.sink = normalizeActivitySink(sink)
	return s
}

// Create stores a new post authored by requester
func (s *PostService) Create(ctx context.Context, requester *User, input PostInput) (*Post, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	input.normalize()
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	categoryIDs, err := s.resolveCategories(ctx, input.Categories)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlugUnused(ctx, uuid.Nil, input.Slug, ErrPostConflict); err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post, err := s.posts.Create(ctx, &Post{
		ID:          uuid.New(),
		Title:       input.Title,
		Slug:        input.Slug,
		Content:     input.Content,
		ImageURL:    imageURL,
		AuthorID:    requester.ID,
		CategoryIDs: categoryIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.removeImage(ctx, imageURL)
		return nil, storeError(err, nil, ErrPostConflict, "create post")
	}

	s.emit(ctx, ActivityEventPostCreated, requester.ID.String(), post.ID.String(), map[string]any{"slug": post.Slug})

	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrPostNotFound, nil, "get post")
	}
	return post, nil
}

// List returns one page of posts, newest first. The page and the total
// count are read concurrently.
func (s *PostService) List(ctx context.Context, page, limit int) (*Page[*Post], error) {
	result, err := NewPage[*Post](page, limit)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.posts.List(gctx, result.Offset(), result.Limit)
		if err != nil {
			return err
		}
		if items != nil {
			result.Items = items
		}
		return nil
	})
	g.Go(func() error {
		total, err := s.posts.Count(gctx)
		result.Total = total
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, storeError(err, nil, nil, "list posts")
	}

	return &result, nil
}

// Update applies patch to a post owned by requester
func (s *PostService) Update(ctx context.Context, requester *User, id uuid.UUID, patch PostPatch) (*Post, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	patch.normalize()
	if err := validationError(patch.Validate()); err != nil {
		return nil, err
	}

	post, err := s.authored(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil && *patch.Slug != post.Slug {
		if err := s.ensureSlugUnused(ctx, post.ID, *patch.Slug, ErrPostSlugConflict); err != nil {
			return nil, err
		}
		post.Slug = *patch.Slug
	}

	replaceCategories := patch.Categories != nil
	if replaceCategories {
		ids, err := s.resolveCategories(ctx, *patch.Categories)
		if err != nil {
			return nil, err
		}
		post.CategoryIDs = ids
	}

	if patch.Title != nil {
		post.Title = *patch.Title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}

	previousImage := post.ImageURL
	newImage, err := s.saveImage(ctx, patch.Image)
	if err != nil {
		return nil, err
	}
	if newImage != "" {
		post.ImageURL = newImage
	}

	post.UpdatedAt = s.now().UTC()

	updated, err := s.posts.Update(ctx, post, replaceCategories)
	if err != nil {
		s.removeImage(ctx, newImage)
		return nil, storeError(err, ErrPostNotFound, ErrPostSlugConflict, "update post")
	}

	if newImage != "" && previousImage != "" && previousImage != newImage {
		s.removeImage(ctx, previousImage)
	}

	s.emit(ctx, ActivityEventPostUpdated, requester.ID.String(), updated.ID.String(), nil)

	return updated, nil
}

// Delete removes a post owned by requester together with its
// comments, likes and image.
func (s *PostService) Delete(ctx context.Context, requester *User, id uuid.UUID) error {
	if requester == nil {
		return ErrIdentityRequired
	}

	post, err := s.authored(ctx, requester, id)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return storeError(err, ErrPostNotFound, nil, "delete post")
	}

	s.removeImage(ctx, post.ImageURL)
	s.emit(ctx, ActivityEventPostDeleted, requester.ID.String(), post.ID.String(), nil)

	return nil
}

func (s *PostService) authored(ctx context.Context, requester *User, id uuid.UUID) (*Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(requester.ID) {
		s.emit(ctx, ActivityEventOwnershipDenied, requester.ID.String(), post.ID.String(), map[string]any{"resource": "post"})
		return nil, ErrPostForbidden
	}
	return post, nil
}

func (s *PostService) ensureSlugUnused(ctx context.Context, self uuid.UUID, slug string, conflict error) error {
	found, err := s.posts.GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return nil
	case err != nil:
		return storeError(err, nil, nil, "find post by slug")
	case found.ID != self:
		return conflict
	}
	return nil
}

// resolveCategories parses raw ids and checks each one refers to a
// stored category. Duplicates are dropped, order is kept.
func (s *PostService) resolveCategories(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]struct{}, len(raw))

	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, NewBadRequestError(fmt.Sprintf("Invalid category ID: %s", value))
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, id := range ids {
		if _, err := s.categories.GetByID(ctx, id); err != nil {
			return nil, storeError(err, NewBadRequestError(fmt.Sprintf("Category not found: %s", id)), nil, "get category")
		}
	}

	return ids, nil
}

func (s *PostService) saveImage(ctx context.Context, upload *ImageUpload) (string, error) {
	if upload == nil {
		return "", nil
	}
	if s.images == nil {
		return "", NewBadRequestError("Image uploads are not enabled")
	}
	return s.images.Save(ctx, *upload)
}

func (s *PostService) removeImage(ctx context.Context, url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(ctx, url); err != nil {
		s.logger.Warn("unable to remove image %s: %v", url, err)
	}
}
