package blog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CategoryService manages categories. Categories have no owner, any
// authenticated requester may change them.
type CategoryService struct {
	activityRecorder
	categories CategoryStore
	now        func() time.Time
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{
		activityRecorder: newActivityRecorder(),
		categories:       categories,
		now:              time.Now,
	}
}

func (s *CategoryService) WithLogger(logger Logger) *CategoryService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *CategoryService) WithActivitySink(sink ActivitySink) *CategoryService {
	s.sink = normalizeActivitySink(sink)
	return s
}

// Create adds a category. Name and slug must both be unused.
func (s *CategoryService) Create(ctx context.Context, requester *User, input CategoryInput) (*Category, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	input.normalize()
	if err := validationError(input.Validate()); err != nil {
		return nil, err
	}

	_, err := s.categories.FindByNameOrSlug(ctx, input.Name, input.Slug)
	switch {
	case err == nil:
		return nil, ErrCategoryConflict
	case !errors.Is(err, ErrRecordNotFound):
		return nil, storeError(err, nil, nil, "find category")
	}

	now := s.now().UTC()
	category, err := s.categories.Create(ctx, &Category{
		ID:        uuid.New(),
		Name:      input.Name,
		Slug:      input.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, storeError(err, nil, ErrCategoryConflict, "create category")
	}

	s.emit(ctx, ActivityEventCategoryCreated, requester.ID.String(), category.ID.String(), nil)

	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, ErrCategoryNotFound, nil, "get category")
	}
	return category, nil
}

// List returns every category, newest first
func (s *CategoryService) List(ctx context.Context) ([]*Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, storeError(err, nil, nil, "list categories")
	}
	if categories == nil {
		categories = []*Category{}
	}
	return categories, nil
}

// Update applies patch. Uniqueness is checked only for the fields
// that actually change.
func (s *CategoryService) Update(ctx context.Context, requester *User, id uuid.UUID, patch CategoryPatch) (*Category, error) {
	if requester == nil {
		return nil, ErrIdentityRequired
	}

	patch.normalize()
	if err := validationError(patch.Validate()); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && *patch.Name != category.Name {
		if err := s.ensureUnused(ctx, category.ID, *patch.Name, "", ErrCategoryNameConflict); err != nil {
			return nil, err
		}
		category.Name = *patch.Name
	}

	if patch.Slug != nil && *patch.Slug != category.Slug {
		if err := s.ensureUnused(ctx, category.ID, "", *patch.Slug, ErrCategorySlugConflict); err != nil {
			return nil, err
		}
		category.Slug = *patch.Slug
	}

	category.UpdatedAt = s.now().UTC()

	updated, err := s.categories.Update(ctx, category)
	if err != nil {
		return nil, storeError(err, ErrCategoryNotFound, ErrCategoryConflict, "update category")
	}

	s.emit(ctx, ActivityEventCategoryUpdated, requester.ID.String(), updated.ID.String(), nil)

	return updated, nil
}

// Delete removes the category and detaches it from every post
func (s *CategoryService) Delete(ctx context.Context, requester *User, id uuid.UUID) error {
	if requester == nil {
		return ErrIdentityRequired
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return storeError(err, ErrCategoryNotFound, nil, "delete category")
	}

	s.emit(ctx, ActivityEventCategoryDeleted, requester.ID.String(), id.String(), nil)

	return nil
}

func (s *CategoryService) ensureUnused(ctx context.Context, self uuid.UUID, name, slug string, conflict error) error {
	found, err := s.categories.FindByNameOrSlug(ctx, name, slug)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return nil
	case err != nil:
		return storeError(err, nil, nil, "find category")
	case found.ID != self:
		return conflict
	}
	return nil
}
