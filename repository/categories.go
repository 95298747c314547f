package repository

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
)

// CategoryStore implements blog.CategoryStore on top of a generic Bun
// repository.
type CategoryStore struct {
	db   *bun.DB
	repo repository.Repository[*blog.Category]
}

var _ blog.CategoryStore = (*CategoryStore)(nil)

func NewCategoryStore(db *bun.DB) *CategoryStore {
	return &CategoryStore{
		db: db,
		repo: repository.NewRepository[*blog.Category](db, repository.ModelHandlers[*blog.Category]{
			NewRecord: func() *blog.Category { return &blog.Category{} },
			GetID: func(c *blog.Category) uuid.UUID {
				if c == nil {
					return uuid.Nil
				}
				return c.ID
			},
			SetID: func(c *blog.Category, id uuid.UUID) {
				if c != nil {
					c.ID = id
				}
			},
			GetIdentifier: func() string { return "slug" },
		}),
	}
}

func (s *CategoryStore) Create(ctx context.Context, category *blog.Category) (*blog.Category, error) {
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, translate(err)
	}
	return created, nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.Category, error) {
	category, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, translate(err)
	}
	return category, nil
}

// FindByNameOrSlug matches on either field. An empty argument never
// matches since both columns are required.
func (s *CategoryStore) FindByNameOrSlug(ctx context.Context, name, slug string) (*blog.Category, error) {
	category, err := s.repo.Get(ctx,
		repository.SelectBy("name", "=", name),
		repository.SelectOrBy("slug", "=", slug),
	)
	if err != nil {
		return nil, translate(err)
	}
	return category, nil
}

// List returns all categories, newest first
func (s *CategoryStore) List(ctx context.Context) ([]*blog.Category, error) {
	categories, _, err := s.repo.List(ctx,
		repository.Paginate(0, 0),
		orderBy("created_at DESC", "id DESC"),
	)
	if err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

func (s *CategoryStore) Update(ctx context.Context, category *blog.Category) (*blog.Category, error) {
	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// Delete removes the category and its post links in one transaction
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		category, err := s.repo.GetByIDTx(ctx, tx, id.String())
		if err != nil {
			return translate(err)
		}

		_, err = tx.NewDelete().
			Model((*blog.PostCategory)(nil)).
			Where("category_id = ?", category.ID).
			Exec(ctx)
		if err != nil {
			return translate(err)
		}

		return translate(s.repo.DeleteTx(ctx, tx, category))
	})
}
