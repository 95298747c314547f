package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
)

// PostStore implements blog.PostStore using Bun. Posts are always
// returned with their author and categories loaded.
type PostStore struct {
	db *bun.DB
}

var _ blog.PostStore = (*PostStore)(nil)

func NewPostStore(db *bun.DB) *PostStore {
	return &PostStore{db: db}
}

// Create inserts the post and its category links in one transaction
func (s *PostStore) Create(ctx context.Context, post *blog.Post) (*blog.Post, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(post).Exec(ctx); err != nil {
			return translate(err)
		}
		return s.linkCategoriesTx(ctx, tx, post.ID, post.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, post.ID)
}

func (s *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	return s.findOne(ctx, "pst.id = ?", id)
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	return s.findOne(ctx, "pst.slug = ?", slug)
}

func (s *PostStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*blog.Post)(nil)).
		Where("pst.id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, translate(err)
	}
	return ok, nil
}

// List returns posts newest first
func (s *PostStore) List(ctx context.Context, offset, limit int) ([]*blog.Post, error) {
	posts := make([]*blog.Post, 0, limit)
	err := s.db.NewSelect().
		Model(&posts).
		Relation("Author").
		Relation("Categories").
		OrderExpr("pst.created_at DESC").
		OrderExpr("pst.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	for _, post := range posts {
		present(post)
	}
	return posts, nil
}

func (s *PostStore) Count(ctx context.Context) (int, error) {
	total, err := s.db.NewSelect().Model((*blog.Post)(nil)).Count(ctx)
	if err != nil {
		return 0, translate(err)
	}
	return total, nil
}

func (s *PostStore) Update(ctx context.Context, post *blog.Post, replaceCategories bool) (*blog.Post, error) {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(post).
			Column("title", "slug", "content", "image_url", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return translate(err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}

		if !replaceCategories {
			return nil
		}

		_, err = tx.NewDelete().
			Model((*blog.PostCategory)(nil)).
			Where("post_id = ?", post.ID).
			Exec(ctx)
		if err != nil {
			return translate(err)
		}
		return s.linkCategoriesTx(ctx, tx, post.ID, post.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, post.ID)
}

// Delete removes the post together with its likes, comments and
// category links
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.DeleteTx(ctx, tx, id)
	})
}

func (s *PostStore) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	dependents := []any{
		(*blog.Like)(nil),
		(*blog.Comment)(nil),
		(*blog.PostCategory)(nil),
	}
	for _, model := range dependents {
		if _, err := tx.NewDelete().Model(model).Where("post_id = ?", id).Exec(ctx); err != nil {
			return translate(err)
		}
	}

	res, err := tx.NewDelete().
		Model((*blog.Post)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return expectAffected(res)
}

func (s *PostStore) linkCategoriesTx(ctx context.Context, tx bun.IDB, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	links := make([]*blog.PostCategory, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		links = append(links, &blog.PostCategory{PostID: postID, CategoryID: categoryID})
	}

	if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
		return translate(err)
	}
	return nil
}

func (s *PostStore) findOne(ctx context.Context, where string, arg any) (*blog.Post, error) {
	post := new(blog.Post)
	err := s.db.NewSelect().
		Model(post).
		Relation("Author").
		Relation("Categories").
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return present(post), nil
}

// present strips the author's credentials and orders categories by
// name so responses are stable
func present(post *blog.Post) *blog.Post {
	post.Author = post.Author.Public()
	if post.Categories == nil {
		post.Categories = []*blog.Category{}
	}
	sort.Slice(post.Categories, func(i, j int) bool {
		return post.Categories[i].Name < post.Categories[j].Name
	})
	post.CategoryIDs = make([]uuid.UUID, 0, len(post.Categories))
	for _, category := range post.Categories {
		post.CategoryIDs = append(post.CategoryIDs, category.ID)
	}
	return post
}
