package repository

import (
	"errors"

	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
)

// Manager groups the Bun stores behind blog.RepositoryManager
type Manager struct {
	db         *bun.DB
	users      blog.UserStore
	categories blog.CategoryStore
	posts      blog.PostStore
	comments   blog.CommentStore
	likes      blog.LikeStore
}

var _ blog.RepositoryManager = (*Manager)(nil)

// NewRepositoryManager wires every Bun store to db
func NewRepositoryManager(db *bun.DB) *Manager {
	return &Manager{
		db:         db,
		users:      NewUserStore(db),
		categories: NewCategoryStore(db),
		posts:      NewPostStore(db),
		comments:   NewCommentStore(db),
		likes:      NewLikeStore(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.categories == nil {
		return errors.New("repository categories should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	if m.comments == nil {
		return errors.New("repository comments should be initialized")
	}

	if m.likes == nil {
		return errors.New("repository likes should be initialized")
	}

	return nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) Users() blog.UserStore {
	return m.users
}

func (m *Manager) Categories() blog.CategoryStore {
	return m.categories
}

func (m *Manager) Posts() blog.PostStore {
	return m.posts
}

func (m *Manager) Comments() blog.CommentStore {
	return m.comments
}

func (m *Manager) Likes() blog.LikeStore {
	return m.likes
}
