package repository

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	blog "github.com/goliatone/go-blog"
)

// UserStore implements blog.UserStore on top of a generic Bun
// repository. Lookups by a non UUID identifier match the email column.
type UserStore struct {
	repo repository.Repository[*blog.User]
}

var _ blog.UserStore = (*UserStore)(nil)

func NewUserStore(db bun.IDB) *UserStore {
	return &UserStore{
		repo: repository.NewRepository[*blog.User](db, repository.ModelHandlers[*blog.User]{
			NewRecord: func() *blog.User { return &blog.User{} },
			GetID: func(u *blog.User) uuid.UUID {
				if u == nil {
					return uuid.Nil
				}
				return u.ID
			},
			SetID: func(u *blog.User, id uuid.UUID) {
				if u != nil {
					u.ID = id
				}
			},
			GetIdentifier: func() string { return "email" },
		}),
	}
}

func (s *UserStore) Create(ctx context.Context, user *blog.User) (*blog.User, error) {
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, translate(err)
	}
	return created, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*blog.User, error) {
	user, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*blog.User, error) {
	user, err := s.repo.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*blog.User, error) {
	user, err := s.repo.Get(ctx,
		repository.SelectBy("username", "=", username),
		repository.SelectOrBy("email", "=", email),
	)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}
