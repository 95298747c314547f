package blog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blog "github.com/goliatone/go-blog"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	_, ok := blog.FromContext(ctx)
	assert.False(t, ok)

	_, err := blog.RequesterFromContext(ctx)
	assert.ErrorIs(t, err, blog.ErrIdentityRequired)

	user := &blog.User{ID: uuid.New(), Username: "alice"}
	ctx = blog.WithContext(ctx, user)

	got, ok := blog.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, user, got)

	requester, err := blog.RequesterFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, requester.ID)
}

func TestUserContextNilUser(t *testing.T) {
	ctx := blog.WithContext(context.Background(), nil)

	_, ok := blog.FromContext(ctx)
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := blog.GetClaims(ctx)
	assert.False(t, ok)

	id := uuid.NewString()
	claims := &blog.JWTClaims{UID: id}
	claims.RegisteredClaims.Subject = id

	ctx = blog.WithClaimsContext(ctx, claims)

	got, ok := blog.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got.UserID())
	assert.True(t, got.Expires().IsZero())
	assert.Equal(t, time.Time{}, got.IssuedAt())
}
