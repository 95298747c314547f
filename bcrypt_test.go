package blog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	blog "github.com/goliatone/go-blog"
)

func TestBcryptHasher(t *testing.T) {
	hasher := blog.NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.HashPassword(testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, hasher.ComparePasswordAndHash(testPassword, hash))
	assert.ErrorIs(t, hasher.ComparePasswordAndHash("wrong", hash), blog.ErrMismatchedHashAndPassword)

	again, err := hasher.HashPassword(testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "every hash carries its own salt")
}

func TestBcryptHasherEmptyPassword(t *testing.T) {
	_, err := blog.NewBcryptHasher(bcrypt.MinCost).HashPassword("")
	assert.ErrorIs(t, err, blog.ErrNoEmptyString)
}

func TestBcryptHasherCost(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		expected int
	}{
		{name: "zero", cost: 0, expected: bcrypt.DefaultCost},
		{name: "below range", cost: 1, expected: bcrypt.DefaultCost},
		{name: "above range", cost: 40, expected: bcrypt.DefaultCost},
		{name: "in range", cost: 12, expected: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, blog.NewBcryptHasher(tt.cost).Cost())
		})
	}
}

func TestBcryptHasherMalformedHash(t *testing.T) {
	err := blog.NewBcryptHasher(bcrypt.MinCost).ComparePasswordAndHash(testPassword, "not-a-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, blog.ErrMismatchedHashAndPassword)
}

func TestBcryptHasherPasswordTooLong(t *testing.T) {
	_, err := blog.NewBcryptHasher(bcrypt.MinCost).HashPassword(strings.Repeat("x", blog.MaxPasswordBytes+1))
	assert.ErrorIs(t, err, blog.ErrPasswordTooLong)
}
