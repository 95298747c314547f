package blog_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blog "github.com/goliatone/go-blog"
)

var testSigningKey = []byte("test-signing-key")

func TestTokenServiceRoundTrip(t *testing.T) {
	service := blog.NewTokenService(testSigningKey, time.Hour, "test-issuer", nil)
	user := &blog.User{ID: uuid.New()}

	token, expiresAt, err := service.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, user.ID.String(), claims.Subject())
	assert.WithinDuration(t, expiresAt, claims.Expires(), time.Second)
	assert.False(t, claims.IssuedAt().IsZero())
}

func TestTokenServiceRejects(t *testing.T) {
	user := &blog.User{ID: uuid.New()}
	validator := blog.NewTokenService(testSigningKey, time.Hour, "test-issuer", nil)

	expired, _, err := blog.NewTokenService(testSigningKey, time.Hour, "test-issuer", nil).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Generate(user)
	require.NoError(t, err)

	otherKey, _, err := blog.NewTokenService([]byte("other-key"), time.Hour, "test-issuer", nil).Generate(user)
	require.NoError(t, err)

	otherIssuer, _, err := blog.NewTokenService(testSigningKey, time.Hour, "someone-else", nil).Generate(user)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &blog.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSigningKey)
	require.NoError(t, err)

	badSubject, err := validator.SignClaims(&blog.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		token    string
		textCode string
	}{
		{name: "expired", token: expired, textCode: blog.TextCodeTokenExpired},
		{name: "wrong key", token: otherKey, textCode: blog.TextCodeTokenMalformed},
		{name: "wrong issuer", token: otherIssuer, textCode: blog.TextCodeTokenMalformed},
		{name: "unexpected algorithm", token: hs512, textCode: blog.TextCodeTokenMalformed},
		{name: "subject is not an id", token: badSubject, textCode: blog.TextCodeTokenMalformed},
		{name: "garbage", token: "abc.def.ghi", textCode: blog.TextCodeTokenMalformed},
		{name: "empty", token: "", textCode: blog.TextCodeTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Validate(tt.token)
			require.Error(t, err)

			var richErr *goerrors.Error
			require.True(t, goerrors.As(err, &richErr))
			assert.Equal(t, 401, richErr.Code)
			assert.Equal(t, tt.textCode, richErr.TextCode)
			assert.Equal(t, "Invalid or expired token", richErr.Message)
		})
	}
}

func TestTokenServiceGenerateRequiresID(t *testing.T) {
	service := blog.NewTokenService(testSigningKey, time.Hour, "", nil)

	_, _, err := service.Generate(nil)
	assert.Error(t, err)

	_, _, err = service.Generate(&blog.User{})
	assert.Error(t, err)
}

func TestTokenServiceDefaultsExpiration(t *testing.T) {
	service := blog.NewTokenService(testSigningKey, 0, "", nil)

	_, expiresAt, err := service.Generate(&blog.User{ID: uuid.New()})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)
}
