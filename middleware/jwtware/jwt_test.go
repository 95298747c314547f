package jwtware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-blog/middleware/jwtware"
)

type testClaims struct {
	jwt.RegisteredClaims
}

func (c *testClaims) Subject() string { return c.RegisteredClaims.Subject }
func (c *testClaims) UserID() string  { return c.RegisteredClaims.Subject }

// hmacValidator validates HS256 tokens signed with key
type hmacValidator struct {
	key []byte
}

func (v hmacValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	claims := &testClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	args := m.Called(raw)
	claims, _ := args.Get(0).(jwtware.AuthClaims)
	return claims, args.Error(1)
}

// By default we set an expiration time 1 hour from now
func generateToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()

	if claims["exp"] == nil {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected/:token?", jwtware.New(cfg), func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(jwtware.AuthClaims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.UserID())
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	key := []byte("test-secret")
	app := newApp(jwtware.Config{TokenValidator: hmacValidator{key: key}})

	valid := generateToken(t, key, jwt.MapClaims{"sub": "12345"})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid bearer", header: "Bearer " + valid, wantStatus: fiber.StatusOK, wantBody: "12345"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: fiber.StatusOK, wantBody: "12345"},
		{name: "missing header", header: "", wantStatus: fiber.StatusUnauthorized, wantBody: jwtware.ErrJWTMissingOrMalformed.Error()},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: fiber.StatusUnauthorized, wantBody: jwtware.ErrJWTMissingOrMalformed.Error()},
		{name: "scheme only", header: "Bearer ", wantStatus: fiber.StatusUnauthorized, wantBody: jwtware.ErrJWTMissingOrMalformed.Error()},
		{name: "garbage token", header: "Bearer not-a-token", wantStatus: fiber.StatusUnauthorized, wantBody: "Invalid or expired token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			status, body := doRequest(t, app, req)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantBody, body)
		})
	}
}

func TestJWTWare_ExpiredToken(t *testing.T) {
	key := []byte("test-secret")

	var seen error
	app := newApp(jwtware.Config{
		TokenValidator: hmacValidator{key: key},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			seen = err
			return c.SendStatus(fiber.StatusUnauthorized)
		},
	})

	expired := generateToken(t, key, jwt.MapClaims{
		"sub": "12345",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)

	status, _ := doRequest(t, app, req)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.ErrorIs(t, seen, jwt.ErrTokenExpired)
}

func TestJWTWare_CustomTokenLookup(t *testing.T) {
	key := []byte("test-secret")
	valid := generateToken(t, key, jwt.MapClaims{"sub": "12345"})

	app := newApp(jwtware.Config{
		TokenValidator: hmacValidator{key: key},
		TokenLookup:    "header:Authorization,query:jwt,param:token,cookie:jwt_cookie",
	})

	tests := []struct {
		name  string
		build func() *http.Request
	}{
		{
			name: "query",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/protected?jwt="+valid, nil)
			},
		},
		{
			name: "param",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/protected/"+valid, nil)
			},
		},
		{
			name: "cookie",
			build: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				req.AddCookie(&http.Cookie{Name: "jwt_cookie", Value: valid})
				return req
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doRequest(t, app, tc.build())
			assert.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, "12345", body)
		})
	}
}

func TestJWTWare_FilterFunction(t *testing.T) {
	validator := &mockValidator{}
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		TokenValidator: validator,
		Filter: func(c *fiber.Ctx) bool {
			// skip the middleware on "/public"
			return c.Path() == "/public"
		},
	}))
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.SendString("open")
	})

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "open", body)
	validator.AssertNotCalled(t, "Validate", mock.Anything)
}

func TestJWTWare_ValidationListenerRejects(t *testing.T) {
	validator := &mockValidator{}
	claims := &testClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "gone"}}
	validator.On("Validate", "abc").Return(claims, nil)

	errGone := errors.New("user gone")
	var listenerCalls int

	app := newApp(jwtware.Config{
		TokenValidator: validator,
		ValidationListeners: []jwtware.ValidationListener{
			nil,
			func(c *fiber.Ctx, got jwtware.AuthClaims) error {
				listenerCalls++
				assert.Equal(t, "gone", got.UserID())
				return errGone
			},
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			assert.ErrorIs(t, err, errGone)
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer abc")

	status, body := doRequest(t, app, req)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "user gone", body)
	assert.Equal(t, 1, listenerCalls)
	validator.AssertExpectations(t)
}

func TestJWTWare_RequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.New(jwtware.Config{})
	})
}

func TestGetExtractors(t *testing.T) {
	assert.Len(t, jwtware.GetExtractors("header:Authorization,query:jwt,bogus"), 2)
	assert.Len(t, jwtware.GetExtractors("cookie:a, param:b"), 2)
}
