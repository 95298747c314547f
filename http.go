package blog

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-blog/middleware/jwtware"
)

// Envelope wraps every successful response
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// PageEnvelope wraps paginated responses
type PageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Total   int    `json:"total"`
}

// ErrorEnvelope is the body of every failed response
type ErrorEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Errors  map[string]any `json:"errors,omitempty"`
}

// SendSuccess writes data inside the success envelope
func SendSuccess(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendPage writes one page of T inside the paginated envelope
func SendPage[T any](c *fiber.Ctx, message string, page *Page[T]) error {
	return c.Status(fiber.StatusOK).JSON(PageEnvelope{
		Success: true,
		Message: message,
		Data:    page.Items,
		Page:    page.Page,
		Limit:   page.Limit,
		Total:   page.Total,
	})
}

// NewErrorHandler renders rich client errors verbatim and hides
// everything else behind a generic 500.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && isClientError(richErr) {
			body := ErrorEnvelope{Message: richErr.Message}
			if richErr.Category == goerrors.CategoryValidation && len(richErr.Metadata) > 0 {
				body.Errors = richErr.Metadata
			}
			return c.Status(richErr.Code).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
			return c.Status(fiberErr.Code).JSON(ErrorEnvelope{Message: fiberErr.Message})
		}

		logger.Error("%s %s failed: %v", c.Method(), c.OriginalURL(), err)

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorEnvelope{
			Message: InternalServerMessage,
		})
	}
}

func isClientError(err *goerrors.Error) bool {
	if err == nil || err.Category == goerrors.CategoryInternal {
		return false
	}
	return err.Code >= fiber.StatusBadRequest && err.Code < fiber.StatusInternalServerError
}

// NotFoundHandler answers any route nobody else matched
func NotFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorEnvelope{Message: "Route not found"})
}

// RequireAuth protects a route with a bearer token. The user behind
// the token is loaded and stored in the request context and in the
// fiber locals; use FromContext or UserFromLocals to read it.
func RequireAuth(auth *AuthService, cfg Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{auth.TokenService()},
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if authClaims, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, authClaims)
			}
			return ctx
		},
		ValidationListeners: []jwtware.ValidationListener{
			func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
				id, err := uuid.Parse(claims.UserID())
				if err != nil {
					return ErrTokenMalformed
				}
				user, err := auth.ResolveUser(c.UserContext(), id)
				if err != nil {
					return err
				}
				c.Locals(userLocalsKey, user)
				c.SetUserContext(WithContext(c.UserContext(), user))
				return nil
			},
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return ErrMissingToken
			}
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return ErrTokenMalformed
		},
	})
}

const userLocalsKey = "current_user"

// UserFromLocals returns the user RequireAuth attached to c
func UserFromLocals(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(userLocalsKey).(*User)
	return user, ok && user != nil
}

// tokenValidatorAdapter lets the middleware use our TokenService
// without importing this package.
type tokenValidatorAdapter struct {
	tokens TokenService
}

func (a tokenValidatorAdapter) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := a.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
