package blog

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Store level sentinels. Every store adapter translates its
// driver specific errors into one of these.
var (
	// ErrRecordNotFound is returned when a lookup matches nothing
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord is returned when a unique index rejects a write
	ErrDuplicateRecord = errors.New("duplicate record")
)

const (
	TextCodeValidation        = "VALIDATION_ERROR"
	TextCodeBadRequest        = "BAD_REQUEST"
	TextCodeUnauthorized      = "UNAUTHORIZED"
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeMissingToken      = "MISSING_TOKEN"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeForbidden         = "FORBIDDEN"
	TextCodeNotFound          = "NOT_FOUND"
	TextCodeConflict          = "CONFLICT"
	TextCodeUnsupportedMedia  = "UNSUPPORTED_MEDIA"
	TextCodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	TextCodeInternal          = "INTERNAL_ERROR"
	TextCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

const InternalServerMessage = "Internal Server Error"

var (
	// ErrInvalidCredentials is returned for unknown emails and wrong
	// passwords alike so callers cannot enumerate accounts.
	ErrInvalidCredentials = newAuthError("Invalid credentials", TextCodeInvalidCreds)
	ErrMissingToken       = newAuthError("Authorization header missing or invalid", TextCodeMissingToken)
	ErrTokenExpired       = newAuthError("Invalid or expired token", TextCodeTokenExpired)
	ErrTokenMalformed     = newAuthError("Invalid or expired token", TextCodeTokenMalformed)
	ErrUserNotFound       = newAuthError("User not found", TextCodeUserNotFound)
	ErrIdentityRequired   = newAuthError("Authentication required", TextCodeUnauthorized)

	ErrUserConflict         = NewConflictError("Username or email already in use")
	ErrCategoryNotFound     = NewNotFoundError("Category not found")
	ErrCategoryConflict     = NewConflictError("Category with this name or slug already exists")
	ErrCategoryNameConflict = NewConflictError("Category name already in use")
	ErrCategorySlugConflict = NewConflictError("Category slug already in use")
	ErrPostNotFound         = NewNotFoundError("Post not found")
	ErrPostConflict         = NewConflictError("Post with this slug already exists")
	ErrPostSlugConflict     = NewConflictError("Slug already in use")
	ErrPostForbidden        = NewForbiddenError("Forbidden: Not the post author")
	ErrCommentNotFound      = NewNotFoundError("Comment not found")
	ErrCommentForbidden     = NewForbiddenError("Forbidden: Not the comment owner")
	ErrAlreadyLiked         = NewConflictError("Already liked")
	ErrLikeNotFound         = NewNotFoundError("Like not found")
	ErrEmptyUpdate          = NewValidationError("At least one field must be provided")
	ErrUnsupportedImageType = NewBadRequestError("Only JPEG and PNG images are allowed").WithTextCode(TextCodeUnsupportedMedia)
	ErrImageTooLarge        = NewBadRequestError("Image exceeds the maximum allowed size").WithTextCode(TextCodePayloadTooLarge)

	ErrRateLimited = goerrors.New("Too many requests, please try again later.", goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(TextCodeRateLimitExceeded)
)

func newAuthError(message, textCode string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(textCode)
}

// NewValidationError builds a 400 validation error
func NewValidationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeValidation)
}

// NewBadRequestError builds a 400 bad input error
func NewBadRequestError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeBadRequest)
}

func NewNotFoundError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeNotFound)
}

func NewConflictError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeConflict)
}

func NewForbiddenError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeForbidden)
}

// NewInternalError wraps an unexpected failure. The message is
// for logs only; the HTTP layer never renders it.
func NewInternalError(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeInternal)
}

// NewFieldsError builds a validation error carrying per field
// messages in its metadata.
func NewFieldsError(message string, fields map[string]string) *goerrors.Error {
	meta := make(map[string]any, len(fields))
	for k, v := range fields {
		meta[k] = v
	}
	return NewValidationError(message).WithMetadata(meta)
}

// storeError maps store sentinels into the rich errors the
// service layer surfaces. Anything else is internal.
func storeError(err error, notFound, conflict *goerrors.Error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, ErrDuplicateRecord) && conflict != nil:
		return conflict
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	return NewInternalError(err, fmt.Sprintf("%s failed", op))
}

// IsNotFound reports whether err is a not found error of any kind
func IsNotFound(err error) bool {
	if errors.Is(err, ErrRecordNotFound) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return false
}

// IsConflict reports whether err is a uniqueness violation of any kind
func IsConflict(err error) bool {
	if errors.Is(err, ErrDuplicateRecord) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}

// IsValidation reports whether err is a rich validation error
func IsValidation(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryValidation
	}
	return false
}
