package blog

import "math"

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

var ErrInvalidPagination = NewValidationError("page and limit must be positive integers")

// NewPage checks page and limit and returns an empty page ready to be
// filled. Zero values select the defaults and limit is capped at
// MaxPageLimit. A page whose offset would overflow an int is rejected.
func NewPage[T any](page, limit int) (Page[T], error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if page < 0 || limit < 0 {
		return Page[T]{}, ErrInvalidPagination
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page-1 > math.MaxInt/limit {
		return Page[T]{}, ErrInvalidPagination
	}
	return Page[T]{Page: page, Limit: limit, Items: []T{}}, nil
}
