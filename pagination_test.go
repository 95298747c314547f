package blog_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blog "github.com/goliatone/go-blog"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		expectPage    int
		expectLimit   int
		expectOffset  int
		expectInvalid bool
	}{
		{name: "defaults", expectPage: 1, expectLimit: 10, expectOffset: 0},
		{name: "second page", page: 2, limit: 10, expectPage: 2, expectLimit: 10, expectOffset: 10},
		{name: "limit capped", page: 3, limit: 500, expectPage: 3, expectLimit: 100, expectOffset: 200},
		{name: "negative page", page: -1, expectInvalid: true},
		{name: "negative limit", limit: -5, expectInvalid: true},
		{name: "offset overflows", page: math.MaxInt, limit: 10, expectInvalid: true},
		{name: "last page before overflow", page: math.MaxInt/100 + 1, limit: 100, expectPage: math.MaxInt/100 + 1, expectLimit: 100, expectOffset: math.MaxInt / 100 * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := blog.NewPage[string](tt.page, tt.limit)
			if tt.expectInvalid {
				assert.ErrorIs(t, err, blog.ErrInvalidPagination)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectPage, page.Page)
			assert.Equal(t, tt.expectLimit, page.Limit)
			assert.Equal(t, tt.expectOffset, page.Offset())
			assert.NotNil(t, page.Items)
		})
	}
}
