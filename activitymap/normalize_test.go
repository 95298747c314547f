package activitymap_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/activitymap"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := blog.ActivityEvent{
		EventType:  blog.ActivityEventPostCreated,
		ActorID:    "user-42",
		ResourceID: "post-100",
		Metadata:   map[string]any{"slug": "hello"},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	assert.Equal(t, "user-42", out.ActorID)
	assert.Equal(t, "post.created", out.Verb)
	assert.Equal(t, "post", out.ObjectType)
	assert.Equal(t, "post-100", out.ObjectID)
	assert.Equal(t, "blog", out.Channel)
	assert.True(t, out.OccurredAt.Equal(ts))
	assert.Equal(t, "hello", out.Metadata["slug"])

	out.Metadata["slug"] = "changed"
	assert.Equal(t, "hello", event.Metadata["slug"], "metadata must be copied")
}

func TestNormalizeObjectTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event    blog.ActivityEvent
		expected string
	}{
		{blog.ActivityEvent{EventType: blog.ActivityEventLoginFailure}, "user"},
		{blog.ActivityEvent{EventType: blog.ActivityEventUserRegistered}, "user"},
		{blog.ActivityEvent{EventType: blog.ActivityEventCategoryDeleted}, "category"},
		{blog.ActivityEvent{EventType: blog.ActivityEventPostLiked}, "post"},
		{blog.ActivityEvent{EventType: blog.ActivityEventCommentUpdated}, "comment"},
		{
			blog.ActivityEvent{
				EventType: blog.ActivityEventOwnershipDenied,
				Metadata:  map[string]any{activitymap.MetadataKeyResource: "comment"},
			},
			"comment",
		},
		{blog.ActivityEvent{EventType: blog.ActivityEventOwnershipDenied}, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.event.EventType), func(t *testing.T) {
			assert.Equal(t, tt.expected, activitymap.Normalize(tt.event).ObjectType)
		})
	}
}

func TestNormalizeOptions(t *testing.T) {
	t.Parallel()

	out := activitymap.Normalize(
		blog.ActivityEvent{EventType: blog.ActivityEventLoginFailure},
		activitymap.WithDefaultChannel(" audit "),
		activitymap.WithActorFallback("system"),
		nil,
	)

	assert.Equal(t, "audit", out.Channel)
	assert.Equal(t, "system", out.ActorID)
	assert.False(t, out.OccurredAt.IsZero())
	assert.Nil(t, out.Metadata)
}

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Debug(format string, args ...any) {}
func (l *captureLogger) Warn(format string, args ...any)  {}
func (l *captureLogger) Error(format string, args ...any) {}
func (l *captureLogger) Info(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestLoggerSinkWritesJSON(t *testing.T) {
	t.Parallel()

	logger := &captureLogger{}
	sink := activitymap.NewLoggerSink(logger)

	err := sink.Record(context.Background(), blog.ActivityEvent{
		EventType:  blog.ActivityEventPostLiked,
		ActorID:    "user-1",
		ResourceID: "post-1",
	})
	require.NoError(t, err)
	require.Len(t, logger.lines, 1)
	assert.Contains(t, logger.lines[0], `"verb":"post.liked"`)
	assert.Contains(t, logger.lines[0], `"object_type":"post"`)
}
