package blog

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventUserRegistered  ActivityEventType = "user.registered"
	ActivityEventLoginSuccess    ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure    ActivityEventType = "auth.login.failure"
	ActivityEventCategoryCreated ActivityEventType = "category.created"
	ActivityEventCategoryUpdated ActivityEventType = "category.updated"
	ActivityEventCategoryDeleted ActivityEventType = "category.deleted"
	ActivityEventPostCreated     ActivityEventType = "post.created"
	ActivityEventPostUpdated     ActivityEventType = "post.updated"
	ActivityEventPostDeleted     ActivityEventType = "post.deleted"
	ActivityEventCommentCreated  ActivityEventType = "comment.created"
	ActivityEventCommentUpdated  ActivityEventType = "comment.updated"
	ActivityEventCommentDeleted  ActivityEventType = "comment.deleted"
	ActivityEventPostLiked       ActivityEventType = "post.liked"
	ActivityEventPostUnliked     ActivityEventType = "post.unliked"
	ActivityEventOwnershipDenied ActivityEventType = "authz.ownership.denied"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	ActorID    string
	ResourceID string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// activityRecorder is embedded by services to emit events best effort
type activityRecorder struct {
	sink   ActivitySink
	logger Logger
}

func newActivityRecorder() activityRecorder {
	return activityRecorder{sink: noopActivitySink{}, logger: defLogger{}}
}

func (r activityRecorder) emit(ctx context.Context, eventType ActivityEventType, actorID, resourceID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		ActorID:    actorID,
		ResourceID: resourceID,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.sink.Record(ctx, event); err != nil {
		r.logger.Warn("activity sink failed to record %s: %v", eventType, err)
	}
}
