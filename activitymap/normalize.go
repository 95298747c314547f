package activitymap

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	blog "github.com/goliatone/go-blog"
)

const (
	// MetadataKeyResource stores the resource an ownership check refused
	MetadataKeyResource = "resource"
)

const (
	defaultChannel = "blog"
	defaultActorID = "anonymous"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	actorFallback string
}

// Normalize converts a blog.ActivityEvent into the generic shape. The
// object type is taken from the event, so "post.liked" and
// "authz.ownership.denied" on a comment both name their target.
func Normalize(event blog.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    firstNonEmpty(strings.TrimSpace(event.ActorID), options.actorFallback),
		Verb:       string(event.EventType),
		ObjectType: objectType(event),
		ObjectID:   strings.TrimSpace(event.ResourceID),
		Channel:    options.channel,
		Metadata:   cloneMap(event.Metadata),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used for anonymous events such
// as a failed login for an unknown email.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// NewLoggerSink returns an ActivitySink that writes each normalized
// event as one JSON line at info level
func NewLoggerSink(logger blog.Logger, opts ...Option) blog.ActivitySink {
	if logger == nil {
		logger = blog.DefaultLogger()
	}
	return blog.ActivitySinkFunc(func(_ context.Context, event blog.ActivityEvent) error {
		raw, err := json.Marshal(Normalize(event, opts...))
		if err != nil {
			return err
		}
		logger.Info("activity %s", raw)
		return nil
	})
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
	}
}

func objectType(event blog.ActivityEvent) string {
	if event.EventType == blog.ActivityEventOwnershipDenied {
		if resource, ok := event.Metadata[MetadataKeyResource].(string); ok {
			return resource
		}
	}

	verb := string(event.EventType)
	switch {
	case strings.HasPrefix(verb, "auth."), strings.HasPrefix(verb, "user."):
		return "user"
	case strings.HasPrefix(verb, "authz."):
		return ""
	}

	if i := strings.IndexByte(verb, '.'); i > 0 {
		return verb[:i]
	}
	return ""
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
