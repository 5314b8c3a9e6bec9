package activitymap

import (
	"strings"
	"time"

	posts "github.com/goliatone/go-posts"
)

const (
	// MetadataKeyPostID stores the parent post when the object is a comment.
	MetadataKeyPostID = "post_id"
)

const (
	defaultChannel    = "posts"
	defaultActorID    = "anonymous"
	objectTypePost    = "post"
	objectTypeComment = "comment"
	objectTypeSession = "session"
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

// Normalize converts a posts.ActivityEvent into a generic normalized shape.
// Comment events point at the comment and keep the post id in metadata.
func Normalize(event posts.ActivityEvent, opts ...Option) Normalized {
	options := normalizeOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.ActorID),
		strings.TrimSpace(options.actorFallback),
	)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	objectType, objectID := resolveObject(event)

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event, objectType),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithActorFallback sets the actor id used when the event has none.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

func resolveObject(event posts.ActivityEvent) (string, string) {
	switch {
	case strings.TrimSpace(event.CommentID) != "":
		return objectTypeComment, strings.TrimSpace(event.CommentID)
	case strings.TrimSpace(event.PostID) != "":
		return objectTypePost, strings.TrimSpace(event.PostID)
	case strings.HasPrefix(string(event.EventType), "auth."):
		return objectTypeSession, strings.TrimSpace(event.ActorID)
	}
	return "", ""
}

func normalizeMetadata(event posts.ActivityEvent, objectType string) map[string]any {
	metadata := cloneMap(event.Metadata)

	if objectType == objectTypeComment && event.PostID != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyPostID]; !exists {
			metadata[MetadataKeyPostID] = event.PostID
		}
	}

	return metadata
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
