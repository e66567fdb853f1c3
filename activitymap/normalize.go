package activitymap

import (
	"context"
	"strings"
	"time"

	authflow "github.com/goliatone/go-auth-flow"
)

const (
	// MetadataKeyFromPhase stores the session phase before the transition.
	MetadataKeyFromPhase = "from_phase"
	// MetadataKeyToPhase stores the session phase after the transition.
	MetadataKeyToPhase = "to_phase"
	// MetadataKeyIdentifier stores the identifier submitted with the request.
	MetadataKeyIdentifier = "identifier"
)

const (
	defaultChannel    = "authflow"
	defaultObjectType = "session"
	defaultActorID    = "anonymous"
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
	channel          string
	objectType       string
	actorFallback    string
	objectIDResolver func(authflow.ActivityEvent) string
}

// Normalize converts an authflow.ActivityEvent into a generic normalized shape.
// The actor is the user id, then the submitted identifier, then the fallback.
func Normalize(event authflow.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.UserID),
		strings.TrimSpace(event.Identifier),
		strings.TrimSpace(options.actorFallback),
	)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: strings.TrimSpace(options.objectType),
		ObjectID:   resolveObjectID(event, options.objectIDResolver),
		Channel:    strings.TrimSpace(options.channel),
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// Fields flattens a normalized record into key/value pairs for structured
// loggers.
func (n Normalized) Fields() []any {
	fields := []any{
		"actor_id", n.ActorID,
		"verb", n.Verb,
		"channel", n.Channel,
		"occurred_at", n.OccurredAt,
	}
	if n.ObjectType != "" {
		fields = append(fields, "object_type", n.ObjectType)
	}
	if n.ObjectID != "" {
		fields = append(fields, "object_id", n.ObjectID)
	}
	if len(n.Metadata) > 0 {
		fields = append(fields, "metadata", n.Metadata)
	}
	return fields
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

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithObjectIDResolver overrides object-id extraction from ActivityEvent.
func WithObjectIDResolver(resolver func(authflow.ActivityEvent) string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectIDResolver = resolver
	}
}

// WithActorFallback sets the actor id used when the event has no user id and
// no identifier, e.g. a logout with no session.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// Sink wraps next so every event is normalized before it is handed over.
func Sink(next func(Normalized), opts ...Option) authflow.ActivitySink {
	return authflow.ActivitySinkFunc(func(_ context.Context, event authflow.ActivityEvent) error {
		if next != nil {
			next(Normalize(event, opts...))
		}
		return nil
	})
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func resolveObjectID(event authflow.ActivityEvent, resolver func(authflow.ActivityEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	return strings.TrimSpace(event.UserID)
}

func normalizeMetadata(event authflow.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	set := func(key, value string) {
		if value == "" {
			return
		}
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[key]; !exists {
			metadata[key] = value
		}
	}

	set(MetadataKeyIdentifier, strings.TrimSpace(event.Identifier))
	set(MetadataKeyFromPhase, string(event.FromPhase))
	set(MetadataKeyToPhase, string(event.ToPhase))

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
