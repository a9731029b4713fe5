package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobCompletedEvent announces that a queued memo job reached a terminal
// state. The payload is the job snapshot serialized as JSON, identical in
// shape to what polling the job returns.
type JobCompletedEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// JobID identifies the completed job.
	JobID uuid.UUID `json:"job_id"`

	// Status is the job's terminal status ("succeeded" or "failed").
	Status string `json:"status"`

	// Payload contains the job snapshot serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *JobCompletedEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewJobCompletedEvent creates an event for the given job and snapshot.
func NewJobCompletedEvent(jobID uuid.UUID, status string, snapshot interface{}) (*JobCompletedEvent, error) {
	payloadBytes, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	return &JobCompletedEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		Status:    status,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// Handler defines an interface for components that consume completion
// events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *JobCompletedEvent) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *JobCompletedEvent) error

// HandleEvent calls the wrapped function.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *JobCompletedEvent) error {
	return f(ctx, event)
}

// Emitter defines an interface for components that publish completion
// events. This allows the queue to notify subscribers without direct
// knowledge of them.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *JobCompletedEvent) error
}
