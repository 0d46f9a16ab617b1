package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// TurnCompletedEvent records a resolved conversation turn for downstream
// analytics. Published after the reply is persisted.
type TurnCompletedEvent struct {
	SessionId  uuid.UUID
	UserId     uuid.UUID
	QueryType  string
	Confidence string
	DurationMs int64
	OccurredAt time.Time
}

func NewTurnCompletedEvent(sessionId, userId uuid.UUID, queryType, confidence string, duration time.Duration) TurnCompletedEvent {
	return TurnCompletedEvent{
		SessionId:  sessionId,
		UserId:     userId,
		QueryType:  queryType,
		Confidence: confidence,
		DurationMs: duration.Milliseconds(),
		OccurredAt: time.Now(),
	}
}

func (e TurnCompletedEvent) EventType() string {
	return "TURN_COMPLETED"
}

func (e TurnCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionId.String(),
		"user_id":     e.UserId.String(),
		"query_type":  e.QueryType,
		"confidence":  e.Confidence,
		"duration_ms": e.DurationMs,
		"occurred_at": e.OccurredAt,
	}
}

func (e TurnCompletedEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// QueryRejectedEvent records a generated statement that failed safety
// validation. Useful for tuning the generator prompt.
type QueryRejectedEvent struct {
	SessionId  uuid.UUID
	UserId     uuid.UUID
	Issues     []string
	OccurredAt time.Time
}

func NewQueryRejectedEvent(sessionId, userId uuid.UUID, issues []string) QueryRejectedEvent {
	return QueryRejectedEvent{
		SessionId:  sessionId,
		UserId:     userId,
		Issues:     issues,
		OccurredAt: time.Now(),
	}
}

func (e QueryRejectedEvent) EventType() string {
	return "QUERY_REJECTED"
}

func (e QueryRejectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionId.String(),
		"user_id":     e.UserId.String(),
		"issues":      e.Issues,
		"occurred_at": e.OccurredAt,
	}
}

func (e QueryRejectedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
