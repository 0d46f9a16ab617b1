package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time

	// At most one of these is set at a time; both are cleared once the next
	// turn consumes them.
	PendingRewrite       *PendingRewrite
	PendingClarification *PendingClarification
}

// PendingRewrite remembers a suggested grammar correction awaiting the user's
// confirmation on the next turn.
type PendingRewrite struct {
	OriginalQuery  string `json:"original_query"`
	RewrittenQuery string `json:"rewritten_query"`
	Reason         string `json:"reason"`
}

// PendingClarification remembers an ambiguous turn the classifier could not
// route; the next turn is re-classified with this as extra context.
type PendingClarification struct {
	Question          string `json:"question"`
	ReasoningSnapshot string `json:"reasoning_snapshot"`
}
