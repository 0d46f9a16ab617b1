package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	MessageCount int64      `json:"message_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Message       string    `json:"message" validate:"required"`
}

// SendChatResponse is the wire envelope for a completed turn. ResponseData
// carries the pipeline-specific payload keyed by query type: "response" for
// conversational answers, "results"/"row_count" for data queries, "question"
// for clarifications, "rewritten_query"/"reason" for rewrite confirmations.
type SendChatResponse struct {
	QueryType       string         `json:"query_type"`
	OriginalMessage string         `json:"original_message"`
	ResponseData    map[string]any `json:"response_data"`
	SessionId       uuid.UUID      `json:"session_id"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}

type UpdateSessionTitleRequest struct {
	ChatSessionId uuid.UUID `json:"-"`
	Title         string    `json:"title" validate:"required,max=100"`
}
