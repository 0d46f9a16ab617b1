package router

import (
	"context"

	"customer-inquiry-be/internal/entity"

	"github.com/google/uuid"
)

// Response is what a pipeline produces for one turn. AssistantText is the
// reply persisted as the assistant turn; ResponseData is the
// pipeline-specific payload of the wire envelope.
type Response struct {
	QueryType     string
	AssistantText string
	ResponseData  map[string]any
}

// SearchRequest is the input to the document-search pipeline.
// SkipConfirmation is set when the user already confirmed a rewrite, so
// the analyzer must not ask again.
type SearchRequest struct {
	SessionId        uuid.UUID
	UserId           uuid.UUID
	Query            string
	SkipConfirmation bool
}

// DataPipeline answers questions about the principal's own records by
// generating, validating and executing a read statement.
type DataPipeline interface {
	Run(ctx context.Context, userId uuid.UUID, question string) (*Response, error)
}

// SearchPipeline retrieves and synthesizes answers from the document
// index. It may end the turn early with a rewrite-confirmation prompt.
type SearchPipeline interface {
	Run(ctx context.Context, req SearchRequest) (*Response, error)
}

// ServicePipeline handles support conversations: categorization plus a
// conversational reply.
type ServicePipeline interface {
	Run(ctx context.Context, userId uuid.UUID, message string, history []entity.ChatMessage) (*Response, error)
}
