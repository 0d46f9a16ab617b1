package classify

import (
	"context"

	"customer-inquiry-be/internal/entity"
)

// Kind is the closed set of routing outcomes. Every dispatch site must
// handle all of them.
type Kind string

const (
	KindDataQuery          Kind = "sql_query"
	KindDocumentSearch     Kind = "document_search"
	KindServiceRequest     Kind = "customer_service"
	KindNeedsClarification Kind = "clarification_needed"
	KindUnsupported        Kind = "unsupported"
)

// Confidence is advisory only. It is passed through to clients and never
// changes routing behavior.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Decision is produced fresh for every turn and never persisted beyond
// it, except indirectly through a pending clarification.
type Decision struct {
	Kind                  Kind
	Confidence            Confidence
	Reasoning             string
	ClarificationQuestion string
}

// Classifier routes an incoming message to one of the pipelines. When a
// clarification is outstanding, pendingContext carries the earlier
// question so the decision can resolve against the user's answer.
type Classifier interface {
	Classify(ctx context.Context, message string, recentHistory []entity.ChatMessage, pendingContext string) (*Decision, error)
}
