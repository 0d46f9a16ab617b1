package sqlpipe

import (
	"context"
	"strings"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/chat/router"
	"customer-inquiry-be/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is the slice of the event bus this pipeline needs.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Pipeline is the data-query pipeline: generate a statement, validate it,
// scope it to the principal, execute it read-only and format the rows.
// A statement that fails validation is never executed.
type Pipeline struct {
	generator StatementGenerator
	validator *Validator
	sanitizer *Sanitizer
	executor  Executor
	formatter ResultFormatter
	publisher EventPublisher
	logger    logger.ILogger
}

var _ router.DataPipeline = (*Pipeline)(nil)

func NewPipeline(
	generator StatementGenerator,
	validator *Validator,
	sanitizer *Sanitizer,
	executor Executor,
	formatter ResultFormatter,
	publisher EventPublisher,
	logger logger.ILogger,
) *Pipeline {
	return &Pipeline{
		generator: generator,
		validator: validator,
		sanitizer: sanitizer,
		executor:  executor,
		formatter: formatter,
		publisher: publisher,
		logger:    logger,
	}
}

func (p *Pipeline) Run(ctx context.Context, userId uuid.UUID, question string) (*router.Response, error) {
	generated, err := p.generator.Generate(ctx, question)
	if err != nil {
		return nil, err
	}

	verdict := p.validator.Validate(generated.StatementText)
	if !verdict.IsValid {
		p.logger.Warn("sqlpipe", "generated statement rejected", map[string]interface{}{
			"user_id": userId.String(),
			"issues":  verdict.Issues,
		})
		if p.publisher != nil {
			// Telemetry only, a publish failure must not affect the turn.
			_ = p.publisher.Publish(ctx, events.NewQueryRejectedEvent(uuid.Nil, userId, verdict.Issues))
		}
		text := "I couldn't safely answer that from your order data: " + strings.Join(verdict.Issues, "; ")
		return &router.Response{
			QueryType:     constant.QueryTypeSql,
			AssistantText: text,
			ResponseData: map[string]any{
				"response": text,
				"issues":   verdict.Issues,
			},
		}, nil
	}

	scoped := p.sanitizer.Scope(generated.StatementText, userId.String())

	result := p.executor.Execute(ctx, scoped)
	if result.Failed() {
		p.logger.Error("sqlpipe", "statement execution failed", map[string]interface{}{
			"user_id": userId.String(),
			"reason":  result.FailureReason,
		})
		text := "Something went wrong while looking up your data. Please try again in a moment."
		return &router.Response{
			QueryType:     constant.QueryTypeSql,
			AssistantText: text,
			ResponseData: map[string]any{
				"response": text,
				"error":    "execution_failed",
			},
		}, nil
	}

	answer := p.formatter.Format(ctx, question, result.Rows)

	return &router.Response{
		QueryType:     constant.QueryTypeSql,
		AssistantText: answer,
		ResponseData: map[string]any{
			"response":    answer,
			"row_count":   len(result.Rows),
			"results":     result.Rows,
			"explanation": generated.Explanation,
		},
	}, nil
}
