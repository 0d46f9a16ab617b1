package sqlpipe

import (
	"context"
	"strings"
	"testing"

	"customer-inquiry-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	generated *GeneratedQuery
	err       error
}

func (s *stubGenerator) Generate(ctx context.Context, question string) (*GeneratedQuery, error) {
	return s.generated, s.err
}

type spyExecutor struct {
	calls      int
	statements []string
	result     ExecutionResult
}

func (s *spyExecutor) Execute(ctx context.Context, statement string) ExecutionResult {
	s.calls++
	s.statements = append(s.statements, statement)
	return s.result
}

type stubFormatter struct{}

func (stubFormatter) Format(ctx context.Context, question string, rows []map[string]any) string {
	return "formatted answer"
}

func newTestPipeline(generated *GeneratedQuery, executor *spyExecutor) *Pipeline {
	return NewPipeline(
		&stubGenerator{generated: generated},
		NewValidator([]string{"orders"}),
		NewSanitizer(100),
		executor,
		stubFormatter{},
		nil,
		logger.NewNopLogger(),
	)
}

func TestRejectedStatementIsNeverExecuted(t *testing.T) {
	executor := &spyExecutor{}
	pipeline := newTestPipeline(&GeneratedQuery{
		StatementText: "DELETE FROM orders WHERE id=1",
	}, executor)

	resp, err := pipeline.Run(context.Background(), uuid.New(), "delete my orders")
	require.NoError(t, err)

	assert.Equal(t, 0, executor.calls, "invalid statements must never reach the executor")
	issues, ok := resp.ResponseData["issues"].([]string)
	require.True(t, ok)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0], "DELETE")
}

func TestValidStatementIsScopedBeforeExecution(t *testing.T) {
	executor := &spyExecutor{result: ExecutionResult{Rows: []map[string]any{{"count": int64(3)}}}}
	pipeline := newTestPipeline(&GeneratedQuery{
		StatementText: "SELECT * FROM orders",
		Explanation:   "all orders",
	}, executor)

	userId := uuid.New()
	resp, err := pipeline.Run(context.Background(), userId, "show my orders")
	require.NoError(t, err)

	require.Equal(t, 1, executor.calls)
	executed := executor.statements[0]
	assert.Contains(t, executed, "user_id = '"+userId.String()+"'")
	assert.Contains(t, executed, "LIMIT 100")

	assert.Equal(t, "formatted answer", resp.ResponseData["response"])
	assert.Equal(t, 1, resp.ResponseData["row_count"])
}

func TestExecutionFailureIsSurfacedNotRaised(t *testing.T) {
	executor := &spyExecutor{result: ExecutionResult{FailureReason: "relation does not exist"}}
	pipeline := newTestPipeline(&GeneratedQuery{
		StatementText: "SELECT * FROM orders",
	}, executor)

	resp, err := pipeline.Run(context.Background(), uuid.New(), "show my orders")
	require.NoError(t, err, "execution failures are reported in the response, not returned as errors")

	assert.Equal(t, "execution_failed", resp.ResponseData["error"])
	response, ok := resp.ResponseData["response"].(string)
	require.True(t, ok)
	assert.False(t, strings.Contains(response, "relation does not exist"), "internal error details must not leak to the user")
}
