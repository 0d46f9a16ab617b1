package docsearch

import (
	"context"
	"fmt"
	"testing"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/pkg/chat/router"
	"customer-inquiry-be/pkg/chat/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	analysis *Analysis
}

func (s *stubAnalyzer) Analyze(ctx context.Context, query string) (*Analysis, error) {
	return s.analysis, nil
}

type spyRetriever struct {
	hits      []Hit
	calls     int
	lastQuery string
	lastLimit int
}

func (s *spyRetriever) Retrieve(ctx context.Context, query string, terms []string, limit int, userId uuid.UUID) ([]Hit, error) {
	s.calls++
	s.lastQuery = query
	s.lastLimit = limit
	return s.hits, nil
}

type spySynthesizer struct {
	answer string
	calls  int
}

func (s *spySynthesizer) Synthesize(ctx context.Context, query string, hits []Hit) (string, error) {
	s.calls++
	return s.answer, nil
}

type searchFixture struct {
	pipeline  *Pipeline
	retriever *spyRetriever
	synth     *spySynthesizer
	states    *state.Manager
	sessionId uuid.UUID
	userId    uuid.UUID
}

func newSearchFixture(t *testing.T, analysis *Analysis, hits []Hit) *searchFixture {
	t.Helper()

	retriever := &spyRetriever{hits: hits}
	synth := &spySynthesizer{answer: "Here is what I found."}
	states := state.NewManager(state.NewMemoryStore())

	pipeline := NewPipeline(
		&stubAnalyzer{analysis: analysis},
		retriever,
		synth,
		states,
		5,
		logger.NewNopLogger(),
	)

	return &searchFixture{
		pipeline:  pipeline,
		retriever: retriever,
		synth:     synth,
		states:    states,
		sessionId: uuid.New(),
		userId:    uuid.New(),
	}
}

func TestRewriteConfirmationPausesRetrieval(t *testing.T) {
	fx := newSearchFixture(t, &Analysis{
		OriginalQuery:     "Africa people",
		CleanTopic:        "African people",
		RewrittenQuery:    "African people",
		NeedsConfirmation: true,
		RewriteReason:     "grammar fix",
	}, nil)

	resp, err := fx.pipeline.Run(context.Background(), router.SearchRequest{
		SessionId: fx.sessionId,
		UserId:    fx.userId,
		Query:     "Africa people",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeConfirmation, resp.QueryType)
	assert.Contains(t, resp.AssistantText, `Did you mean "African people"?`)
	assert.Equal(t, 0, fx.retriever.calls)

	pending, err := fx.states.Store().GetPendingState(context.Background(), fx.sessionId)
	require.NoError(t, err)
	require.NotNil(t, pending.Rewrite)
	assert.Equal(t, "Africa people", pending.Rewrite.OriginalQuery)
	assert.Equal(t, "African people", pending.Rewrite.RewrittenQuery)
	assert.Equal(t, "grammar fix", pending.Rewrite.Reason)
}

func TestSkipConfirmationSearchesImmediately(t *testing.T) {
	fx := newSearchFixture(t, &Analysis{
		OriginalQuery:     "Africa people",
		CleanTopic:        "African people",
		RewrittenQuery:    "African people",
		NeedsConfirmation: true,
	}, []Hit{
		{DocumentId: uuid.New(), Title: "Peoples of Africa", Snippet: "…", Score: 0.91},
	})

	resp, err := fx.pipeline.Run(context.Background(), router.SearchRequest{
		SessionId:        fx.sessionId,
		UserId:           fx.userId,
		Query:            "African people",
		SkipConfirmation: true,
	})
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeDocumentSearch, resp.QueryType)
	assert.Equal(t, 1, fx.retriever.calls)
	assert.Equal(t, "African people", fx.retriever.lastQuery)
	assert.Equal(t, 5, fx.retriever.lastLimit)

	pending, err := fx.states.Store().GetPendingState(context.Background(), fx.sessionId)
	require.NoError(t, err)
	assert.True(t, pending.IsEmpty())
}

func TestNoResultsReturnsApology(t *testing.T) {
	fx := newSearchFixture(t, &Analysis{
		OriginalQuery:  "quantum gardening",
		CleanTopic:     "quantum gardening",
		RewrittenQuery: "quantum gardening",
	}, nil)

	resp, err := fx.pipeline.Run(context.Background(), router.SearchRequest{
		SessionId: fx.sessionId,
		UserId:    fx.userId,
		Query:     "quantum gardening",
	})
	require.NoError(t, err)

	want := fmt.Sprintf(constant.NoResultsTemplate, "quantum gardening")
	assert.Equal(t, want, resp.AssistantText)
	assert.Equal(t, 0, resp.ResponseData["result_count"])
	assert.Equal(t, 0, fx.synth.calls)
}

func TestHitsAreSynthesizedIntoAnswer(t *testing.T) {
	hits := []Hit{
		{DocumentId: uuid.New(), Title: "Onboarding Guide", Snippet: "Step one…", Score: 0.88},
		{DocumentId: uuid.New(), Title: "FAQ", Snippet: "Common questions…", Score: 0.72},
	}
	fx := newSearchFixture(t, &Analysis{
		OriginalQuery:  "how do I onboard",
		CleanTopic:     "onboarding",
		RewrittenQuery: "how do I onboard",
	}, hits)

	resp, err := fx.pipeline.Run(context.Background(), router.SearchRequest{
		SessionId: fx.sessionId,
		UserId:    fx.userId,
		Query:     "how do I onboard",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeDocumentSearch, resp.QueryType)
	assert.Equal(t, "Here is what I found.", resp.AssistantText)
	assert.Equal(t, 1, fx.synth.calls)
	assert.Equal(t, 2, resp.ResponseData["result_count"])

	results, ok := resp.ResponseData["results"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "Onboarding Guide", results[0]["title"])
}
