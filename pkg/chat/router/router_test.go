package router

import (
	"context"
	"testing"

	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/entity"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/internal/repository/memory"
	"customer-inquiry-be/pkg/chat/classify"
	"customer-inquiry-be/pkg/chat/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	decision       *classify.Decision
	calls          int
	lastPendingCtx string
	lastMessage    string
}

func (f *fakeClassifier) Classify(ctx context.Context, message string, history []entity.ChatMessage, pendingContext string) (*classify.Decision, error) {
	f.calls++
	f.lastMessage = message
	f.lastPendingCtx = pendingContext
	return f.decision, nil
}

type fakeDataPipeline struct {
	calls int
}

func (f *fakeDataPipeline) Run(ctx context.Context, userId uuid.UUID, question string) (*Response, error) {
	f.calls++
	return &Response{
		QueryType:     constant.QueryTypeSql,
		AssistantText: "You have 3 orders.",
		ResponseData:  map[string]any{"response": "You have 3 orders."},
	}, nil
}

type fakeSearchPipeline struct {
	calls    int
	requests []SearchRequest
}

func (f *fakeSearchPipeline) Run(ctx context.Context, req SearchRequest) (*Response, error) {
	f.calls++
	f.requests = append(f.requests, req)
	return &Response{
		QueryType:     constant.QueryTypeDocumentSearch,
		AssistantText: "Here is what I found.",
		ResponseData:  map[string]any{"response": "Here is what I found."},
	}, nil
}

type fakeServicePipeline struct {
	calls int
}

func (f *fakeServicePipeline) Run(ctx context.Context, userId uuid.UUID, message string, history []entity.ChatMessage) (*Response, error) {
	f.calls++
	return &Response{
		QueryType:     constant.QueryTypeCustomer,
		AssistantText: "Happy to help.",
		ResponseData:  map[string]any{"response": "Happy to help."},
	}, nil
}

type routerFixture struct {
	dispatcher *Dispatcher
	store      *state.MemoryStore
	manager    *state.Manager
	classifier *fakeClassifier
	data       *fakeDataPipeline
	search     *fakeSearchPipeline
	service    *fakeServicePipeline
	userId     uuid.UUID
	sessionId  uuid.UUID
}

func newRouterFixture(t *testing.T, decision *classify.Decision) *routerFixture {
	t.Helper()

	store := state.NewMemoryStore()
	manager := state.NewManager(store)
	classifier := &fakeClassifier{decision: decision}
	data := &fakeDataPipeline{}
	search := &fakeSearchPipeline{}
	service := &fakeServicePipeline{}

	dispatcher := NewDispatcher(classifier, manager, data, search, service, memory.NewSessionLocks(), logger.NewNopLogger())

	userId := uuid.New()
	session, err := store.CreateSession(context.Background(), userId)
	require.NoError(t, err)

	return &routerFixture{
		dispatcher: dispatcher,
		store:      store,
		manager:    manager,
		classifier: classifier,
		data:       data,
		search:     search,
		service:    service,
		userId:     userId,
		sessionId:  session.Id,
	}
}

func (f *routerFixture) pendingState(t *testing.T) *state.PendingState {
	t.Helper()
	pending, err := f.store.GetPendingState(context.Background(), f.sessionId)
	require.NoError(t, err)
	return pending
}

func TestUnsupportedMessage(t *testing.T) {
	fx := newRouterFixture(t, &classify.Decision{
		Kind:       classify.KindUnsupported,
		Confidence: classify.ConfidenceHigh,
	})

	resp, err := fx.dispatcher.HandleTurn(context.Background(), fx.userId, fx.sessionId, "Tell me a joke")
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeUnsupported, resp.QueryType)
	assert.Equal(t, constant.UnsupportedResponseTemplate, resp.ResponseData["response"])
	assert.Contains(t, resp.AssistantText, "order data")
	assert.Contains(t, resp.AssistantText, "documents")
	assert.Contains(t, resp.AssistantText, "customer service")

	assert.True(t, fx.pendingState(t).IsEmpty(), "unsupported turns create no pending state")

	turns, err := fx.store.GetRecentTurns(context.Background(), fx.sessionId, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, turns[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, turns[1].Role)
}

func TestConfirmationAcceptUsesRewrittenQuery(t *testing.T) {
	fx := newRouterFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, fx.manager.SetPendingRewrite(ctx, fx.sessionId, &entity.PendingRewrite{
		OriginalQuery:  "Africa people",
		RewrittenQuery: "African people",
		Reason:         "grammar",
	}))

	resp, err := fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "Yes")
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeDocumentSearch, resp.QueryType)
	require.Equal(t, 1, fx.search.calls)
	assert.Equal(t, "African people", fx.search.requests[0].Query)
	assert.True(t, fx.search.requests[0].SkipConfirmation)

	assert.Equal(t, 0, fx.classifier.calls, "confirmation replies bypass the classifier")
	assert.True(t, fx.pendingState(t).IsEmpty(), "pending rewrite must be cleared after consumption")
}

func TestConfirmationRejectAsksToRephrase(t *testing.T) {
	fx := newRouterFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, fx.manager.SetPendingRewrite(ctx, fx.sessionId, &entity.PendingRewrite{
		OriginalQuery:  "Africa people",
		RewrittenQuery: "African people",
	}))

	resp, err := fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "No")
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeClarification, resp.QueryType)
	assert.Equal(t, constant.RephraseResponseTemplate, resp.AssistantText)

	assert.Equal(t, 0, fx.classifier.calls)
	assert.Equal(t, 0, fx.search.calls)
	assert.True(t, fx.pendingState(t).IsEmpty())
}

func TestConfirmationUseOriginalScansHistory(t *testing.T) {
	fx := newRouterFixture(t, nil)
	ctx := context.Background()

	_, err := fx.store.AppendTurn(ctx, fx.sessionId, constant.ChatMessageRoleUser, "Africa people")
	require.NoError(t, err)
	_, err = fx.store.AppendTurn(ctx, fx.sessionId, constant.ChatMessageRoleAssistant, "Did you mean \"African people\"?")
	require.NoError(t, err)

	require.NoError(t, fx.manager.SetPendingRewrite(ctx, fx.sessionId, &entity.PendingRewrite{
		OriginalQuery:  "Africa people",
		RewrittenQuery: "African people",
	}))

	_, err = fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "use the original query please")
	require.NoError(t, err)

	require.Equal(t, 1, fx.search.calls)
	assert.Equal(t, "Africa people", fx.search.requests[0].Query)
	assert.True(t, fx.pendingState(t).IsEmpty())
}

func TestClarificationAnswerReclassifiesWithContext(t *testing.T) {
	fx := newRouterFixture(t, &classify.Decision{
		Kind:       classify.KindDataQuery,
		Confidence: classify.ConfidenceHigh,
	})
	ctx := context.Background()

	require.NoError(t, fx.manager.SetPendingClarification(ctx, fx.sessionId, &entity.PendingClarification{
		Question: "Do you mean your orders or your documents?",
	}))

	resp, err := fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "my orders")
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeSql, resp.QueryType)
	assert.Equal(t, 1, fx.classifier.calls)
	assert.Equal(t, "Do you mean your orders or your documents?", fx.classifier.lastPendingCtx)
	assert.Equal(t, 1, fx.data.calls)
	assert.True(t, fx.pendingState(t).IsEmpty())
}

func TestNeedsClarificationSetsPendingState(t *testing.T) {
	fx := newRouterFixture(t, &classify.Decision{
		Kind:                  classify.KindNeedsClarification,
		Confidence:            classify.ConfidenceLow,
		Reasoning:             "ambiguous target",
		ClarificationQuestion: "Which account do you mean?",
	})

	resp, err := fx.dispatcher.HandleTurn(context.Background(), fx.userId, fx.sessionId, "check it")
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeClarification, resp.QueryType)
	assert.Equal(t, "Which account do you mean?", resp.ResponseData["question"])

	pending := fx.pendingState(t)
	require.NotNil(t, pending)
	require.NotNil(t, pending.Clarification)
	assert.Nil(t, pending.Rewrite, "a turn never ends with both pending slots set")
	assert.Equal(t, "Which account do you mean?", pending.Clarification.Question)
}

func TestConfidencePassThrough(t *testing.T) {
	fx := newRouterFixture(t, &classify.Decision{
		Kind:       classify.KindServiceRequest,
		Confidence: classify.ConfidenceMedium,
	})

	resp, err := fx.dispatcher.HandleTurn(context.Background(), fx.userId, fx.sessionId, "I need help")
	require.NoError(t, err)

	assert.Equal(t, "medium", resp.ResponseData["confidence"])
}

func TestFirstTurnSetsSessionTitle(t *testing.T) {
	fx := newRouterFixture(t, &classify.Decision{
		Kind:       classify.KindServiceRequest,
		Confidence: classify.ConfidenceHigh,
	})
	ctx := context.Background()

	_, err := fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "Where is my invoice for March?")
	require.NoError(t, err)

	session, err := fx.store.GetSession(ctx, fx.sessionId, fx.userId)
	require.NoError(t, err)
	assert.Equal(t, "Where is my invoice for March?", session.Title)

	// A second turn must not overwrite the title.
	_, err = fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "And for April?")
	require.NoError(t, err)

	session, err = fx.store.GetSession(ctx, fx.sessionId, fx.userId)
	require.NoError(t, err)
	assert.Equal(t, "Where is my invoice for March?", session.Title)
}

func TestNonConfirmationReplyAbandonsRewrite(t *testing.T) {
	fx := newRouterFixture(t, &classify.Decision{
		Kind:       classify.KindServiceRequest,
		Confidence: classify.ConfidenceHigh,
	})
	ctx := context.Background()

	require.NoError(t, fx.manager.SetPendingRewrite(ctx, fx.sessionId, &entity.PendingRewrite{
		OriginalQuery:  "Africa people",
		RewrittenQuery: "African people",
	}))

	resp, err := fx.dispatcher.HandleTurn(ctx, fx.userId, fx.sessionId, "Actually, I need help with my bill")
	require.NoError(t, err)

	assert.Equal(t, constant.QueryTypeCustomer, resp.QueryType)
	assert.Equal(t, 1, fx.classifier.calls)
	assert.True(t, fx.pendingState(t).IsEmpty(), "abandoned rewrite must still be cleared")
}
