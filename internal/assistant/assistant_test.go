package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	"github.com/tariffnom/tariffnom/internal/session"
)

type stubResolver struct {
	mu       sync.Mutex
	resp     *api.HsResolveResponse
	err      error
	release  chan struct{}
	started  chan struct{}
	requests []api.HsResolveRequest
}

func (s *stubResolver) ResolveHs(ctx context.Context, req api.HsResolveRequest) (*api.HsResolveResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	if s.started != nil && len(s.requests) == 1 {
		close(s.started)
	}
	release := s.release
	s.mu.Unlock()
	if release != nil {
		<-release
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubResolver) lastRequest() api.HsResolveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *stubResolver) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newAssistant(t *testing.T, resolver Resolver, opts ...Option) *Assistant {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore())
	a := New(resolver, sessions, "tab-1", core.AssistantConfig{}, opts...)
	a.Start(context.Background())
	t.Cleanup(a.Close)
	return a
}

func candidates(pairs ...any) *api.HsResolveResponse {
	resp := &api.HsResolveResponse{SessionID: "s1", QueryID: "q1"}
	for i := 0; i < len(pairs); i += 2 {
		resp.Candidates = append(resp.Candidates, api.HsCandidate{
			HsCode:     pairs[i].(string),
			Confidence: pairs[i+1].(float64),
		})
	}
	return resp
}

func messagesByRole(a *Assistant, role string) []Message {
	var out []Message
	for _, m := range a.Messages() {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

func TestStart_WelcomeMessageOnEmptyTranscript(t *testing.T) {
	a := newAssistant(t, &stubResolver{})
	msgs := a.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "HS codes")
}

func TestSendTurn_EmptyRejected(t *testing.T) {
	a := newAssistant(t, &stubResolver{})
	assert.ErrorIs(t, a.SendTurn(context.Background(), "   "), ErrEmptyMessage)
	assert.Len(t, a.Messages(), 1) // welcome only
}

func TestSendTurn_TutorialAnsweredLocally(t *testing.T) {
	resolver := &stubResolver{}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "What is an HS code?"))

	assert.Zero(t, resolver.requestCount())
	replies := messagesByRole(a, RoleAssistant)
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Content, "Harmonized System")
}

func TestSendTurn_HighConfidenceOffersAffordance(t *testing.T) {
	resolver := &stubResolver{resp: candidates("9603.21.00", 0.92, "9603.29.00", 0.41)}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "plastic toothbrush"))

	code, ok := a.ConfirmableCode()
	require.True(t, ok)
	assert.Equal(t, "9603.21.00", code.HsCode)

	replies := messagesByRole(a, RoleAssistant)
	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Content, "Here are the HS code suggestions:")
	assert.Contains(t, replies[1].Content, "1. 9603.21.00 (confidence 92%)")
	assert.Contains(t, replies[1].Content, "2. 9603.29.00 (confidence 41%)")
}

func TestSendTurn_LowConfidenceNoAffordance(t *testing.T) {
	resolver := &stubResolver{resp: candidates("9603.21.00", 0.69)}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "brush"))

	_, ok := a.ConfirmableCode()
	assert.False(t, ok)
}

func TestSendTurn_SerializedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	resolver := &stubResolver{
		resp:    candidates("9603.21.00", 0.9),
		release: release,
		started: make(chan struct{}),
	}
	a := newAssistant(t, resolver)

	done := make(chan error, 1)
	go func() { done <- a.SendTurn(context.Background(), "toothbrush") }()
	<-resolver.started

	assert.True(t, a.AwaitingResponse())
	assert.ErrorIs(t, a.SendTurn(context.Background(), "another product"), ErrTurnInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, a.AwaitingResponse())
	assert.Equal(t, 1, resolver.requestCount())
}

func TestSendTurn_ValidationErrorBecomesAssistantMessage(t *testing.T) {
	resolver := &stubResolver{err: errx.New(nil, errx.KindValidation, 400, "Product name is too long")}
	a := newAssistant(t, resolver)
	before := len(messagesByRole(a, RoleAssistant))

	require.NoError(t, a.SendTurn(context.Background(), "something unclassifiable"))

	replies := messagesByRole(a, RoleAssistant)
	require.Len(t, replies, before+1)
	assert.Equal(t, "Product name is too long", replies[len(replies)-1].Content)
	assert.False(t, a.AwaitingResponse())
}

func TestSendTurn_ServerErrorAppendsRetryMessage(t *testing.T) {
	resolver := &stubResolver{err: errx.New(errors.New("boom"), errx.KindServer, 500, "Internal server error")}
	a := newAssistant(t, resolver)

	err := a.SendTurn(context.Background(), "toothbrush")
	require.Error(t, err)

	replies := messagesByRole(a, RoleAssistant)
	assert.Equal(t, retryMessage, replies[len(replies)-1].Content)
	assert.False(t, a.AwaitingResponse())
	// the failed turn does not corrupt the session; the next one may proceed
	resolver.err = nil
	resolver.resp = candidates("9603.21.00", 0.8)
	require.NoError(t, a.SendTurn(context.Background(), "plastic toothbrush"))
}

func TestDisambiguationFlow(t *testing.T) {
	resolver := &stubResolver{resp: &api.HsResolveResponse{
		SessionID: "s1",
		QueryID:   "q1",
		DisambiguationQuestions: []api.DisambiguationQuestion{
			{ID: "q-material", Question: "What material is it made of?", Options: []string{"plastic", "wood"}},
		},
	}}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "toothbrush"))
	require.Len(t, a.PendingQuestions(), 1)

	// free text is suspended while a question is pending
	assert.ErrorIs(t, a.SendTurn(context.Background(), "more detail"), ErrQuestionPending)

	assert.Error(t, a.AnswerQuestion(context.Background(), "q-unknown", "plastic"))

	resolver.resp = candidates("9603.21.00", 0.88)
	require.NoError(t, a.AnswerQuestion(context.Background(), "q-material", "plastic"))

	assert.Empty(t, a.PendingQuestions())
	req := resolver.lastRequest()
	assert.Equal(t, "s1", req.SessionID)
	assert.Equal(t, "q1", req.QueryID)
	require.Len(t, req.PreviousAnswers, 1)
	assert.Equal(t, api.HsPreviousAnswer{QuestionID: "q-material", Answer: "plastic"}, req.PreviousAnswers[0])
	assert.Equal(t, "plastic (What material is it made of?)", req.ProductName)

	users := messagesByRole(a, RoleUser)
	assert.Equal(t, "plastic (What material is it made of?)", users[len(users)-1].Content)
}

func TestSessionIdentifiersCarriedAcrossTurns(t *testing.T) {
	resolver := &stubResolver{resp: candidates("0901.21.00", 0.3)}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "roasted coffee"))
	assert.Empty(t, resolver.requests[0].SessionID)

	require.NoError(t, a.SendTurn(context.Background(), "arabica beans"))
	second := resolver.lastRequest()
	assert.Equal(t, "s1", second.SessionID)
	assert.Equal(t, "q1", second.QueryID)
}

func TestConsentToggleSentOnEveryCall(t *testing.T) {
	resolver := &stubResolver{resp: candidates("0901.21.00", 0.3)}
	a := newAssistant(t, resolver)

	assert.True(t, a.Consent())
	require.NoError(t, a.SendTurn(context.Background(), "coffee"))
	assert.True(t, resolver.lastRequest().ConsentLogging)

	a.SetConsent(false)
	require.NoError(t, a.SendTurn(context.Background(), "green beans"))
	assert.False(t, resolver.lastRequest().ConsentLogging)
}

func TestLongProductNameTruncated(t *testing.T) {
	resolver := &stubResolver{resp: candidates("9603.21.00", 0.8)}
	a := newAssistant(t, resolver)

	long := ""
	for len(long) < 200 {
		long += "toothbrush "
	}
	require.NoError(t, a.SendTurn(context.Background(), long))

	req := resolver.lastRequest()
	assert.Len(t, req.ProductName, 150)
	assert.Greater(t, len(req.Description), 150)
}

func TestFallbackMessage(t *testing.T) {
	resolver := &stubResolver{resp: &api.HsResolveResponse{
		Fallback: &api.FallbackInfo{ManualSearchURL: "https://tariff.example/search"},
	}}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "mystery object"))
	replies := messagesByRole(a, RoleAssistant)
	assert.Contains(t, replies[len(replies)-1].Content, "https://tariff.example/search")
}

func TestNoticeAppended(t *testing.T) {
	resp := candidates("9603.21.00", 0.9)
	resp.Notice = &api.Notice{Message: "Your query may be logged to improve suggestions."}
	a := newAssistant(t, &stubResolver{resp: resp})

	require.NoError(t, a.SendTurn(context.Background(), "toothbrush"))
	replies := messagesByRole(a, RoleAssistant)
	assert.Equal(t, "Your query may be logged to improve suggestions.", replies[len(replies)-1].Content)
}

func TestUseCode(t *testing.T) {
	var selected *CodeSelection
	resolver := &stubResolver{resp: candidates("8517.12.00", 0.95)}
	a := newAssistant(t, resolver, WithSelectionHandler(func(s CodeSelection) { selected = &s }))
	a.Toggle(context.Background())
	require.True(t, a.IsOpen())

	require.NoError(t, a.SendTurn(context.Background(), "smartphone"))
	require.NoError(t, a.UseCode(context.Background()))

	require.NotNil(t, selected)
	assert.Equal(t, "8517.12.00", selected.HsCode)
	require.NotNil(t, selected.Confidence)
	assert.InDelta(t, 0.95, *selected.Confidence, 1e-9)
	assert.False(t, a.IsOpen())

	assert.ErrorIs(t, a.UseCode(context.Background()), ErrNoConfirmableCode)
}

func TestNewSuggestionsReplaceOldAffordance(t *testing.T) {
	resolver := &stubResolver{resp: candidates("8517.12.00", 0.95)}
	a := newAssistant(t, resolver)

	require.NoError(t, a.SendTurn(context.Background(), "smartphone"))
	_, ok := a.ConfirmableCode()
	require.True(t, ok)

	resolver.mu.Lock()
	resolver.resp = candidates("8517.13.00", 0.5)
	resolver.mu.Unlock()
	require.NoError(t, a.SendTurn(context.Background(), "satellite phone"))

	_, ok = a.ConfirmableCode()
	assert.False(t, ok)
}

func TestToggleStatePersisted(t *testing.T) {
	store := session.NewMemoryStore()
	sessions := session.NewManager(store)
	a := New(&stubResolver{}, sessions, "tab-1", core.AssistantConfig{})
	a.Start(context.Background())
	defer a.Close()

	a.Toggle(context.Background())
	require.True(t, a.IsOpen())

	// a second widget for the same tab restores the stored preference
	b := New(&stubResolver{}, sessions, "tab-1", core.AssistantConfig{})
	b.Start(context.Background())
	defer b.Close()
	assert.True(t, b.IsOpen())
}

func TestAutoOpenOnlyOnFirstVisit(t *testing.T) {
	cfg := core.AssistantConfig{AutoOpen: true, AutoOpenDelay: "10ms"}
	sessions := session.NewManager(session.NewMemoryStore())

	a := New(&stubResolver{}, sessions, "tab-1", cfg)
	a.Start(context.Background())
	defer a.Close()

	require.Eventually(t, a.IsOpen, time.Second, 5*time.Millisecond)

	// the user closes the widget; the visited flag is durable, so a later
	// start respects the stored preference and never auto-opens again
	sessions.SetWidgetOpen(context.Background(), false)
	b := New(&stubResolver{}, sessions, "tab-1", cfg)
	b.Start(context.Background())
	defer b.Close()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, b.IsOpen())
}

func TestMatchTutorialFirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Topic: "a", Match: ContainsAny("code"), Response: "first"},
		{Topic: "b", Match: ContainsAny("hs code"), Response: "second"},
	}
	resp, ok := matchTutorial(rules, "what is an HS CODE")
	require.True(t, ok)
	assert.Equal(t, "first", resp)

	_, ok = matchTutorial(rules, "unrelated")
	assert.False(t, ok)
}
