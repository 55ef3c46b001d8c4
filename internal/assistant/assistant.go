package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	"github.com/tariffnom/tariffnom/internal/session"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// ConfidenceThreshold is the minimum top-candidate confidence at which the
// one-click "use this code" affordance is offered.
const ConfidenceThreshold = 0.7

const welcomeMessage = "Welcome! I can help suggest HS codes for your product. " +
	"Tell me what you are importing or exporting, including details like " +
	"material, use, and any special characteristics."

const retryMessage = "Sorry, I couldn't process that just yet. Please try again in a moment."

const maxProductNameLen = 150

var (
	// ErrEmptyMessage rejects empty or whitespace-only input.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrTurnInFlight rejects input while another turn is outstanding.
	ErrTurnInFlight = errors.New("a turn is already awaiting a response")
	// ErrQuestionPending rejects free text while a disambiguation question
	// awaits an option answer.
	ErrQuestionPending = errors.New("answer the pending question first")
	// ErrNoConfirmableCode rejects UseCode when no affordance is offered.
	ErrNoConfirmableCode = errors.New("no code suggestion to confirm")
)

// Resolver is the HS-resolution endpoint the assistant converses with.
type Resolver interface {
	ResolveHs(ctx context.Context, req api.HsResolveRequest) (*api.HsResolveResponse, error)
}

// CodeSelection is the payload handed to the host page when the user
// confirms a suggested code.
type CodeSelection struct {
	HsCode     string
	Confidence *float64
	Rationale  string
}

// Assistant is the floating HS-code chat widget, independent of the main
// navigation machine. Turns are strictly serialized: a new turn may not
// start while one is outstanding.
type Assistant struct {
	resolver Resolver
	rules    []Rule
	sessions *session.Manager
	repo     TranscriptRepository
	tabID    string
	onSelect func(CodeSelection)

	autoOpen      bool
	autoOpenDelay time.Duration
	autoOpenTimer *time.Timer

	mu               sync.Mutex
	open             bool
	inFlight         bool
	consent          bool
	sessionID        string
	queryID          string
	previousAnswers  []api.HsPreviousAnswer
	pendingQuestions []api.DisambiguationQuestion
	pendingCandidate *api.HsCandidate
	messages         []Message
}

// Option customises an Assistant.
type Option func(*Assistant)

// WithTranscriptRepository mirrors the transcript into per-tab storage.
func WithTranscriptRepository(repo TranscriptRepository) Option {
	return func(a *Assistant) { a.repo = repo }
}

// WithRules replaces the default tutorial rule table.
func WithRules(rules []Rule) Option {
	return func(a *Assistant) { a.rules = rules }
}

// WithSelectionHandler registers the host hook invoked on UseCode.
func WithSelectionHandler(fn func(CodeSelection)) Option {
	return func(a *Assistant) { a.onSelect = fn }
}

// New builds an Assistant for one tab. Consent for resolver-side logging
// defaults to true and is sent on every resolver call.
func New(resolver Resolver, sessions *session.Manager, tabID string, cfg core.AssistantConfig, opts ...Option) *Assistant {
	a := &Assistant{
		resolver:      resolver,
		rules:         DefaultRules(),
		sessions:      sessions,
		tabID:         tabID,
		consent:       true,
		autoOpen:      cfg.AutoOpen,
		autoOpenDelay: cfg.AutoOpenAfter(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start restores per-tab state and arms the once-ever auto-open. The
// widget auto-opens only on the very first visit, only when enabled, and
// only when no open/closed preference was stored for this tab.
func (a *Assistant) Start(ctx context.Context) {
	open, stored := a.sessions.WidgetOpen(ctx)

	a.mu.Lock()
	if stored {
		a.open = open
	}
	a.restoreTranscript(ctx)
	if len(a.messages) == 0 {
		a.appendLocked(ctx, RoleAssistant, welcomeMessage)
	}
	a.mu.Unlock()

	if !a.sessions.HasVisited(ctx) {
		a.sessions.MarkVisited(ctx)
		if a.autoOpen && !stored {
			a.autoOpenTimer = time.AfterFunc(a.autoOpenDelay, func() {
				a.mu.Lock()
				a.open = true
				a.mu.Unlock()
				a.sessions.SetWidgetOpen(context.Background(), true)
			})
		}
	}
}

// Close stops the auto-open timer, if armed.
func (a *Assistant) Close() {
	if a.autoOpenTimer != nil {
		a.autoOpenTimer.Stop()
	}
}

func (a *Assistant) restoreTranscript(ctx context.Context) {
	if a.repo == nil {
		return
	}
	msgs, err := a.repo.LoadTranscript(ctx, a.tabID)
	if err != nil {
		logx.Warn().Err(err).Msg("unable to restore chat transcript")
		return
	}
	a.messages = msgs
}

// Toggle flips open/closed and persists the preference for this tab.
func (a *Assistant) Toggle(ctx context.Context) {
	a.mu.Lock()
	a.open = !a.open
	open := a.open
	a.mu.Unlock()
	a.sessions.SetWidgetOpen(ctx, open)
}

// IsOpen reports widget visibility.
func (a *Assistant) IsOpen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open
}

// SetConsent controls whether consentLogging is sent true on resolver calls.
func (a *Assistant) SetConsent(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.consent = v
}

// Consent returns the current consent toggle.
func (a *Assistant) Consent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.consent
}

// appendLocked adds one transcript message; the caller holds the lock.
func (a *Assistant) appendLocked(ctx context.Context, role, content string) {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	a.messages = append(a.messages, msg)
	if a.repo != nil {
		if err := a.repo.AddMessage(ctx, a.tabID, msg); err != nil {
			logx.Warn().Err(err).Msg("unable to mirror transcript message")
		}
	}
}

// SendTurn submits one free-text turn. Empty input is rejected, as is
// input while a previous turn is outstanding or while a disambiguation
// question awaits an option answer. Tutorial intents are answered locally
// from the rule table without contacting the backend; everything else is
// forwarded to the resolver with the accumulated session identifiers and
// prior answers.
func (a *Assistant) SendTurn(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return ErrTurnInFlight
	}
	if len(a.pendingQuestions) > 0 {
		a.mu.Unlock()
		return ErrQuestionPending
	}

	a.appendLocked(ctx, RoleUser, trimmed)

	if response, ok := matchTutorial(a.rules, trimmed); ok {
		a.appendLocked(ctx, RoleAssistant, response)
		a.mu.Unlock()
		return nil
	}

	a.inFlight = true
	req := a.resolveRequestLocked(trimmed)
	a.mu.Unlock()

	return a.resolveTurn(ctx, req)
}

// AnswerQuestion answers a pending disambiguation question by option.
// It is equivalent to sending the option text plus the question context
// as the next turn, and records the answer for replay on later turns.
func (a *Assistant) AnswerQuestion(ctx context.Context, questionID, answer string) error {
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return ErrTurnInFlight
	}

	var question *api.DisambiguationQuestion
	remaining := a.pendingQuestions[:0]
	for i := range a.pendingQuestions {
		if a.pendingQuestions[i].ID == questionID {
			q := a.pendingQuestions[i]
			question = &q
			continue
		}
		remaining = append(remaining, a.pendingQuestions[i])
	}
	if question == nil {
		a.mu.Unlock()
		return fmt.Errorf("no pending question with id %q", questionID)
	}
	a.pendingQuestions = remaining
	a.previousAnswers = append(a.previousAnswers, api.HsPreviousAnswer{
		QuestionID: questionID,
		Answer:     answer,
	})

	turnText := fmt.Sprintf("%s (%s)", answer, question.Question)
	a.appendLocked(ctx, RoleUser, turnText)
	a.inFlight = true
	req := a.resolveRequestLocked(turnText)
	a.mu.Unlock()

	return a.resolveTurn(ctx, req)
}

// resolveRequestLocked builds the resolver request; the caller holds the lock.
func (a *Assistant) resolveRequestLocked(text string) api.HsResolveRequest {
	name := text
	if len(name) > maxProductNameLen {
		name = name[:maxProductNameLen]
	}
	answers := make([]api.HsPreviousAnswer, len(a.previousAnswers))
	copy(answers, a.previousAnswers)
	return api.HsResolveRequest{
		QueryID:         a.queryID,
		ProductName:     name,
		Description:     text,
		PreviousAnswers: answers,
		SessionID:       a.sessionID,
		ConsentLogging:  a.consent,
	}
}

func (a *Assistant) resolveTurn(ctx context.Context, req api.HsResolveRequest) error {
	resp, err := a.resolver.ResolveHs(ctx, req)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false

	if err != nil {
		// A 400 from the resolver is a domain validation message, shown
		// as an ordinary assistant turn. Anything else gets the generic
		// retry message; the conversation history stays intact either way.
		if errx.KindOf(err) == errx.KindValidation {
			a.appendLocked(ctx, RoleAssistant, errx.DisplayMessage(err))
			return nil
		}
		logx.Warn().Err(err).Msg("resolver turn failed")
		a.appendLocked(ctx, RoleAssistant, retryMessage)
		return err
	}

	a.sessionID = resp.SessionID
	a.queryID = resp.QueryID
	a.pendingCandidate = nil

	if len(resp.Candidates) > 0 {
		a.appendLocked(ctx, RoleAssistant, formatCandidates(resp.Candidates))
		if top := resp.Candidates[0]; top.Confidence >= ConfidenceThreshold {
			c := top
			a.pendingCandidate = &c
		}
	}

	if len(resp.DisambiguationQuestions) > 0 {
		a.pendingQuestions = append([]api.DisambiguationQuestion(nil), resp.DisambiguationQuestions...)
		for _, q := range resp.DisambiguationQuestions {
			a.appendLocked(ctx, RoleAssistant, formatQuestion(q))
		}
	}

	if len(resp.Candidates) == 0 && len(resp.DisambiguationQuestions) == 0 {
		a.appendLocked(ctx, RoleAssistant, formatFallback(resp.Fallback))
	}

	if resp.Notice != nil && resp.Notice.Message != "" {
		a.appendLocked(ctx, RoleAssistant, resp.Notice.Message)
	}

	return nil
}

// formatCandidates renders the candidate list in the order the resolver
// returned it; no client-side re-ranking.
func formatCandidates(candidates []api.HsCandidate) string {
	var b strings.Builder
	b.WriteString("Here are the HS code suggestions:")
	for i, c := range candidates {
		fmt.Fprintf(&b, "\n%d. %s (confidence %.0f%%)", i+1, c.HsCode, c.Confidence*100)
		if c.Rationale != "" {
			b.WriteString(" - " + c.Rationale)
		}
	}
	return b.String()
}

func formatQuestion(q api.DisambiguationQuestion) string {
	var b strings.Builder
	b.WriteString(q.Question)
	if len(q.Options) > 0 {
		b.WriteString("\nOptions: " + strings.Join(q.Options, " / "))
	}
	return b.String()
}

func formatFallback(fb *api.FallbackInfo) string {
	if fb == nil || fb.ManualSearchURL == "" {
		return "I couldn't find a confident match. Try adding details like material, function and usage."
	}
	return "I couldn't find a confident match. You can search manually at " + fb.ManualSearchURL + "."
}

// ConfirmableCode returns the top candidate when its confidence met the
// threshold, meaning the one-click confirmation affordance is shown.
func (a *Assistant) ConfirmableCode() (api.HsCandidate, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pendingCandidate == nil {
		return api.HsCandidate{}, false
	}
	return *a.pendingCandidate, true
}

// UseCode confirms the suggested code: the selection is emitted to the
// host page, which pre-fills and flags the form's hsCode field, and the
// widget closes.
func (a *Assistant) UseCode(ctx context.Context) error {
	a.mu.Lock()
	if a.pendingCandidate == nil {
		a.mu.Unlock()
		return ErrNoConfirmableCode
	}
	candidate := *a.pendingCandidate
	a.pendingCandidate = nil
	a.open = false
	handler := a.onSelect
	a.mu.Unlock()

	a.sessions.SetWidgetOpen(ctx, false)
	if handler != nil {
		conf := candidate.Confidence
		handler(CodeSelection{
			HsCode:     candidate.HsCode,
			Confidence: &conf,
			Rationale:  candidate.Rationale,
		})
	}
	return nil
}

// Messages returns a copy of the transcript.
func (a *Assistant) Messages() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Message, len(a.messages))
	copy(out, a.messages)
	return out
}

// PendingQuestions returns the disambiguation questions awaiting answers.
func (a *Assistant) PendingQuestions() []api.DisambiguationQuestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]api.DisambiguationQuestion, len(a.pendingQuestions))
	copy(out, a.pendingQuestions)
	return out
}

// AwaitingResponse reports whether a turn is outstanding.
func (a *Assistant) AwaitingResponse() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}
