package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tariffnom/tariffnom/internal/api"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

const (
	keyAuthToken      = "authToken"
	keyUser           = "user"
	keyHasVisited     = "chatbot:hasVisited"
	keyWidgetOpen     = "chatbot:isOpen"
	keySessionExpired = "session:expired"
)

// AdminRole is the role marker gating the admin view.
const AdminRole = "ADMIN"

// Manager owns the authenticated session. It is the single writer for
// login/logout transitions; every other component reads through it.
type Manager struct {
	store Store

	mu      sync.RWMutex
	token   string
	user    *api.User
	expired bool
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Restore loads persisted credentials at startup. A missing, malformed or
// expired token, or an unparsable user record, leaves the session
// unauthenticated and clears whatever was stored.
func (m *Manager) Restore(ctx context.Context) error {
	token, ok, err := m.store.Get(ctx, Durable, keyAuthToken)
	if err != nil {
		return err
	}
	if !ok || !tokenUsable(token) {
		return m.Clear(ctx)
	}

	raw, ok, err := m.store.Get(ctx, Durable, keyUser)
	if err != nil {
		return err
	}
	if !ok {
		return m.Clear(ctx)
	}
	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logx.Warn().Err(err).Msg("stored user record is unreadable, forcing re-authentication")
		return m.Clear(ctx)
	}

	m.mu.Lock()
	m.token = token
	m.user = &user
	m.mu.Unlock()
	return nil
}

// tokenUsable reports whether the persisted bearer token still parses as a
// JWT whose exp claim, when present, has not passed. The signature is the
// backend's to verify; the client only avoids presenting dead tokens.
func tokenUsable(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp != nil && exp.Before(time.Now()) {
		return false
	}
	return true
}

// SaveCredentials persists a fresh token/user pair after login or register.
func (m *Manager) SaveCredentials(ctx context.Context, token string, user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, Durable, keyAuthToken, token); err != nil {
		return err
	}
	if err := m.store.Set(ctx, Durable, keyUser, string(raw)); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, Durable, keySessionExpired); err != nil {
		logx.Warn().Err(err).Msg("unable to reset session-expired indicator")
	}
	m.mu.Lock()
	m.token = token
	m.user = &user
	m.expired = false
	m.mu.Unlock()
	return nil
}

// Clear removes credentials from memory and the store (logout).
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()
	if err := m.store.Delete(ctx, Durable, keyAuthToken); err != nil {
		return err
	}
	return m.store.Delete(ctx, Durable, keyUser)
}

// MarkSessionExpired handles a server-signaled 401/403: credentials are
// cleared and the expired indicator is raised for the login view to show.
// The indicator is persisted so it survives into the next run, standing in
// for the original's redirect carrying a session-expired marker.
func (m *Manager) MarkSessionExpired(ctx context.Context) {
	if err := m.Clear(ctx); err != nil {
		logx.Error().Err(err).Msg("failed to clear credentials on session expiry")
	}
	m.mu.Lock()
	m.expired = true
	m.mu.Unlock()
	if err := m.store.Set(ctx, Durable, keySessionExpired, "true"); err != nil {
		logx.Warn().Err(err).Msg("unable to persist session-expired indicator")
	}
}

// ConsumeSessionExpired reports and resets the expired indicator.
func (m *Manager) ConsumeSessionExpired(ctx context.Context) bool {
	m.mu.Lock()
	was := m.expired
	m.expired = false
	m.mu.Unlock()

	v, ok, err := m.store.Get(ctx, Durable, keySessionExpired)
	if err != nil {
		return was
	}
	if ok {
		if err := m.store.Delete(ctx, Durable, keySessionExpired); err != nil {
			logx.Warn().Err(err).Msg("unable to reset session-expired indicator")
		}
	}
	return was || (ok && v == "true")
}

// Token implements api.CredentialSource.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// User returns the authenticated user record, if any.
func (m *Manager) User() (api.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return api.User{}, false
	}
	return *m.user, true
}

// IsAuthenticated reports whether a usable session is present.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Token()
	return ok
}

// IsAdmin reports whether the authenticated user carries the admin role.
func (m *Manager) IsAdmin() bool {
	u, ok := m.User()
	return ok && u.Role == AdminRole
}

// HasVisited reports the durable once-ever visited flag for the chat
// widget's auto-open behavior.
func (m *Manager) HasVisited(ctx context.Context) bool {
	v, ok, err := m.store.Get(ctx, Durable, keyHasVisited)
	if err != nil {
		logx.Warn().Err(err).Msg("unable to read visited flag")
		return true // fail closed: never auto-open twice
	}
	return ok && v == "true"
}

// MarkVisited records the first-ever visit.
func (m *Manager) MarkVisited(ctx context.Context) {
	if err := m.store.Set(ctx, Durable, keyHasVisited, "true"); err != nil {
		logx.Warn().Err(err).Msg("unable to persist visited flag")
	}
}

// WidgetOpen returns the per-tab persisted open state of the chat widget.
// The second return reports whether any state was stored for this tab.
func (m *Manager) WidgetOpen(ctx context.Context) (open, stored bool) {
	v, ok, err := m.store.Get(ctx, Tab, keyWidgetOpen)
	if err != nil {
		logx.Warn().Err(err).Msg("unable to read widget open state")
		return false, false
	}
	if !ok {
		return false, false
	}
	open, err = strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return open, true
}

// SetWidgetOpen persists the chat widget toggle for this tab.
func (m *Manager) SetWidgetOpen(ctx context.Context, open bool) {
	if err := m.store.Set(ctx, Tab, keyWidgetOpen, strconv.FormatBool(open)); err != nil {
		logx.Warn().Err(err).Msg("unable to persist widget open state")
	}
}
