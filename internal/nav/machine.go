package nav

import (
	"fmt"
	"sync"

	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// Page is the single active view of the session.
type Page string

const (
	PageLogin   Page = "login"
	PageHome    Page = "home"
	PageDetail  Page = "detail"
	PageResults Page = "results"
	PageAdmin   Page = "admin"
)

// AuthView is the sub-state of the unauthenticated page.
type AuthView string

const (
	ViewLogin    AuthView = "login"
	ViewRegister AuthView = "register"
)

// Machine holds the navigation state. Exactly one page is active at a
// time; transitions happen only on explicit user actions or on settled
// async operations. The session-expiry transition may fire from any page.
type Machine struct {
	mu       sync.RWMutex
	page     Page
	authView AuthView
}

// NewMachine starts at home when a valid persisted session was restored,
// otherwise at the login entry point.
func NewMachine(authenticated bool) *Machine {
	m := &Machine{page: PageLogin, authView: ViewLogin}
	if authenticated {
		m.page = PageHome
	}
	return m
}

// Current returns the active page.
func (m *Machine) Current() Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.page
}

// AuthView returns the login/register sub-state.
func (m *Machine) AuthView() AuthView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authView
}

func (m *Machine) transition(from []Page, to Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range from {
		if m.page == p {
			logx.Debug().Str("from", string(m.page)).Str("to", string(to)).Msg("navigation")
			m.page = to
			return nil
		}
	}
	return fmt.Errorf("invalid navigation from %s to %s", m.page, to)
}

// ShowRegister switches the unauthenticated page to the register view.
func (m *Machine) ShowRegister() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page != PageLogin {
		return fmt.Errorf("register view is only reachable from login, not %s", m.page)
	}
	m.authView = ViewRegister
	return nil
}

// ShowLogin switches the unauthenticated page back to the login view.
func (m *Machine) ShowLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page != PageLogin {
		return fmt.Errorf("login view is only reachable from login, not %s", m.page)
	}
	m.authView = ViewLogin
	return nil
}

// SignedIn moves to home after a successful login or registration.
func (m *Machine) SignedIn() error {
	return m.transition([]Page{PageLogin}, PageHome)
}

// GetStarted moves from home to the transaction detail form.
func (m *Machine) GetStarted() error {
	return m.transition([]Page{PageHome}, PageDetail)
}

// CalculationSucceeded moves from detail to the results view.
func (m *Machine) CalculationSucceeded() error {
	return m.transition([]Page{PageDetail}, PageResults)
}

// BackToDetail returns from results to the form.
func (m *Machine) BackToDetail() error {
	return m.transition([]Page{PageResults}, PageDetail)
}

// BackToHome returns to home from the form or the results view.
func (m *Machine) BackToHome() error {
	return m.transition([]Page{PageDetail, PageResults}, PageHome)
}

// OpenAdmin enters the admin view; callers gate it on the user's role.
func (m *Machine) OpenAdmin(isAdmin bool) error {
	if !isAdmin {
		return fmt.Errorf("admin view requires the %q role", "ADMIN")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page == PageLogin {
		return fmt.Errorf("admin view is not reachable while unauthenticated")
	}
	m.page = PageAdmin
	return nil
}

// CloseAdmin leaves the admin view back to home.
func (m *Machine) CloseAdmin() error {
	return m.transition([]Page{PageAdmin}, PageHome)
}

// ForceLogin jumps to the login entry point from any state. It backs both
// explicit logout and the server-signaled session expiry.
func (m *Machine) ForceLogin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	logx.Debug().Str("from", string(m.page)).Msg("forcing login")
	m.page = PageLogin
	m.authView = ViewLogin
}
