package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/tariffnom/tariffnom/internal/core"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// Option is one selectable entry, covering both countries and products.
type Option struct {
	Code        string
	Name        string
	Description string
	Category    string
}

// ChangeEvent is the plain {name, value} pair a selector emits on pick,
// consumed by the generic field-update handler.
type ChangeEvent struct {
	Name  string
	Value string
}

// LoadState tracks the option list lifecycle.
type LoadState int

const (
	LoadIdle LoadState = iota
	Loading
	Loaded
	LoadFailed
)

// Loader fetches the full option list from the backend.
type Loader func(ctx context.Context) ([]Option, error)

// staticCountryFallback is the historical built-in list substituted on
// fetch failure when the selector is configured with staticFallback.
var staticCountryFallback = []Option{
	{Code: "US", Name: "United States"},
	{Code: "CN", Name: "China"},
	{Code: "SG", Name: "Singapore"},
	{Code: "MY", Name: "Malaysia"},
	{Code: "GB", Name: "United Kingdom"},
}

// StaticCountryFallback returns a copy of the built-in country list.
func StaticCountryFallback() []Option {
	out := make([]Option, len(staticCountryFallback))
	copy(out, staticCountryFallback)
	return out
}

// Selector owns one async-loaded option list with client-side filtering.
type Selector struct {
	field string
	load  Loader
	mode  core.CatalogFailureMode

	mu      sync.RWMutex
	state   LoadState
	options []Option
	loadErr string
}

func NewSelector(field string, load Loader, mode core.CatalogFailureMode) *Selector {
	return &Selector{field: field, load: load, mode: mode}
}

// Load fetches the option list. On failure the selector stays usable in a
// degraded state: a descriptive error classified by cause, and either an
// empty list or the static fallback depending on configuration.
func (s *Selector) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = Loading
	s.loadErr = ""
	s.mu.Unlock()

	options, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		logx.Warn().Err(err).Str("field", s.field).Msg("option list fetch failed")
		s.state = LoadFailed
		s.loadErr = failureMessage(err)
		s.options = nil
		if s.mode == core.CatalogFailFallback {
			s.options = StaticCountryFallback()
		}
		return err
	}
	s.state = Loaded
	s.options = options
	return nil
}

// failureMessage classifies a load failure by cause for display.
func failureMessage(err error) string {
	const prefix = "Failed to load options. "
	switch errx.KindOf(err) {
	case errx.KindNetwork:
		return prefix + "Network connection failed. Please check your internet connection."
	case errx.KindNotFound:
		return prefix + "Endpoint not found. Please check the API configuration."
	case errx.KindServer:
		return prefix + "Server error occurred. Please try again later."
	case errx.KindTimeout:
		return prefix + "Request timed out. Please try again."
	default:
		return prefix + "Error: " + errx.DisplayMessage(err)
	}
}

// Filter returns the options whose code, name, description or category
// contains the term, case-insensitively. Filtering is client-side only,
// over the already-fetched set; an empty term returns everything.
func (s *Selector) Filter(term string) []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if term == "" {
		out := make([]Option, len(s.options))
		copy(out, s.options)
		return out
	}

	needle := strings.ToLower(term)
	var out []Option
	for _, opt := range s.options {
		if strings.Contains(strings.ToLower(opt.Code), needle) ||
			strings.Contains(strings.ToLower(opt.Name), needle) ||
			strings.Contains(strings.ToLower(opt.Description), needle) ||
			strings.Contains(strings.ToLower(opt.Category), needle) {
			out = append(out, opt)
		}
	}
	return out
}

// Select emits the change event for the picked code, shaped like any other
// field update so the host wires it into the generic handler uniformly.
func (s *Selector) Select(code string) ChangeEvent {
	return ChangeEvent{Name: s.field, Value: code}
}

// State returns the load lifecycle state.
func (s *Selector) State() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ErrorMessage returns the classified load failure message, if any.
func (s *Selector) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Options returns the fetched (or fallback) option list.
func (s *Selector) Options() []Option {
	return s.Filter("")
}
