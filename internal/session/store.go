package session

import "context"

// Scope separates the two persistence lifetimes the UI relies on.
//
// Durable entries survive restarts (auth token, user record, the once-ever
// visited flag). Tab entries live only for the current tab session (chat
// widget open state) and expire on their own.
type Scope int

const (
	Durable Scope = iota
	Tab
)

// Store is the client-side persisted state boundary. Get reports absence
// via the bool, never via an error, so callers can treat missing keys as
// ordinary state.
type Store interface {
	Get(ctx context.Context, scope Scope, key string) (string, bool, error)
	Set(ctx context.Context, scope Scope, key string, value string) error
	Delete(ctx context.Context, scope Scope, key string) error
}
