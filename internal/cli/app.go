// Package cli provides the command tree of the tariffnom client.
package cli

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/assistant"
	"github.com/tariffnom/tariffnom/internal/calc"
	"github.com/tariffnom/tariffnom/internal/catalog"
	"github.com/tariffnom/tariffnom/internal/core"
	"github.com/tariffnom/tariffnom/internal/draft"
	"github.com/tariffnom/tariffnom/internal/nav"
	"github.com/tariffnom/tariffnom/internal/session"
	"github.com/tariffnom/tariffnom/internal/theme"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
	pkgredis "github.com/tariffnom/tariffnom/pkg/redis"
)

// Config defines all configurable parameters of the client, sourced from
// environment variables (loaded from .env for local runs).
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Theme       string `envconfig:"THEME" default:"dark"`

	API       core.APIConfig
	Catalog   core.CatalogConfig
	Assistant core.AssistantConfig

	// Persisted client-side state. Redis is optional; without it the
	// session falls back to process memory and nothing survives exit.
	Redis   pkgredis.Config
	TabTTL  string `envconfig:"TAB_SESSION_TTL" default:"12h"`
	ChatTTL string `envconfig:"CHAT_TRANSCRIPT_TTL" default:"30m"`
}

// App bundles the wired components behind the commands.
type App struct {
	Config    Config
	Client    *api.Client
	Sessions  *session.Manager
	Nav       *nav.Machine
	Drafts    *draft.Controller
	Calc      *calc.Orchestrator
	Assistant *assistant.Assistant
	Countries *catalog.Selector
	Products  *catalog.Selector
	Theme     theme.Tokens

	cleanup func()
}

// BuildApp wires the full component graph from config. The returned App
// has restored any persisted session, so Nav starts at home or login
// accordingly.
func BuildApp(ctx context.Context, cfg Config) (*App, error) {
	tabID := uuid.NewString()

	var store session.Store
	var transcripts assistant.TranscriptRepository
	cleanup := func() {}

	if cfg.Redis.Configured() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			return nil, err
		}
		cleanup = func() { _ = rdb.Close() }
		store = session.NewRedisStore(rdb, tabID, parseTTL(cfg.TabTTL, 12*time.Hour))
		transcripts = assistant.NewRedisTranscriptRepository(rdb, parseTTL(cfg.ChatTTL, 30*time.Minute))
	} else {
		logx.Debug().Msg("no redis configured, session state is in-memory only")
		store = session.NewMemoryStore()
	}

	sessions := session.NewManager(store)
	if err := sessions.Restore(ctx); err != nil {
		logx.Warn().Err(err).Msg("failed to restore persisted session")
	}

	machine := nav.NewMachine(sessions.IsAuthenticated())

	client := api.New(cfg.API,
		api.WithCredentialSource(sessions),
		api.WithAuthExpiredHandler(func() {
			sessions.MarkSessionExpired(context.Background())
			machine.ForceLogin()
		}),
	)

	drafts := draft.NewController(client)
	orchestrator := calc.NewOrchestrator(client, machine, drafts)

	opts := []assistant.Option{
		assistant.WithSelectionHandler(func(sel assistant.CodeSelection) {
			drafts.ApplySuggestion(context.Background(), draft.Suggestion{
				HsCode:     sel.HsCode,
				Confidence: sel.Confidence,
				Rationale:  sel.Rationale,
			})
		}),
	}
	if transcripts != nil {
		opts = append(opts, assistant.WithTranscriptRepository(transcripts))
	}
	helper := assistant.New(client, sessions, tabID, cfg.Assistant, opts...)
	helper.Start(ctx)

	mode := cfg.Catalog.FailureMode()
	app := &App{
		Config:    cfg,
		Client:    client,
		Sessions:  sessions,
		Nav:       machine,
		Drafts:    drafts,
		Calc:      orchestrator,
		Assistant: helper,
		Countries: catalog.NewSelector(draft.FieldImportCountry, catalog.CountryLoader(client), mode),
		Products:  catalog.NewSelector(draft.FieldHsCode, catalog.ProductLoader(client), core.CatalogFailEmpty),
		Theme:     theme.Colours(theme.Mode(cfg.Theme)),
		cleanup:   cleanup,
	}
	return app, nil
}

// Shutdown releases held resources.
func (a *App) Shutdown() {
	a.Assistant.Close()
	a.cleanup()
}

func parseTTL(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
