package core

import "time"

// APIConfig holds the settings for the backend HTTP boundary.
// The timeout is generous because tariff calculations may trigger
// scraping of external sources on the backend.
type APIConfig struct {
	BaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
	Timeout int    `envconfig:"API_TIMEOUT_SECONDS" default:"60"`
}

// HTTPTimeout returns the configured request timeout as a duration.
func (c APIConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// CatalogFailureMode selects what a selector does when its option list
// cannot be fetched: leave the list empty, or substitute the static
// built-in country set.
type CatalogFailureMode string

const (
	CatalogFailEmpty    CatalogFailureMode = "empty"
	CatalogFailFallback CatalogFailureMode = "staticFallback"
)

// CatalogConfig controls selector option loading.
type CatalogConfig struct {
	OnLoadFailure string `envconfig:"CATALOG_ON_LOAD_FAILURE" default:"empty"`
}

// FailureMode normalises the configured value; anything unrecognised
// behaves as "empty".
func (c CatalogConfig) FailureMode() CatalogFailureMode {
	if CatalogFailureMode(c.OnLoadFailure) == CatalogFailFallback {
		return CatalogFailFallback
	}
	return CatalogFailEmpty
}

// AssistantConfig holds chat widget settings.
type AssistantConfig struct {
	// AutoOpen enables the once-ever auto-open of the widget on a
	// first visit, after AutoOpenDelay.
	AutoOpen      bool   `envconfig:"CHAT_AUTO_OPEN" default:"false"`
	AutoOpenDelay string `envconfig:"CHAT_AUTO_OPEN_DELAY" default:"2s"`
}

// AutoOpenAfter parses the configured delay, defaulting to 2s on bad input.
func (c AssistantConfig) AutoOpenAfter() time.Duration {
	d, err := time.ParseDuration(c.AutoOpenDelay)
	if err != nil || d < 0 {
		return 2 * time.Second
	}
	return d
}
