package api

import (
	"github.com/shopspring/decimal"
)

// Country is an importable/exportable country option.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// countryWire is the backend representation; Countries maps it to Country.
type countryWire struct {
	CountryCode string `json:"countryCode"`
	CountryName string `json:"countryName"`
}

// Product is a catalog entry keyed by HS code.
type Product struct {
	HsCode      string `json:"hsCode"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TariffRequest is the body of POST /tariff/calculate.
type TariffRequest struct {
	ImportingCountry string           `json:"importingCountry"`
	ExportingCountry string           `json:"exportingCountry"`
	HsCode           string           `json:"hsCode"`
	ProductValue     decimal.Decimal  `json:"productValue"`
	Weight           *decimal.Decimal `json:"weight"`
	ShippingMode     *string          `json:"shippingMode"`
	Year             *int             `json:"year"`
}

// TariffResult is the server-returned cost breakdown. Immutable once
// received; monetary and rate fields keep decimal precision end to end.
type TariffResult struct {
	ImportingCountry  string          `json:"importingCountry"`
	ExportingCountry  string          `json:"exportingCountry"`
	HsCode            string          `json:"hsCode"`
	ProductValue      decimal.Decimal `json:"productValue"`
	CustomsValue      decimal.Decimal `json:"customsValue"`
	BaseDuty          decimal.Decimal `json:"baseDuty"`
	AdditionalDuties  decimal.Decimal `json:"additionalDuties"`
	AdValoremRate     decimal.Decimal `json:"adValoremRate"`
	VatRate           decimal.Decimal `json:"vatRate"`
	VatOrGst          decimal.Decimal `json:"vatOrGst"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	ShippingRatePerKg decimal.Decimal `json:"shippingRatePerKg"`
	TariffAmount      decimal.Decimal `json:"tariffAmount"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	TotalWeight       decimal.Decimal `json:"totalWeight"`
	TradeAgreement    string          `json:"tradeAgreement"`
	Year              int             `json:"year"`
	CalculationDate   string          `json:"calculationDate"`
	Notes             string          `json:"notes,omitempty"`
}

// ExchangeRatePoint is one observation of the historical series.
type ExchangeRatePoint struct {
	Date string          `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// ExchangeRateAnalysis is the body returned by POST /exchange-rates/analyze.
type ExchangeRateAnalysis struct {
	ImportingCountry        string              `json:"importingCountry"`
	ExportingCountry        string              `json:"exportingCountry"`
	ImportingCurrency       string              `json:"importingCurrency"`
	ExportingCurrency       string              `json:"exportingCurrency"`
	CurrentRate             decimal.Decimal     `json:"currentRate"`
	CurrentRateDate         string              `json:"currentRateDate"`
	AverageRate             decimal.Decimal     `json:"averageRate"`
	MinRate                 decimal.Decimal     `json:"minRate"`
	MinRateDate             string              `json:"minRateDate"`
	MaxRate                 decimal.Decimal     `json:"maxRate"`
	MaxRateDate             string              `json:"maxRateDate"`
	RecommendedPurchaseDate string              `json:"recommendedPurchaseDate"`
	Recommendation          string              `json:"recommendation"`
	TrendAnalysis           string              `json:"trendAnalysis"`
	HistoricalRates         []ExchangeRatePoint `json:"historicalRates"`
	LiveDataAvailable       bool                `json:"liveDataAvailable"`
	DataSource              string              `json:"dataSource"`
	Message                 string              `json:"message"`
}

// NewsHeadline supports a predictive recommendation with a sample article.
type NewsHeadline struct {
	Title          string  `json:"title"`
	Source         string  `json:"source"`
	PublishedAt    string  `json:"publishedAt"`
	SentimentScore float64 `json:"sentimentScore"`
	URL            string  `json:"url"`
}

// SentimentPoint is one week of aggregated news sentiment.
type SentimentPoint struct {
	WeekStart        string  `json:"weekStart"`
	WeekEnd          string  `json:"weekEnd"`
	AverageSentiment float64 `json:"averageSentiment"`
	ArticleCount     int     `json:"articleCount"`
}

// Prediction is the body returned by GET /predictive-analysis/predict.
// Recommendation is one of BUY, WAIT or HOLD.
type Prediction struct {
	ImportingCountry    string           `json:"importingCountry"`
	ExportingCountry    string           `json:"exportingCountry"`
	Recommendation      string           `json:"recommendation"`
	ConfidenceScore     float64          `json:"confidenceScore"`
	Rationale           string           `json:"rationale"`
	CurrentSentiment    float64          `json:"currentSentiment"`
	SentimentTrend      string           `json:"sentimentTrend"`
	ArticlesAnalyzed    int              `json:"articlesAnalyzed"`
	CurrentExchangeRate decimal.Decimal  `json:"currentExchangeRate"`
	ExchangeRateTrend   string           `json:"exchangeRateTrend"`
	SupportingHeadlines []NewsHeadline   `json:"supportingHeadlines"`
	SentimentHistory    []SentimentPoint `json:"sentimentHistory"`
	LiveNewsAvailable   bool             `json:"liveNewsAvailable"`
	DataSource          string           `json:"dataSource"`
	Message             string           `json:"message"`
	AnalysisTimestamp   string           `json:"analysisTimestamp"`
}

// HsPreviousAnswer records one answered disambiguation question, replayed
// to the resolver on every subsequent turn of the session.
type HsPreviousAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// HsResolveRequest is the body of POST /hs/resolve.
type HsResolveRequest struct {
	QueryID         string             `json:"queryId,omitempty"`
	ProductName     string             `json:"productName"`
	Description     string             `json:"description"`
	Attributes      []string           `json:"attributes,omitempty"`
	PreviousAnswers []HsPreviousAnswer `json:"previousAnswers,omitempty"`
	SessionID       string             `json:"sessionId,omitempty"`
	ConsentLogging  bool               `json:"consentLogging"`
}

// HsCandidate is a suggested HS code with the resolver's confidence.
type HsCandidate struct {
	HsCode     string  `json:"hsCode"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Source     string  `json:"source,omitempty"`
}

// DisambiguationQuestion narrows the match when several candidates are
// plausible. Options, when present, are offered as one-click answers.
type DisambiguationQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// PreviousHsSelection is a historical pick surfaced in fallback info.
type PreviousHsSelection struct {
	HsCode     string  `json:"hsCode"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

// FallbackInfo is returned when the resolver cannot produce candidates.
type FallbackInfo struct {
	LastUsedCodes   []PreviousHsSelection `json:"lastUsedCodes,omitempty"`
	ManualSearchURL string                `json:"manualSearchUrl,omitempty"`
}

// Notice carries resolver side-channel messages such as privacy notes.
type Notice struct {
	Message          string `json:"message,omitempty"`
	PrivacyPolicyURL string `json:"privacyPolicyUrl,omitempty"`
	ConsentGranted   *bool  `json:"consentGranted,omitempty"`
}

// HsResolveResponse is the resolver's reply for one turn.
type HsResolveResponse struct {
	SessionID               string                   `json:"sessionId"`
	QueryID                 string                   `json:"queryId"`
	Candidates              []HsCandidate            `json:"candidates"`
	DisambiguationQuestions []DisambiguationQuestion `json:"disambiguationQuestions"`
	Fallback                *FallbackInfo            `json:"fallback,omitempty"`
	Notice                  *Notice                  `json:"notice,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the authenticated user record persisted client-side.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType,omitempty"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
	User      User   `json:"user"`
}
