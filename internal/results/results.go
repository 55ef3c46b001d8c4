package results

import (
	"context"
	"sync"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	"github.com/tariffnom/tariffnom/internal/draft"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// AnalysisAPI provides the two auxiliary analyses composed on the results
// page.
type AnalysisAPI interface {
	AnalyzeExchangeRates(ctx context.Context, importingCountry, exportingCountry string) (*api.ExchangeRateAnalysis, error)
	Predict(ctx context.Context, importingCountry, exportingCountry string, enableNewsAnalysis bool) (*api.Prediction, error)
}

// RatesPanel is the independently fetched exchange-rate trend panel.
type RatesPanel struct {
	Loading bool
	Err     string
	Data    *api.ExchangeRateAnalysis
}

// PredictionPanel is the independently fetched purchase-recommendation panel.
type PredictionPanel struct {
	Loading bool
	Err     string
	Data    *api.Prediction
}

// View composes the cost breakdown with the two analytical panels. It is
// constructed only from a result/draft pair produced together, so a stale
// breakdown never renders against a newer draft.
type View struct {
	backend AnalysisAPI

	mu         sync.Mutex
	result     api.TariffResult
	source     draft.Draft
	rates      RatesPanel
	prediction PredictionPanel
	enableNews bool
}

func NewView(backend AnalysisAPI, result api.TariffResult, source draft.Draft) *View {
	return &View{backend: backend, result: result, source: source, enableNews: true}
}

// SetNewsAnalysis controls the enableNewsAnalysis flag sent to the
// predictive endpoint.
func (v *View) SetNewsAnalysis(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enableNews = enabled
}

// LoadPanels fetches both analyses concurrently. Each panel fails
// independently: a broken panel shows its own error while the cost
// breakdown and the other panel stay usable.
func (v *View) LoadPanels(ctx context.Context) {
	v.mu.Lock()
	importing := v.result.ImportingCountry
	exporting := v.result.ExportingCountry
	enableNews := v.enableNews
	v.rates = RatesPanel{Loading: true}
	v.prediction = PredictionPanel{Loading: true}
	v.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		analysis, err := v.backend.AnalyzeExchangeRates(ctx, importing, exporting)
		v.mu.Lock()
		defer v.mu.Unlock()
		v.rates.Loading = false
		if err != nil {
			logx.Warn().Err(err).Msg("exchange rate panel failed")
			v.rates.Err = errx.DisplayMessage(err)
			return
		}
		v.rates.Data = analysis
	}()

	go func() {
		defer wg.Done()
		prediction, err := v.backend.Predict(ctx, importing, exporting, enableNews)
		v.mu.Lock()
		defer v.mu.Unlock()
		v.prediction.Loading = false
		if err != nil {
			logx.Warn().Err(err).Msg("predictive panel failed")
			v.prediction.Err = errx.DisplayMessage(err)
			return
		}
		v.prediction.Data = prediction
	}()

	wg.Wait()
}

// Result returns the cost breakdown this view renders.
func (v *View) Result() api.TariffResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// Source returns the draft that produced the result.
func (v *View) Source() draft.Draft {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source
}

// ExchangeRates returns the trend panel state.
func (v *View) ExchangeRates() RatesPanel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rates
}

// Prediction returns the recommendation panel state.
func (v *View) Prediction() PredictionPanel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.prediction
}
