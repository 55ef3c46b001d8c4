package results

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	"github.com/tariffnom/tariffnom/internal/draft"
)

type stubAnalysis struct {
	rates      *api.ExchangeRateAnalysis
	ratesErr   error
	prediction *api.Prediction
	predictErr error

	gotImporting string
	gotExporting string
	gotNews      bool
}

func (s *stubAnalysis) AnalyzeExchangeRates(ctx context.Context, importing, exporting string) (*api.ExchangeRateAnalysis, error) {
	s.gotImporting = importing
	s.gotExporting = exporting
	if s.ratesErr != nil {
		return nil, s.ratesErr
	}
	return s.rates, nil
}

func (s *stubAnalysis) Predict(ctx context.Context, importing, exporting string, enableNews bool) (*api.Prediction, error) {
	s.gotNews = enableNews
	if s.predictErr != nil {
		return nil, s.predictErr
	}
	return s.prediction, nil
}

func testResult() api.TariffResult {
	return api.TariffResult{
		ImportingCountry: "SG",
		ExportingCountry: "CN",
		HsCode:           "9603.21.00",
		TotalCost:        decimal.NewFromInt(625),
	}
}

func TestLoadPanels_BothSucceed(t *testing.T) {
	backend := &stubAnalysis{
		rates:      &api.ExchangeRateAnalysis{CurrentRate: decimal.RequireFromString("5.21"), Recommendation: "Buy now"},
		prediction: &api.Prediction{Recommendation: "BUY", ConfidenceScore: 0.8},
	}
	v := NewView(backend, testResult(), draft.Draft{HsCode: "9603.21.00"})
	v.LoadPanels(context.Background())

	rates := v.ExchangeRates()
	assert.False(t, rates.Loading)
	assert.Empty(t, rates.Err)
	require.NotNil(t, rates.Data)
	assert.Equal(t, "Buy now", rates.Data.Recommendation)

	prediction := v.Prediction()
	assert.False(t, prediction.Loading)
	require.NotNil(t, prediction.Data)
	assert.Equal(t, "BUY", prediction.Data.Recommendation)

	assert.Equal(t, "SG", backend.gotImporting)
	assert.Equal(t, "CN", backend.gotExporting)
	assert.True(t, backend.gotNews)
}

func TestLoadPanels_FailIndependently(t *testing.T) {
	backend := &stubAnalysis{
		ratesErr:   errx.New(nil, errx.KindServer, 500, "Exchange rate service unavailable"),
		prediction: &api.Prediction{Recommendation: "HOLD"},
	}
	v := NewView(backend, testResult(), draft.Draft{})
	v.LoadPanels(context.Background())

	rates := v.ExchangeRates()
	assert.False(t, rates.Loading)
	assert.Equal(t, "Exchange rate service unavailable", rates.Err)
	assert.Nil(t, rates.Data)

	prediction := v.Prediction()
	assert.Empty(t, prediction.Err)
	require.NotNil(t, prediction.Data)

	// the cost breakdown is untouched by panel failures
	assert.Equal(t, "9603.21.00", v.Result().HsCode)
}

func TestSetNewsAnalysisFlag(t *testing.T) {
	backend := &stubAnalysis{
		rates:      &api.ExchangeRateAnalysis{},
		prediction: &api.Prediction{},
	}
	v := NewView(backend, testResult(), draft.Draft{})
	v.SetNewsAnalysis(false)
	v.LoadPanels(context.Background())
	assert.False(t, backend.gotNews)
}

func TestSourceDraftTravelsWithResult(t *testing.T) {
	source := draft.Draft{ImportCountry: "SG", ExportCountry: "CN", HsCode: "9603.21.00", Value: "500"}
	v := NewView(&stubAnalysis{rates: &api.ExchangeRateAnalysis{}, prediction: &api.Prediction{}}, testResult(), source)
	assert.Equal(t, source, v.Source())
}
