package calc

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	"github.com/tariffnom/tariffnom/internal/draft"
	"github.com/tariffnom/tariffnom/internal/nav"
)

type stubBackend struct {
	mu      sync.Mutex
	result  *api.TariffResult
	err     error
	release chan struct{}
	started chan struct{}
	calls   int
}

func (s *stubBackend) CalculateTariff(ctx context.Context, req api.TariffRequest) (*api.TariffResult, error) {
	s.mu.Lock()
	s.calls++
	if s.started != nil && s.calls == 1 {
		close(s.started)
	}
	release := s.release
	s.mu.Unlock()
	if release != nil {
		<-release
	}
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	r.HsCode = req.HsCode
	return &r, nil
}

func (s *stubBackend) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type nullLookup struct{}

func (nullLookup) ProductByHsCode(ctx context.Context, hsCode string) (*api.Product, error) {
	return &api.Product{HsCode: hsCode}, nil
}

func fixture(t *testing.T, backend TariffAPI) (*Orchestrator, *draft.Controller, *nav.Machine) {
	t.Helper()
	machine := nav.NewMachine(true)
	require.NoError(t, machine.GetStarted())
	drafts := draft.NewController(nullLookup{})
	for name, value := range map[string]string{
		draft.FieldImportCountry: "SG",
		draft.FieldExportCountry: "CN",
		draft.FieldHsCode:        "9603.21.00",
		draft.FieldValue:         "500",
		draft.FieldShippingMode:  "sea",
	} {
		drafts.UpdateField(context.Background(), name, value)
	}
	drafts.WaitLookups()
	return NewOrchestrator(backend, machine, drafts), drafts, machine
}

func TestSubmit_ValidationFailureSkipsBackend(t *testing.T) {
	backend := &stubBackend{result: &api.TariffResult{}}
	o, drafts, machine := fixture(t, backend)
	drafts.UpdateField(context.Background(), draft.FieldExportCountry, "SG")

	err := o.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, errx.KindValidation, errx.KindOf(err))
	assert.Equal(t, "Import country and export country cannot be the same", o.ErrorMessage())
	assert.Zero(t, backend.callCount())
	assert.False(t, o.Loading())
	assert.Equal(t, nav.PageDetail, machine.Current())
}

func TestSubmit_SuccessStoresResultAndNavigates(t *testing.T) {
	backend := &stubBackend{result: &api.TariffResult{
		TotalCost: decimal.NewFromInt(625),
	}}
	o, _, machine := fixture(t, backend)

	require.NoError(t, o.Submit(context.Background()))

	assert.False(t, o.Loading())
	assert.Empty(t, o.ErrorMessage())
	assert.Equal(t, nav.PageResults, machine.Current())

	result, ok := o.Result()
	require.True(t, ok)
	assert.Equal(t, "9603.21.00", result.HsCode)
	assert.Equal(t, "625", result.TotalCost.String())
}

func TestSubmit_BackendFailureStaysOnDetail(t *testing.T) {
	backend := &stubBackend{err: errx.New(nil, errx.KindServer, 500, "Internal server error")}
	o, drafts, machine := fixture(t, backend)

	err := o.Submit(context.Background())
	require.Error(t, err)

	assert.False(t, o.Loading())
	assert.Equal(t, "Internal server error", o.ErrorMessage())
	assert.Equal(t, nav.PageDetail, machine.Current())
	_, ok := o.Result()
	assert.False(t, ok)
	// the draft survives for correction and resubmit
	assert.Equal(t, "9603.21.00", drafts.Snapshot().HsCode)
}

func TestSubmit_RejectsConcurrentCalculation(t *testing.T) {
	release := make(chan struct{})
	backend := &stubBackend{result: &api.TariffResult{}, release: release, started: make(chan struct{})}
	o, _, _ := fixture(t, backend)

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()
	<-backend.started

	assert.True(t, o.Loading())
	assert.ErrorIs(t, o.Submit(context.Background()), ErrCalculationInFlight)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.callCount())
}

func TestBackToHome_AbandonsInFlightResponse(t *testing.T) {
	release := make(chan struct{})
	backend := &stubBackend{result: &api.TariffResult{}, release: release, started: make(chan struct{})}
	o, drafts, machine := fixture(t, backend)

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background()) }()
	<-backend.started

	require.NoError(t, o.BackToHome())
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, nav.PageHome, machine.Current())
	_, ok := o.Result()
	assert.False(t, ok)
	assert.True(t, drafts.Snapshot().IsEmpty())
	assert.False(t, o.Loading())
}

func TestBack_ClearsErrorKeepsResult(t *testing.T) {
	backend := &stubBackend{result: &api.TariffResult{}}
	o, _, machine := fixture(t, backend)
	require.NoError(t, o.Submit(context.Background()))
	require.Equal(t, nav.PageResults, machine.Current())

	require.NoError(t, o.Back())
	assert.Equal(t, nav.PageDetail, machine.Current())
	assert.Empty(t, o.ErrorMessage())
	_, ok := o.Result()
	assert.True(t, ok)
}
