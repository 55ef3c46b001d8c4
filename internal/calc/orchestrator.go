package calc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	"github.com/tariffnom/tariffnom/internal/draft"
	"github.com/tariffnom/tariffnom/internal/nav"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// ErrCalculationInFlight rejects a submit while one is outstanding; the
// submit control is disabled for the same reason while Loading is true.
var ErrCalculationInFlight = errors.New("a calculation is already in progress")

// TariffAPI is the calculation endpoint the orchestrator dispatches to.
type TariffAPI interface {
	CalculateTariff(ctx context.Context, req api.TariffRequest) (*api.TariffResult, error)
}

// Orchestrator owns the in-flight calculation and the stored result, and
// drives navigation between the detail form and the results view. The
// result is cleared on every back-to-home navigation so a stale breakdown
// can never render against a newer draft.
type Orchestrator struct {
	backend TariffAPI
	nav     *nav.Machine
	drafts  *draft.Controller

	mu      sync.Mutex
	loading bool
	result  *api.TariffResult
	errMsg  string
	gen     int
}

func NewOrchestrator(backend TariffAPI, machine *nav.Machine, drafts *draft.Controller) *Orchestrator {
	return &Orchestrator{backend: backend, nav: machine, drafts: drafts}
}

// Submit validates the current draft and runs the calculation. Validation
// failures surface inline and never reach the network. Only one
// calculation may be in flight at a time; the loading flag is cleared on
// every path. On success the result is stored and navigation moves to
// results; on failure the error message is kept and the page stays put.
func (o *Orchestrator) Submit(ctx context.Context) error {
	d := o.drafts.Snapshot()

	if verr := draft.ValidateForSubmit(d, time.Now()); verr != nil {
		o.mu.Lock()
		o.errMsg = verr.Message
		o.mu.Unlock()
		return verr
	}

	o.mu.Lock()
	if o.loading {
		o.mu.Unlock()
		return ErrCalculationInFlight
	}
	o.loading = true
	o.errMsg = ""
	gen := o.gen
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.loading = false
		o.mu.Unlock()
	}()

	req, err := d.ToRequest()
	if err != nil {
		o.mu.Lock()
		o.errMsg = errx.SystemErrorMessage
		o.mu.Unlock()
		return err
	}

	logx.Info().Str("hsCode", req.HsCode).Str("importing", req.ImportingCountry).
		Str("exporting", req.ExportingCountry).Msg("submitting tariff calculation")

	result, err := o.backend.CalculateTariff(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		// user navigated home while the request was in flight
		logx.Debug().Msg("discarding calculation response for abandoned view")
		return nil
	}
	if err != nil {
		o.errMsg = errx.DisplayMessage(err)
		return err
	}

	o.result = result
	if terr := o.nav.CalculationSucceeded(); terr != nil {
		logx.Warn().Err(terr).Msg("calculation settled outside the detail page")
	}
	return nil
}

// Loading reports whether a calculation is outstanding.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Result returns the stored cost breakdown, if one is held.
func (o *Orchestrator) Result() (api.TariffResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return api.TariffResult{}, false
	}
	return *o.result, true
}

// ErrorMessage returns the message shown on the detail page, if any.
func (o *Orchestrator) ErrorMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}

// Back returns from results to the detail form, clearing the error but
// keeping the result and the draft.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	o.errMsg = ""
	o.mu.Unlock()
	return o.nav.BackToDetail()
}

// BackToHome leaves for home, clearing the error, the stored result and
// the draft, and abandoning any response still in flight.
func (o *Orchestrator) BackToHome() error {
	o.mu.Lock()
	o.errMsg = ""
	o.result = nil
	o.gen++
	o.mu.Unlock()
	o.drafts.Reset()
	return o.nav.BackToHome()
}
