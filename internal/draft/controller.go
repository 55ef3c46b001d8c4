package draft

import (
	"context"
	"sync"

	"github.com/tariffnom/tariffnom/internal/api"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// ProductLookup resolves an HS code to its catalog entry.
type ProductLookup interface {
	ProductByHsCode(ctx context.Context, hsCode string) (*api.Product, error)
}

// Suggestion is an HS code handed over by the assistant, kept so the form
// can flag the field with an attribution note.
type Suggestion struct {
	HsCode     string
	Confidence *float64
	Rationale  string
}

// Controller owns the transaction draft: one instance per session. Field
// updates are synchronous; the product lookup a hsCode edit triggers is
// fire-and-forget and guarded by a generation counter so a stale response
// never overwrites the cache after a newer edit or a reset.
type Controller struct {
	lookup ProductLookup

	mu         sync.Mutex
	draft      Draft
	selected   *api.Product
	suggestion *Suggestion
	lookupGen  int
	wg         sync.WaitGroup
}

func NewController(lookup ProductLookup) *Controller {
	return &Controller{lookup: lookup}
}

// UpdateField sets one named field. A hsCode change additionally kicks off
// an async product lookup; a lookup failure only clears the cached product,
// it is never surfaced to the user.
func (c *Controller) UpdateField(ctx context.Context, name, value string) {
	c.mu.Lock()
	switch name {
	case FieldImportCountry:
		c.draft.ImportCountry = value
	case FieldExportCountry:
		c.draft.ExportCountry = value
	case FieldHsCode:
		c.draft.HsCode = value
	case FieldValue:
		c.draft.Value = value
	case FieldWeight:
		c.draft.Weight = value
	case FieldYear:
		c.draft.Year = value
	case FieldShippingMode:
		c.draft.ShippingMode = value
	default:
		c.mu.Unlock()
		logx.Warn().Str("field", name).Msg("ignoring update for unknown field")
		return
	}

	if name != FieldHsCode {
		c.mu.Unlock()
		return
	}

	c.lookupGen++
	gen := c.lookupGen
	if value == "" {
		c.selected = nil
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go c.fetchProduct(ctx, gen, value)
}

func (c *Controller) fetchProduct(ctx context.Context, gen int, hsCode string) {
	defer c.wg.Done()
	product, err := c.lookup.ProductByHsCode(ctx, hsCode)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.lookupGen {
		// a newer edit superseded this lookup
		return
	}
	if err != nil {
		logx.Debug().Err(err).Str("hsCode", hsCode).Msg("product lookup failed")
		c.selected = nil
		return
	}
	c.selected = product
}

// ApplySuggestion pre-fills the hsCode field from the assistant and keeps
// the attribution so the form can flag the field.
func (c *Controller) ApplySuggestion(ctx context.Context, s Suggestion) {
	c.mu.Lock()
	c.suggestion = &s
	c.mu.Unlock()
	c.UpdateField(ctx, FieldHsCode, s.HsCode)
}

// Suggestion returns the assistant attribution, but only while the draft's
// hsCode still matches the suggested code; a manual edit hides the note.
func (c *Controller) Suggestion() (Suggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suggestion == nil || c.suggestion.HsCode != c.draft.HsCode {
		return Suggestion{}, false
	}
	return *c.suggestion, true
}

// Snapshot returns a copy of the current draft.
func (c *Controller) Snapshot() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SelectedProduct returns the cached product for the draft's hsCode.
func (c *Controller) SelectedProduct() (api.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return api.Product{}, false
	}
	return *c.selected, true
}

// Reset clears the draft, the cached product and any attribution. It is
// called on navigation back to home and on logout. The generation bump
// discards responses of lookups still in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
	c.selected = nil
	c.suggestion = nil
	c.lookupGen++
}

// WaitLookups blocks until outstanding product lookups settle. Test helper.
func (c *Controller) WaitLookups() {
	c.wg.Wait()
}
