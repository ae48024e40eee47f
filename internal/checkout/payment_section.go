package checkout

import (
	"context"
	"errors"
	"sync"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/refresh"
	"checkout-gateway/internal/validation"
)

// MethodsAPI is the slice of the payment API the section needs.
type MethodsAPI interface {
	GetPaymentMethods(ctx context.Context) ([]models.SavedPaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, paymentMethodID string, setAsDefault bool) (*models.AttachMethodResponse, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
	SetDefaultPaymentMethod(ctx context.Context, paymentMethodID string) error
}

// Tokenizer turns raw card input into an opaque payment method token. Without
// one the add-card flow is unavailable.
type Tokenizer interface {
	CreateCardToken(ctx context.Context, data models.PaymentMethodFormData) (string, error)
}

var ErrNoTokenizer = errors.New("card entry is not available: no tokenizer configured")

// PaymentSectionConfig wires the section's collaborators. OnSelect receives
// the selected method id (empty when the selection is cleared); OnError
// receives every failure instead of it being thrown up the call stack.
// Confirm is the blocking yes/no prompt guarding deletion.
type PaymentSectionConfig struct {
	API       MethodsAPI
	Tokenizer Tokenizer
	Bus       *refresh.Bus
	OnSelect  func(paymentMethodID string)
	OnError   func(err error)
	Confirm   func(prompt string) bool
}

// PaymentSection manages the saved-method list, the current selection, and
// the add-card flow. A closed section applies no further state updates.
type PaymentSection struct {
	cfg PaymentSectionConfig

	mu          sync.Mutex
	methods     []models.SavedPaymentMethod
	selectedID  string
	showAddForm bool
	loading     bool
	busy        bool
	closed      bool
	unsubscribe func()
}

func NewPaymentSection(cfg PaymentSectionConfig) *PaymentSection {
	if cfg.OnSelect == nil {
		cfg.OnSelect = func(string) {}
	}
	if cfg.OnError == nil {
		cfg.OnError = func(error) {}
	}
	if cfg.Confirm == nil {
		cfg.Confirm = func(string) bool { return false }
	}
	return &PaymentSection{cfg: cfg}
}

// Start performs the mount-time fetch and subscribes to the refresh bus. The
// default method, when present, is auto-selected and reported via OnSelect;
// this is the only automatic selection.
func (p *PaymentSection) Start(ctx context.Context) {
	if p.cfg.Bus != nil {
		p.unsubscribe = p.cfg.Bus.Subscribe(func() {
			p.refreshMethods(ctx)
		})
	}

	if !p.refreshMethods(ctx) {
		return
	}

	p.mu.Lock()
	var defaultID string
	for _, m := range p.methods {
		if m.IsDefault {
			defaultID = m.ID
			break
		}
	}
	if defaultID != "" {
		p.selectedID = defaultID
	}
	p.mu.Unlock()

	if defaultID != "" {
		p.cfg.OnSelect(defaultID)
	}
}

// Close marks the section unmounted: pending results are dropped and the bus
// subscription is released.
func (p *PaymentSection) Close() {
	p.mu.Lock()
	p.closed = true
	unsub := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// refreshMethods re-fetches the saved-method list. It completes before any
// dependent selection logic runs; callers sequence refresh-then-select.
func (p *PaymentSection) refreshMethods(ctx context.Context) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.loading = true
	p.mu.Unlock()

	methods, err := p.cfg.API.GetPaymentMethods(ctx)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.loading = false
	if err != nil {
		p.mu.Unlock()
		p.cfg.OnError(err)
		return false
	}
	p.methods = methods
	p.mu.Unlock()
	return true
}

func (p *PaymentSection) Methods() []models.SavedPaymentMethod {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.SavedPaymentMethod, len(p.methods))
	copy(out, p.methods)
	return out
}

func (p *PaymentSection) SelectedID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedID
}

func (p *PaymentSection) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *PaymentSection) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *PaymentSection) AddFormVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.showAddForm
}

func (p *PaymentSection) ShowAddForm() {
	p.mu.Lock()
	p.showAddForm = true
	p.mu.Unlock()
}

func (p *PaymentSection) HideAddForm() {
	p.mu.Lock()
	p.showAddForm = false
	p.mu.Unlock()
}

// Select records an explicit user selection.
func (p *PaymentSection) Select(paymentMethodID string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.selectedID = paymentMethodID
	p.mu.Unlock()

	p.cfg.OnSelect(paymentMethodID)
}

// AddCard runs the add-card flow: validate, tokenize, and, only when the
// user opted to save, attach the token and refresh the list before selecting
// it. An unsaved token is selected for this transaction only and never
// attached. Field validation failures come back in the returned map; network
// and processor failures land in the general slot and the OnError callback.
func (p *PaymentSection) AddCard(ctx context.Context, data models.PaymentMethodFormData) models.PaymentFormErrors {
	if errs := validation.ValidatePaymentForm(data); len(errs) > 0 {
		return errs
	}

	if p.cfg.Tokenizer == nil {
		p.cfg.OnError(ErrNoTokenizer)
		return models.PaymentFormErrors{models.PaymentFieldGeneral: ErrNoTokenizer.Error()}
	}

	p.mu.Lock()
	if p.closed || p.busy {
		p.mu.Unlock()
		return nil
	}
	p.busy = true
	p.mu.Unlock()
	defer p.clearBusy()

	token, err := p.cfg.Tokenizer.CreateCardToken(ctx, data)
	if err != nil {
		p.cfg.OnError(err)
		return models.PaymentFormErrors{models.PaymentFieldGeneral: err.Error()}
	}

	if data.SaveCard {
		if _, err := p.cfg.API.AttachPaymentMethod(ctx, token, data.SetAsDefault); err != nil {
			p.cfg.OnError(err)
			return models.PaymentFormErrors{models.PaymentFieldGeneral: err.Error()}
		}
		// Refresh completes before the new method is selected.
		if !p.refreshMethods(ctx) {
			return nil
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.selectedID = token
	p.showAddForm = false
	p.mu.Unlock()

	p.cfg.OnSelect(token)
	return nil
}

// Delete detaches a saved method after a blocking confirmation. Deleting the
// selected method clears the selection and reports the empty selection.
func (p *PaymentSection) Delete(ctx context.Context, paymentMethodID string) {
	if !p.cfg.Confirm("Delete this payment method?") {
		return
	}

	p.mu.Lock()
	if p.closed || p.busy {
		p.mu.Unlock()
		return
	}
	p.busy = true
	p.mu.Unlock()
	defer p.clearBusy()

	if err := p.cfg.API.DetachPaymentMethod(ctx, paymentMethodID); err != nil {
		p.cfg.OnError(err)
		return
	}

	p.refreshMethods(ctx)

	p.mu.Lock()
	cleared := false
	if !p.closed && p.selectedID == paymentMethodID {
		p.selectedID = ""
		cleared = true
	}
	p.mu.Unlock()

	if cleared {
		p.cfg.OnSelect("")
	}
}

// SetDefault flags a method as default and refreshes; the refreshed list is
// the sole source of truth for the default flag.
func (p *PaymentSection) SetDefault(ctx context.Context, paymentMethodID string) {
	p.mu.Lock()
	if p.closed || p.busy {
		p.mu.Unlock()
		return
	}
	p.busy = true
	p.mu.Unlock()
	defer p.clearBusy()

	if err := p.cfg.API.SetDefaultPaymentMethod(ctx, paymentMethodID); err != nil {
		p.cfg.OnError(err)
		return
	}

	p.refreshMethods(ctx)
}

func (p *PaymentSection) clearBusy() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}
