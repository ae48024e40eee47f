package checkout

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/payclient"
)

type State string

const (
	StateIdle                State = "idle"
	StateAwaitingPaymentInit State = "awaiting_payment_init"
	StateReadyToSubmit       State = "ready_to_submit"
	StateSubmitting          State = "submitting"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
)

// ErrorKind distinguishes where a failure came from, for telemetry; the user
// surface renders a single general message regardless.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindProcessor  ErrorKind = "processor"
)

// IntentAPI is the slice of the payment API the orchestrator needs.
type IntentAPI interface {
	CreatePaymentIntent(ctx context.Context, req models.CreateIntentRequest) (*models.PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*models.ConfirmIntentResponse, error)
}

// CartStore is what the orchestrator needs from the cart: its total for
// sizing the intent and Clear for the confirmed-success transition.
type CartStore interface {
	TotalMinorUnits() int64
	Clear()
}

// SubmitResult describes a blocked or failed submit so a frontend can render
// the summary, move focus, and show hints.
type SubmitResult struct {
	Ok                bool
	Summary           []FieldError
	FocusTarget       string
	NeedPaymentMethod bool
	GeneralError      string
}

type OrchestratorConfig struct {
	API          IntentAPI
	Cart         CartStore
	Form         *FormController
	Currency     string
	SuccessRoute string
	Navigate     func(route string)
}

// Orchestrator drives a checkout attempt through
// idle → awaiting_payment_init → ready_to_submit → submitting →
// succeeded | failed.
type Orchestrator struct {
	cfg OrchestratorConfig

	mu           sync.Mutex
	state        State
	intent       *models.PaymentIntent
	methodID     string
	initFailed   bool
	generalError string
	errorKind    ErrorKind
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.SuccessRoute == "" {
		cfg.SuccessRoute = "/checkout/success"
	}
	if cfg.Navigate == nil {
		cfg.Navigate = func(string) {}
	}
	return &Orchestrator{cfg: cfg, state: StateIdle}
}

// Init requests a payment intent sized to the current cart total. A failure
// leaves the form values untouched and exposes Retry.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.mu.Lock()
	o.state = StateAwaitingPaymentInit
	o.mu.Unlock()

	intent, err := o.cfg.API.CreatePaymentIntent(ctx, models.CreateIntentRequest{
		Amount:   o.cfg.Cart.TotalMinorUnits(),
		Currency: o.cfg.Currency,
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.initFailed = true
		o.generalError = err.Error()
		o.errorKind = KindNetwork
		return err
	}
	o.intent = intent
	o.initFailed = false
	o.generalError = ""
	o.errorKind = KindNone
	return nil
}

// Retry re-attempts intent creation without resetting form values.
func (o *Orchestrator) Retry(ctx context.Context) error {
	return o.Init(ctx)
}

// SelectPaymentMethod is wired to the payment section's OnSelect callback.
// An empty id clears the selection.
func (o *Orchestrator) SelectPaymentMethod(paymentMethodID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methodID = paymentMethodID
}

// State derives ready_to_submit from the submit preconditions; terminal and
// in-flight states are reported as stored.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateSubmitting, StateSucceeded, StateFailed:
		return o.state
	}
	if o.intent == nil {
		if o.state == StateIdle {
			return StateIdle
		}
		return StateAwaitingPaymentInit
	}
	if o.cfg.Form.IsValid() && o.methodID != "" {
		return StateReadyToSubmit
	}
	return StateAwaitingPaymentInit
}

func (o *Orchestrator) Intent() *models.PaymentIntent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.intent
}

func (o *Orchestrator) InitFailed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initFailed
}

func (o *Orchestrator) GeneralError() (string, ErrorKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generalError, o.errorKind
}

// Submit runs the place-order click. While preconditions fail it latches the
// form's submitAttempted flag, produces the visible error summary and focus
// target, and calls no network endpoint. Address errors take precedence in
// field order; a missing payment selection is a standalone hint, not a field
// error. A successful confirmation clears the cart and navigates to the
// success route; a failure keeps cart and values intact for a retry.
func (o *Orchestrator) Submit(ctx context.Context) SubmitResult {
	o.mu.Lock()
	if o.state == StateSubmitting {
		// The submit control is disabled while a call is in flight; a
		// second click is dropped.
		o.mu.Unlock()
		return SubmitResult{}
	}
	intent := o.intent
	methodID := o.methodID
	o.mu.Unlock()

	formOK, summary, focusTarget := o.cfg.Form.AttemptSubmit()
	needMethod := methodID == ""

	if !formOK || needMethod {
		o.mu.Lock()
		o.errorKind = KindValidation
		o.mu.Unlock()
		return SubmitResult{
			Summary:           summary,
			FocusTarget:       focusTarget,
			NeedPaymentMethod: needMethod,
		}
	}

	if intent == nil {
		// Intent creation failed earlier; submission stays blocked behind
		// the retry affordance rather than confirming against nothing.
		o.mu.Lock()
		o.generalError = "Payment is not ready. Please retry."
		o.errorKind = KindNetwork
		o.mu.Unlock()
		return SubmitResult{GeneralError: "Payment is not ready. Please retry."}
	}

	o.mu.Lock()
	o.state = StateSubmitting
	o.mu.Unlock()

	resp, err := o.cfg.API.ConfirmPaymentIntent(ctx, intent.ID, methodID)

	o.mu.Lock()
	if err != nil {
		o.state = StateFailed
		o.generalError = err.Error()
		o.errorKind = classifyConfirmError(err)
		msg := o.generalError
		o.mu.Unlock()
		return SubmitResult{GeneralError: msg}
	}
	if !resp.Success {
		o.state = StateFailed
		o.generalError = "Payment was not accepted. Please try another payment method."
		o.errorKind = KindProcessor
		msg := o.generalError
		o.mu.Unlock()
		return SubmitResult{GeneralError: msg}
	}

	o.state = StateSucceeded
	o.generalError = ""
	o.errorKind = KindNone
	// Cart.Clear and Navigate run outside the lock so a navigation callback
	// may read orchestrator state.
	o.mu.Unlock()

	o.cfg.Cart.Clear()
	o.cfg.Navigate(o.cfg.SuccessRoute)
	return SubmitResult{Ok: true}
}

// classifyConfirmError separates a hard decline, which the gateway reports
// as 402, from transport failures.
func classifyConfirmError(err error) ErrorKind {
	var apiErr *payclient.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired {
		return KindProcessor
	}
	return KindNetwork
}

// CanSubmit reports whether the submit control should be enabled.
func (o *Orchestrator) CanSubmit() bool {
	s := o.State()
	return s != StateSubmitting && s != StateSucceeded
}
