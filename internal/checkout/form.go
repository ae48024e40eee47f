package checkout

import (
	"sync"

	"checkout-gateway/internal/models"
	"checkout-gateway/internal/validation"
)

// FieldError pairs a field's message with the focus target of its input.
type FieldError struct {
	Field    models.CheckoutField
	Message  string
	TargetID string
}

// FormController owns the checkout address form state: raw values, which
// fields the user has interacted with, and whether a submit has been
// attempted. Validation errors are always derived from the current values;
// whether an error is shown depends on submitAttempted OR touched.
type FormController struct {
	mu              sync.Mutex
	values          models.CheckoutValues
	touched         map[models.CheckoutField]bool
	submitAttempted bool
}

func NewFormController(initial models.CheckoutValues) *FormController {
	values := models.CheckoutValues{}
	for _, field := range models.CheckoutFieldOrder {
		values[field] = initial[field]
	}
	return &FormController{
		values:  values,
		touched: make(map[models.CheckoutField]bool),
	}
}

// SetValue records a keystroke and marks the field as interacted with.
func (f *FormController) SetValue(field models.CheckoutField, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
	f.touched[field] = true
}

func (f *FormController) Value(field models.CheckoutField) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

func (f *FormController) Values() models.CheckoutValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := models.CheckoutValues{}
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Errors recomputes validation from the current values.
func (f *FormController) Errors() models.CheckoutErrors {
	return validation.ValidateCheckout(f.Values())
}

// VisibleErrors filters Errors down to fields whose error should currently be
// shown: after a submit attempt, all of them; before, only touched fields.
func (f *FormController) VisibleErrors() models.CheckoutErrors {
	errs := f.Errors()

	f.mu.Lock()
	defer f.mu.Unlock()

	visible := models.CheckoutErrors{}
	for field, msg := range errs {
		if f.submitAttempted || f.touched[field] {
			visible[field] = msg
		}
	}
	return visible
}

func (f *FormController) IsValid() bool {
	return len(f.Errors()) == 0
}

func (f *FormController) SubmitAttempted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitAttempted
}

// AttemptSubmit latches submitAttempted (never reset for the session) and,
// when invalid, returns the error summary in field declaration order plus the
// focus target of the first invalid field.
func (f *FormController) AttemptSubmit() (ok bool, summary []FieldError, focusTarget string) {
	f.mu.Lock()
	f.submitAttempted = true
	f.mu.Unlock()

	errs := f.Errors()
	if len(errs) == 0 {
		return true, nil, ""
	}

	for _, field := range models.CheckoutFieldOrder {
		if msg, bad := errs[field]; bad {
			summary = append(summary, FieldError{
				Field:    field,
				Message:  msg,
				TargetID: models.FocusTargetID(field),
			})
		}
	}
	return false, summary, summary[0].TargetID
}
