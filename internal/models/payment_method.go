package models

import "time"

type PaymentMethodType string

const (
	MethodCard      PaymentMethodType = "card"
	MethodApplePay  PaymentMethodType = "apple_pay"
	MethodGooglePay PaymentMethodType = "google_pay"
)

// CardDetails is the masked display view of a saved card.
type CardDetails struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	Name     string `json:"name,omitempty"`
}

// SavedPaymentMethod is a customer-attached, reusable payment method. The
// backend owns it; clients hold a read-through cache refreshed after every
// mutation.
type SavedPaymentMethod struct {
	ID        string            `json:"id"`
	Type      PaymentMethodType `json:"type"`
	Card      *CardDetails      `json:"card,omitempty"`
	IsDefault bool              `json:"isDefault"`
	CreatedAt time.Time         `json:"createdAt"`
}

// PaymentMethodFormData holds raw card input for one card-entry session,
// formatted as typed. Discarded after submit or cancel.
type PaymentMethodFormData struct {
	CardNumber     string
	ExpiryDate     string
	CVV            string
	CardholderName string
	SaveCard       bool
	SetAsDefault   bool
}

// PaymentFormField names one card form input, or the general slot carrying
// submission-time failures that are not tied to any field.
type PaymentFormField string

const (
	PaymentFieldCardNumber PaymentFormField = "cardNumber"
	PaymentFieldExpiryDate PaymentFormField = "expiryDate"
	PaymentFieldCVV        PaymentFormField = "cvv"
	PaymentFieldName       PaymentFormField = "cardholderName"
	PaymentFieldGeneral    PaymentFormField = "general"
)

// PaymentFormErrors is sparse like CheckoutErrors.
type PaymentFormErrors map[PaymentFormField]string
