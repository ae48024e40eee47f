package models

type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentSucceeded             IntentStatus = "succeeded"
	IntentCanceled              IntentStatus = "canceled"
)

// PaymentIntent is the client view of a server-tracked payment attempt. The
// client secret is the capability token handed to the card-entry integration.
type PaymentIntent struct {
	ID           string       `json:"id"`
	ClientSecret string       `json:"clientSecret"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	Status       IntentStatus `json:"status"`
}
