package models

// CreateIntentRequest is the body of POST /api/v1/payment-intents. Amount is
// an integer in minor currency units; currency defaults to EUR when unset.
// CustomerID is an optional override of the session-bound customer.
type CreateIntentRequest struct {
	Amount     int64             `json:"amount" binding:"required,gt=0"`
	Currency   string            `json:"currency,omitempty"`
	CustomerID string            `json:"customerId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type CreateIntentResponse struct {
	PaymentIntent *PaymentIntent `json:"paymentIntent"`
}

// ConfirmIntentRequest is the body of POST /api/v1/payment-intents/:id/confirm.
type ConfirmIntentRequest struct {
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
}

// ConfirmIntentResponse reports the settlement outcome. Success is true iff
// the processor landed in succeeded, processing, or requires_capture; OrderID
// is populated only on success.
type ConfirmIntentResponse struct {
	Success bool         `json:"success"`
	OrderID string       `json:"orderId,omitempty"`
	Status  IntentStatus `json:"status"`
}

type PaymentMethodsResponse struct {
	PaymentMethods []SavedPaymentMethod `json:"paymentMethods"`
}

type AttachMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
	SetAsDefault    bool   `json:"setAsDefault,omitempty"`
}

type AttachMethodResponse struct {
	Success         bool   `json:"success"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type MethodMutationResponse struct {
	Success bool `json:"success"`
}
