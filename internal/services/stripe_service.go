package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"checkout-gateway/internal/logger"
	"checkout-gateway/internal/models"
	"checkout-gateway/internal/utils"
	"checkout-gateway/internal/validation"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
	ErrInvalidAmount          = errors.New("amount must be a positive integer in minor currency units")
	ErrInvalidCardDetails     = errors.New("invalid card details")
	ErrCardDeclined           = errors.New("card declined")
)

// StripeService handles integration with the Stripe payment gateway.
type StripeService struct {
	client          *client.API
	defaultCurrency string
	log             *logger.Logger
}

// NewStripeService creates a new instance of StripeService.
func NewStripeService(log *logger.Logger) (*StripeService, error) {
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(stripeKey, nil)
	if sc == nil {
		log.Error("STRIPE", "Failed to initialize Stripe client")
		return nil, ErrStripeClientInitFailed
	}

	currency := os.Getenv("STRIPE_DEFAULT_CURRENCY")
	if currency == "" {
		currency = "eur"
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeService{
		client:          sc,
		defaultCurrency: currency,
		log:             log,
	}, nil
}

// CreatePaymentIntent opens a manual-confirmation payment intent sized to the
// given amount in minor currency units.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, customerID string, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		ConfirmationMethod: stripe.String("manual"),
		PaymentMethodTypes: []*string{stripe.String("card")},
		Metadata:           metadata,
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}

	s.log.LogPayment("INTENT_CREATE", "new", fmt.Sprintf("Creating payment intent for %d %s", amount, currency))
	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("INTENT_CREATED", pi.ID, fmt.Sprintf("Payment intent created with status %s", pi.Status))

	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

// ConfirmPaymentIntent confirms an intent with the chosen payment method.
// Success is true iff Stripe lands in succeeded, processing, or
// requires_capture.
func (s *StripeService) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (models.IntentStatus, bool, error) {
	s.log.LogPayment("CONFIRM", intentID, fmt.Sprintf("Confirming with payment method %s", paymentMethodID))

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}

	pi, err := s.client.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			s.log.LogPayment("DECLINED", intentID, fmt.Sprintf("Card error: %s", stripeErr.Msg))
			return "", false, fmt.Errorf("%w: %s", ErrCardDeclined, stripeErr.Msg)
		}
		s.log.Error("STRIPE", fmt.Sprintf("Failed to confirm payment intent %s: %v", intentID, err))
		return "", false, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	success := false
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresCapture:
		success = true
		s.log.LogPayment("CONFIRMED", intentID, fmt.Sprintf("Payment settled with status %s", pi.Status))
	default:
		s.log.LogPayment("CONFIRM_FAILED", intentID, fmt.Sprintf("Payment not accepted, status %s", pi.Status))
	}

	return mapIntentStatus(pi.Status), success, nil
}

// CancelPaymentIntent cancels an abandoned intent. Intents already settled
// or being settled cannot be canceled; that is reported as an error.
func (s *StripeService) CancelPaymentIntent(ctx context.Context, intentID string) error {
	_, err := s.client.PaymentIntents.Cancel(intentID, nil)
	if err != nil {
		s.log.Warn("STRIPE", fmt.Sprintf("Failed to cancel payment intent %s: %v", intentID, err))
		return fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("CANCELED", intentID, "Abandoned payment intent canceled")
	return nil
}

// GetPaymentIntent retrieves the current intent state from Stripe.
func (s *StripeService) GetPaymentIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error) {
	pi, err := s.client.PaymentIntents.Get(intentID, nil)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to retrieve payment intent %s: %v", intentID, err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	return &models.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       mapIntentStatus(pi.Status),
	}, nil
}

// ListPaymentMethods returns the customer's saved card methods with the
// default flag resolved from the customer's invoice settings.
func (s *StripeService) ListPaymentMethods(ctx context.Context, customerID string) ([]models.SavedPaymentMethod, error) {
	defaultID := s.defaultMethodID(customerID)

	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String("card"),
	}

	methods := []models.SavedPaymentMethod{}
	iter := s.client.PaymentMethods.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		saved := models.SavedPaymentMethod{
			ID:        pm.ID,
			Type:      models.PaymentMethodType(pm.Type),
			IsDefault: pm.ID == defaultID,
			CreatedAt: utils.UnixTimeToTime(pm.Created),
		}
		if pm.Card != nil {
			saved.Card = &models.CardDetails{
				Brand:    string(pm.Card.Brand),
				Last4:    pm.Card.Last4,
				ExpMonth: int(pm.Card.ExpMonth),
				ExpYear:  int(pm.Card.ExpYear),
			}
			if pm.BillingDetails != nil {
				saved.Card.Name = pm.BillingDetails.Name
			}
		}
		methods = append(methods, saved)
	}
	if err := iter.Err(); err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to list payment methods for %s: %v", customerID, err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	s.log.LogPayment("METHODS", customerID, fmt.Sprintf("Listed %d payment methods", len(methods)))
	return methods, nil
}

// AttachPaymentMethod saves a tokenized method to the customer, optionally
// flagging it default.
func (s *StripeService) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string, setAsDefault bool) error {
	_, err := s.client.PaymentMethods.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to attach payment method %s: %v", paymentMethodID, err))
		return fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("ATTACH", paymentMethodID, fmt.Sprintf("Attached to customer %s", customerID))

	if setAsDefault {
		return s.SetDefaultPaymentMethod(ctx, customerID, paymentMethodID)
	}
	return nil
}

// DetachPaymentMethod removes a saved method from its customer.
func (s *StripeService) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	_, err := s.client.PaymentMethods.Detach(paymentMethodID, &stripe.PaymentMethodDetachParams{})
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to detach payment method %s: %v", paymentMethodID, err))
		return fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("DETACH", paymentMethodID, "Payment method detached")
	return nil
}

// SetDefaultPaymentMethod stores the default on the customer's invoice
// settings, the single place the default flag lives.
func (s *StripeService) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := s.client.Customers.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to set default payment method for %s: %v", customerID, err))
		return fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("SET_DEFAULT", paymentMethodID, fmt.Sprintf("Default payment method for customer %s", customerID))
	return nil
}

// CreateCardToken creates a payment method from raw card input. The token is
// ephemeral until attached.
func (s *StripeService) CreateCardToken(ctx context.Context, data models.PaymentMethodFormData) (string, error) {
	expiry := validation.ValidateExpiryDate(data.ExpiryDate)
	if !expiry.Valid {
		return "", ErrInvalidCardDetails
	}

	params := &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(data.CardNumber),
			ExpMonth: stripe.Int64(int64(expiry.Month)),
			ExpYear:  stripe.Int64(int64(expiry.Year)),
			CVC:      stripe.String(data.CVV),
		},
	}
	if data.CardholderName != "" {
		params.BillingDetails = &stripe.PaymentMethodBillingDetailsParams{
			Name: stripe.String(data.CardholderName),
		}
	}

	pm, err := s.client.PaymentMethods.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment method: %v", err))
		return "", fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("TOKENIZE", pm.ID, "Payment method created from card input")
	return pm.ID, nil
}

// EnsureCustomer creates a Stripe customer for the email, lazily: call it the
// first time a payment flow needs a customer object.
func (s *StripeService) EnsureCustomer(ctx context.Context, email string) (string, error) {
	cust, err := s.client.Customers.New(&stripe.CustomerParams{
		Email: stripe.String(email),
	})
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create customer for %s: %v", email, err))
		return "", fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.LogPayment("CUSTOMER", cust.ID, fmt.Sprintf("Stripe customer created for %s", email))
	return cust.ID, nil
}

func (s *StripeService) defaultMethodID(customerID string) string {
	cust, err := s.client.Customers.Get(customerID, nil)
	if err != nil || cust.InvoiceSettings == nil || cust.InvoiceSettings.DefaultPaymentMethod == nil {
		return ""
	}
	return cust.InvoiceSettings.DefaultPaymentMethod.ID
}

func mapIntentStatus(status stripe.PaymentIntentStatus) models.IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.IntentSucceeded
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return models.IntentProcessing
	case stripe.PaymentIntentStatusRequiresAction:
		return models.IntentRequiresAction
	case stripe.PaymentIntentStatusRequiresConfirmation:
		return models.IntentRequiresConfirmation
	case stripe.PaymentIntentStatusCanceled:
		return models.IntentCanceled
	default:
		return models.IntentRequiresPaymentMethod
	}
}
