package checkout

import (
	"context"
	"errors"
	"sync"

	"checkout-gateway/internal/models"
)

// mockPaymentAPI implements MethodsAPI and IntentAPI with programmable
// responses and call recording.
type mockPaymentAPI struct {
	mu sync.Mutex

	methods    []models.SavedPaymentMethod
	methodsErr error

	attachErr  error
	detachErr  error
	defaultErr error

	intent    *models.PaymentIntent
	intentErr error

	confirmResp *models.ConfirmIntentResponse
	confirmErr  error

	calls []string
}

func (m *mockPaymentAPI) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockPaymentAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockPaymentAPI) GetPaymentMethods(ctx context.Context) ([]models.SavedPaymentMethod, error) {
	m.record("get")
	if m.methodsErr != nil {
		return nil, m.methodsErr
	}
	out := make([]models.SavedPaymentMethod, len(m.methods))
	copy(out, m.methods)
	return out, nil
}

func (m *mockPaymentAPI) AttachPaymentMethod(ctx context.Context, id string, setAsDefault bool) (*models.AttachMethodResponse, error) {
	m.record("attach:" + id)
	if m.attachErr != nil {
		return nil, m.attachErr
	}
	return &models.AttachMethodResponse{Success: true, PaymentMethodID: id}, nil
}

func (m *mockPaymentAPI) DetachPaymentMethod(ctx context.Context, id string) error {
	m.record("detach:" + id)
	return m.detachErr
}

func (m *mockPaymentAPI) SetDefaultPaymentMethod(ctx context.Context, id string) error {
	m.record("default:" + id)
	return m.defaultErr
}

func (m *mockPaymentAPI) CreatePaymentIntent(ctx context.Context, req models.CreateIntentRequest) (*models.PaymentIntent, error) {
	m.record("create")
	if m.intentErr != nil {
		return nil, m.intentErr
	}
	if m.intent != nil {
		return m.intent, nil
	}
	return &models.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       models.IntentRequiresPaymentMethod,
	}, nil
}

func (m *mockPaymentAPI) ConfirmPaymentIntent(ctx context.Context, intentID, methodID string) (*models.ConfirmIntentResponse, error) {
	m.record("confirm:" + intentID + ":" + methodID)
	if m.confirmErr != nil {
		return nil, m.confirmErr
	}
	if m.confirmResp != nil {
		return m.confirmResp, nil
	}
	return &models.ConfirmIntentResponse{Success: true, OrderID: "order_1", Status: models.IntentSucceeded}, nil
}

type mockTokenizer struct {
	token string
	err   error
}

func (m *mockTokenizer) CreateCardToken(ctx context.Context, data models.PaymentMethodFormData) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.token == "" {
		return "pm_new", nil
	}
	return m.token, nil
}

var errBoom = errors.New("boom")

func validCardForm() models.PaymentMethodFormData {
	return models.PaymentMethodFormData{
		CardNumber:     "4242424242424242",
		ExpiryDate:     "12/35",
		CVV:            "123",
		CardholderName: "Ada Lovelace",
	}
}
