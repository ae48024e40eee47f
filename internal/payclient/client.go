package payclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"checkout-gateway/internal/models"
)

// ErrInvalidAmount rejects non-positive intent amounts before any network
// call is made.
var ErrInvalidAmount = errors.New("amount must be a positive integer in minor currency units")

// APIError carries the server-provided message for a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client is a typed wrapper over the /api/v1 payment endpoints. Every request
// carries the session cookie jar, so the payment customer identity stays
// implicit in the authenticated session.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewWithHTTPClient allows callers to supply their own client, e.g. one that
// already holds an authenticated session cookie.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

// CreatePaymentIntent opens a new payment attempt sized to the given amount.
// Currency defaults to EUR server-side when unset.
func (c *Client) CreatePaymentIntent(ctx context.Context, req models.CreateIntentRequest) (*models.PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var resp models.CreateIntentResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/payment-intents", req, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentIntent == nil {
		return nil, errors.New("malformed response: missing paymentIntent")
	}
	return resp.PaymentIntent, nil
}

// ConfirmPaymentIntent settles an intent with the chosen payment method.
func (c *Client) ConfirmPaymentIntent(ctx context.Context, intentID, paymentMethodID string) (*models.ConfirmIntentResponse, error) {
	body := models.ConfirmIntentRequest{PaymentMethodID: paymentMethodID}

	var resp models.ConfirmIntentResponse
	path := fmt.Sprintf("/api/v1/payment-intents/%s/confirm", intentID)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPaymentMethods lists the customer's saved payment methods. An empty list
// is a successful outcome, distinct from a failed request.
func (c *Client) GetPaymentMethods(ctx context.Context) ([]models.SavedPaymentMethod, error) {
	var resp models.PaymentMethodsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/payment-methods", nil, &resp); err != nil {
		return nil, err
	}
	if resp.PaymentMethods == nil {
		return []models.SavedPaymentMethod{}, nil
	}
	return resp.PaymentMethods, nil
}

// AttachPaymentMethod saves a tokenized method to the customer, optionally
// marking it default.
func (c *Client) AttachPaymentMethod(ctx context.Context, paymentMethodID string, setAsDefault bool) (*models.AttachMethodResponse, error) {
	body := models.AttachMethodRequest{PaymentMethodID: paymentMethodID, SetAsDefault: setAsDefault}

	var resp models.AttachMethodResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/payment-methods/attach", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DetachPaymentMethod removes a saved method from the customer.
func (c *Client) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	var resp models.MethodMutationResponse
	return c.do(ctx, http.MethodDelete, "/api/v1/payment-methods/"+paymentMethodID, nil, &resp)
}

// SetDefaultPaymentMethod flags a saved method as the customer default.
func (c *Client) SetDefaultPaymentMethod(ctx context.Context, paymentMethodID string) error {
	var resp models.MethodMutationResponse
	path := fmt.Sprintf("/api/v1/payment-methods/%s/default", paymentMethodID)
	return c.do(ctx, http.MethodPatch, path, nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := ""
		if decodeErr == nil {
			message = env.Message
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		if message == "" {
			message = "Request failed"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
