package handlers

import (
	"errors"
	"net/http"

	"checkout-gateway/internal/middleware"
	"checkout-gateway/internal/models"
	"checkout-gateway/internal/services"
	"checkout-gateway/internal/utils"

	"github.com/gin-gonic/gin"
)

type MethodHandler struct {
	stripeService   *services.StripeService
	checkoutService *services.CheckoutService
}

func NewMethodHandler(stripeService *services.StripeService, checkoutService *services.CheckoutService) *MethodHandler {
	return &MethodHandler{
		stripeService:   stripeService,
		checkoutService: checkoutService,
	}
}

// stripeCustomer resolves the session customer's Stripe id, creating both
// records lazily on first touch.
func (h *MethodHandler) stripeCustomer(c *gin.Context, createIfMissing bool) (string, error) {
	ctx := c.Request.Context()
	customerID := c.GetString(middleware.ContextCustomerID)

	customer, err := h.checkoutService.CustomerForSession(ctx, customerID, c.GetString(middleware.ContextEmail))
	if err != nil {
		return "", err
	}
	if customer.StripeCustomerID != "" {
		return customer.StripeCustomerID, nil
	}
	if !createIfMissing {
		return "", nil
	}

	stripeCustomerID, err := h.stripeService.EnsureCustomer(ctx, customer.Email)
	if err != nil {
		return "", err
	}
	if err := h.checkoutService.BindStripeCustomer(ctx, customer.CustomerID, stripeCustomerID); err != nil {
		return "", err
	}
	return stripeCustomerID, nil
}

// ListMethods returns the customer's saved payment methods. A customer that
// has never saved a method gets an empty list, not an error.
func (h *MethodHandler) ListMethods(c *gin.Context) {
	stripeCustomerID, err := h.stripeCustomer(c, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to resolve customer", err.Error()))
		return
	}

	if stripeCustomerID == "" {
		c.JSON(http.StatusOK, utils.SuccessResponse("Payment methods retrieved", models.PaymentMethodsResponse{
			PaymentMethods: []models.SavedPaymentMethod{},
		}))
		return
	}

	methods, err := h.stripeService.ListPaymentMethods(c.Request.Context(), stripeCustomerID)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to retrieve payment methods", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment methods retrieved", models.PaymentMethodsResponse{
		PaymentMethods: methods,
	}))
}

// AttachMethod attaches a tokenized payment method to the customer,
// optionally making it the default.
func (h *MethodHandler) AttachMethod(c *gin.Context) {
	var req models.AttachMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	stripeCustomerID, err := h.stripeCustomer(c, true)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to resolve customer", err.Error()))
		return
	}

	if err := h.stripeService.AttachPaymentMethod(c.Request.Context(), stripeCustomerID, req.PaymentMethodID, req.SetAsDefault); err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to attach payment method", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment method attached", models.AttachMethodResponse{
		Success:         true,
		PaymentMethodID: req.PaymentMethodID,
	}))
}

// DetachMethod removes a saved payment method.
func (h *MethodHandler) DetachMethod(c *gin.Context) {
	methodID := c.Param("id")
	if methodID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Payment method ID is required", ""))
		return
	}

	if err := h.stripeService.DetachPaymentMethod(c.Request.Context(), methodID); err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to remove payment method", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment method removed", models.MethodMutationResponse{Success: true}))
}

// SetDefaultMethod marks a saved payment method as the customer's default.
func (h *MethodHandler) SetDefaultMethod(c *gin.Context) {
	methodID := c.Param("id")
	if methodID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Payment method ID is required", ""))
		return
	}

	stripeCustomerID, err := h.stripeCustomer(c, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to resolve customer", err.Error()))
		return
	}
	if stripeCustomerID == "" {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("No saved payment methods for this customer", ""))
		return
	}

	if err := h.stripeService.SetDefaultPaymentMethod(c.Request.Context(), stripeCustomerID, methodID); err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to set default payment method", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Default payment method updated", models.MethodMutationResponse{Success: true}))
}

// TokenizeCard turns raw card input into a payment method id usable by
// attach and confirm.
func (h *MethodHandler) TokenizeCard(c *gin.Context) {
	var data models.PaymentMethodFormData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	tokenID, err := h.stripeService.CreateCardToken(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCardDetails) {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid card details", err.Error()))
			return
		}
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to tokenize card", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Card tokenized", models.AttachMethodResponse{
		Success:         true,
		PaymentMethodID: tokenID,
	}))
}
