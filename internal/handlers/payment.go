package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"checkout-gateway/internal/middleware"
	"checkout-gateway/internal/models"
	"checkout-gateway/internal/redis"
	"checkout-gateway/internal/services"
	"checkout-gateway/internal/utils"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	stripeService   *services.StripeService
	checkoutService *services.CheckoutService
	redis           *redis.Redis
}

func NewPaymentHandler(stripeService *services.StripeService, checkoutService *services.CheckoutService, rdb *redis.Redis) *PaymentHandler {
	return &PaymentHandler{
		stripeService:   stripeService,
		checkoutService: checkoutService,
		redis:           rdb,
	}
}

// CreateIntent creates a payment intent for the session's customer and
// records it as the session's active intent. Mounting the checkout view
// again replaces the previous intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req models.CreateIntentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	ctx := c.Request.Context()
	sessionID := c.GetString(middleware.ContextSessionID)
	customerID := c.GetString(middleware.ContextCustomerID)
	if req.CustomerID != "" {
		customerID = req.CustomerID
	}

	customer, err := h.checkoutService.CustomerForSession(ctx, customerID, c.GetString(middleware.ContextEmail))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to resolve customer", err.Error()))
		return
	}

	if customer.StripeCustomerID == "" {
		stripeCustomerID, err := h.stripeService.EnsureCustomer(ctx, customer.Email)
		if err != nil {
			c.JSON(http.StatusBadGateway, utils.ErrorResponse("Payment provider unavailable", err.Error()))
			return
		}
		if err := h.checkoutService.BindStripeCustomer(ctx, customer.CustomerID, stripeCustomerID); err != nil {
			c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to bind customer", err.Error()))
			return
		}
		customer.StripeCustomerID = stripeCustomerID
	}

	// Each checkout mount gets a fresh intent; the session's previous one
	// is abandoned, so cancel it rather than leaving it dangling.
	if previousID, err := h.redis.GetActiveIntent(ctx, sessionID); err == nil && previousID != "" {
		_ = h.stripeService.CancelPaymentIntent(ctx, previousID)
	}

	intent, err := h.stripeService.CreatePaymentIntent(ctx, customer.StripeCustomerID, req.Amount, req.Currency, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid amount", err.Error()))
		default:
			c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to create payment intent", err.Error()))
		}
		return
	}

	// The session marker only powers replacement on re-mount; the intent is
	// usable even if recording it fails.
	_ = h.redis.SaveActiveIntent(ctx, sessionID, intent.ID)

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent created", models.CreateIntentResponse{PaymentIntent: intent}))
}

// ConfirmIntent settles the intent with the selected payment method. A
// confirm lock in Redis rejects a duplicate in-flight confirmation of the
// same intent.
func (h *PaymentHandler) ConfirmIntent(c *gin.Context) {
	intentID := c.Param("id")
	if intentID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Intent ID is required", ""))
		return
	}

	var req models.ConfirmIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request payload", err.Error()))
		return
	}

	ctx := c.Request.Context()
	customerID := c.GetString(middleware.ContextCustomerID)

	acquired, err := h.redis.AcquireConfirmLock(ctx, intentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to acquire confirmation lock", err.Error()))
		return
	}
	if !acquired {
		c.JSON(http.StatusConflict, utils.ErrorResponse("Confirmation already in progress", ""))
		return
	}
	defer h.redis.ReleaseConfirmLock(ctx, intentID)

	status, success, err := h.stripeService.ConfirmPaymentIntent(ctx, intentID, req.PaymentMethodID)
	if err != nil {
		if errors.Is(err, services.ErrCardDeclined) {
			c.JSON(http.StatusPaymentRequired, utils.ErrorResponse("Your card was declined", err.Error()))
			return
		}
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Payment confirmation failed", err.Error()))
		return
	}

	intent, err := h.stripeService.GetPaymentIntent(ctx, intentID)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Payment confirmation failed", err.Error()))
		return
	}

	orderID := ""
	if orderID, err = h.checkoutService.RecordConfirmedOrder(ctx, customerID, intentID, intent.Amount, intent.Currency, status, success); err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to record order", err.Error()))
		return
	}

	sessionID := c.GetString(middleware.ContextSessionID)
	if success && sessionID != "" {
		h.redis.ClearActiveIntent(ctx, sessionID)
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent confirmed", models.ConfirmIntentResponse{
		Success: success,
		OrderID: orderID,
		Status:  status,
	}))
}

// GetIntent returns the current state of a payment intent.
func (h *PaymentHandler) GetIntent(c *gin.Context) {
	intentID := c.Param("id")
	if intentID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Intent ID is required", ""))
		return
	}

	intent, err := h.stripeService.GetPaymentIntent(c.Request.Context(), intentID)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("Failed to retrieve payment intent", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent retrieved", intent))
}

// GetOrder retrieves a recorded order.
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Order ID is required", ""))
		return
	}

	order, err := h.checkoutService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Order not found", err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to retrieve order", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Order retrieved", order))
}

// ListOrders lists the session customer's orders, newest first.
func (h *PaymentHandler) ListOrders(c *gin.Context) {
	customerID := c.GetString(middleware.ContextCustomerID)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	orders, err := h.checkoutService.ListOrders(c.Request.Context(), customerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list orders", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Orders retrieved", orders))
}
