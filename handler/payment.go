package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/middle"
	"github.com/mstgnz/gopaysafe/infra/response"
	"github.com/mstgnz/gopaysafe/provider"
	"github.com/shopspring/decimal"
)

const gatewayTimeout = 30 * time.Second

// PaymentHandler exposes a payment method over HTTP
type PaymentHandler struct {
	method   provider.PaymentMethod
	validate *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(method provider.PaymentMethod, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		method:   method,
		validate: validate,
	}
}

// ProcessPaymentBody is the checkout request: the raw card form plus the order
type ProcessPaymentBody struct {
	PaymentInfo    provider.PaymentInfoForm `json:"paymentInfo"`
	CustomerID     int                      `json:"customerId" validate:"gte=0"`
	OrderGUID      string                   `json:"orderGuid" validate:"omitempty,uuid"`
	OrderTotal     decimal.Decimal          `json:"orderTotal" validate:"gt=0"`
	BillingAddress provider.Address         `json:"billingAddress"`
	TransactMode   config.TransactMode      `json:"transactMode,omitempty" validate:"omitempty,oneof=1 2"`
}

// ValidationResult is returned by the form validation endpoint
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// ProcessPayment validates the checkout form and authorizes or sells against the card
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var body ProcessPaymentBody
	if !h.decode(w, r, &body) {
		return
	}

	if warnings := h.method.ValidatePaymentForm(body.PaymentInfo); len(warnings) > 0 {
		response.Fail(w, http.StatusBadRequest, "Invalid payment form", warnings)
		return
	}

	req, err := h.method.GetPaymentInfo(body.PaymentInfo)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid payment form", err)
		return
	}
	req.StoreID = storeID(r)
	req.CustomerID = body.CustomerID
	req.OrderGUID = body.OrderGUID
	req.OrderTotal = body.OrderTotal
	req.BillingAddress = body.BillingAddress
	req.TransactMode = body.TransactMode

	ctx, cancel := context.WithTimeout(r.Context(), gatewayTimeout)
	defer cancel()

	result := h.method.ProcessPayment(ctx, req)
	writeResult(w, "Payment processed", "Payment failed", &result.Result, result)
}

// ValidatePaymentForm reports the warnings for a checkout form without charging it
func (h *PaymentHandler) ValidatePaymentForm(w http.ResponseWriter, r *http.Request) {
	var form provider.PaymentInfoForm
	if !h.decode(w, r, &form) {
		return
	}

	warnings := h.method.ValidatePaymentForm(form)
	if warnings == nil {
		warnings = []string{}
	}
	response.Success(w, http.StatusOK, "Payment form checked", ValidationResult{
		Valid:    len(warnings) == 0,
		Warnings: warnings,
	})
}

// Capture captures an authorized order
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req provider.CaptureRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Order.StoreID = storeID(r)

	ctx, cancel := context.WithTimeout(r.Context(), gatewayTimeout)
	defer cancel()

	result := h.method.Capture(ctx, req)
	writeResult(w, "Payment captured", "Capture failed", &result.Result, result)
}

// Refund refunds part or all of a paid order
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var req provider.RefundRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Order.StoreID = storeID(r)

	ctx, cancel := context.WithTimeout(r.Context(), gatewayTimeout)
	defer cancel()

	result := h.method.Refund(ctx, req)
	writeResult(w, "Payment refunded", "Refund failed", &result.Result, result)
}

// Void voids an authorized order
func (h *PaymentHandler) Void(w http.ResponseWriter, r *http.Request) {
	var req provider.VoidRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Order.StoreID = storeID(r)

	ctx, cancel := context.WithTimeout(r.Context(), gatewayTimeout)
	defer cancel()

	result := h.method.Void(ctx, req)
	writeResult(w, "Payment voided", "Void failed", &result.Result, result)
}

// ProcessRecurringPayment forwards a recurring payment to the payment method
func (h *PaymentHandler) ProcessRecurringPayment(w http.ResponseWriter, r *http.Request) {
	var req provider.ProcessPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.StoreID = storeID(r)

	result := h.method.ProcessRecurringPayment(r.Context(), req)
	writeResult(w, "Recurring payment processed", "Recurring payment failed", &result.Result, result)
}

// CancelRecurringPayment forwards a recurring cancellation to the payment method
func (h *PaymentHandler) CancelRecurringPayment(w http.ResponseWriter, r *http.Request) {
	var req provider.CancelRecurringRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Order.StoreID = storeID(r)

	result := h.method.CancelRecurringPayment(r.Context(), req)
	writeResult(w, "Recurring payment cancelled", "Recurring cancellation failed", &result.Result, result)
}

// AdditionalFee returns the handling fee charged on top of cartTotal
func (h *PaymentHandler) AdditionalFee(w http.ResponseWriter, r *http.Request) {
	cartTotal, err := decimal.NewFromString(r.URL.Query().Get("cartTotal"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid cartTotal", err)
		return
	}
	if cartTotal.IsNegative() {
		response.Error(w, http.StatusBadRequest, "Invalid cartTotal", errors.New("cartTotal must not be negative"))
		return
	}

	store := storeID(r)
	if raw := r.URL.Query().Get("storeId"); raw != "" {
		store, err = strconv.Atoi(raw)
		if err != nil || store < 0 {
			response.Error(w, http.StatusBadRequest, "Invalid storeId", err)
			return
		}
	}

	fee, err := h.method.AdditionalHandlingFee(store, cartTotal)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to calculate fee", err)
		return
	}

	response.Success(w, http.StatusOK, "Fee calculated", map[string]any{
		"storeId":   store,
		"cartTotal": cartTotal,
		"fee":       fee,
	})
}

// Capabilities describes the operations the payment method supports
func (h *PaymentHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Payment method capabilities", h.method.Capabilities())
}

// decode reads a JSON body into v and validates it. It writes the 400 itself.
func (h *PaymentHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return false
	}
	return true
}

// writeResult always answers 200: gateway failures are carried inside the result
func writeResult(w http.ResponseWriter, okMessage, failMessage string, outcome *provider.Result, data any) {
	message := okMessage
	if !outcome.Success() {
		message = failMessage
	}

	_ = response.WriteJSON(w, http.StatusOK, response.Response{
		Code:    http.StatusOK,
		Success: outcome.Success(),
		Message: message,
		Data:    data,
	})
}

func storeID(r *http.Request) int {
	id, _ := middle.GetStoreIDFromContext(r.Context())
	return id
}
