package provider

import (
	"context"
	"fmt"

	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status the host should move an order's payment to
type PaymentStatus string

const (
	StatusPending           PaymentStatus = "pending"
	StatusAuthorized        PaymentStatus = "authorized"
	StatusPaid              PaymentStatus = "paid"
	StatusPartiallyRefunded PaymentStatus = "partially_refunded"
	StatusRefunded          PaymentStatus = "refunded"
	StatusVoided            PaymentStatus = "voided"
)

// ErrorKind classifies why an operation failed
type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindNetwork         ErrorKind = "network"
	ErrorKindParse           ErrorKind = "parse_error"
	ErrorKindGatewayRejected ErrorKind = "gateway_rejected"
	ErrorKindValidation      ErrorKind = "validation"
	ErrorKindNotSupported    ErrorKind = "not_supported"
)

// Result is embedded by every operation result. An operation succeeded when it carries no errors.
type Result struct {
	Errors    []string  `json:"errors,omitempty"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
}

// Success reports whether the operation completed without errors
func (r Result) Success() bool {
	return len(r.Errors) == 0
}

// AddError records a failure. The first kind recorded wins.
func (r *Result) AddError(kind ErrorKind, format string, args ...any) {
	if r.ErrorKind == ErrorKindNone {
		r.ErrorKind = kind
	}
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Address represents the billing address sent with a sale or authorization
type Address struct {
	Street            string `json:"street"`
	City              string `json:"city"`
	Phone             string `json:"phone"`
	StateAbbreviation string `json:"stateAbbreviation"`
	ZipCode           string `json:"zipCode"`
}

// ProcessPaymentRequest contains everything needed to authorize or sell against a card.
// A zero TransactMode means the store's configured mode is used.
type ProcessPaymentRequest struct {
	StoreID               int                 `json:"storeId" validate:"gte=0"`
	CustomerID            int                 `json:"customerId"`
	OrderGUID             string              `json:"orderGuid"`
	CreditCardNumber      string              `json:"creditCardNumber" validate:"required"`
	CreditCardCvv2        string              `json:"creditCardCvv2"`
	CreditCardExpireMonth int                 `json:"creditCardExpireMonth"`
	CreditCardExpireYear  int                 `json:"creditCardExpireYear"`
	OrderTotal            decimal.Decimal     `json:"orderTotal"`
	BillingAddress        Address             `json:"billingAddress"`
	TransactMode          config.TransactMode `json:"transactMode,omitempty"`
}

// Order is the host's stored view of an order's payment
type Order struct {
	StoreID                      int             `json:"storeId" validate:"gte=0"`
	OrderTotal                   decimal.Decimal `json:"orderTotal"`
	RefundedAmount               decimal.Decimal `json:"refundedAmount"`
	AuthorizationTransactionCode string          `json:"authorizationTransactionCode"`
	CaptureTransactionID         string          `json:"captureTransactionId,omitempty"`
}

// CaptureRequest captures a previously authorized order
type CaptureRequest struct {
	Order Order `json:"order"`
}

// RefundRequest refunds part or all of a paid order
type RefundRequest struct {
	Order          Order           `json:"order"`
	AmountToRefund decimal.Decimal `json:"amountToRefund"`
}

// VoidRequest voids an authorized order
type VoidRequest struct {
	Order Order `json:"order"`
}

// CancelRecurringRequest cancels the recurring payment of an order
type CancelRecurringRequest struct {
	Order Order `json:"order"`
}

// ProcessPaymentResult is the outcome of an authorization or sale
type ProcessPaymentResult struct {
	Result
	AuthorizationTransactionCode   string        `json:"authorizationTransactionCode,omitempty"`
	AuthorizationTransactionResult string        `json:"authorizationTransactionResult,omitempty"`
	AvsResult                      string        `json:"avsResult,omitempty"`
	Cvv2Result                     string        `json:"cvv2Result,omitempty"`
	NewPaymentStatus               PaymentStatus `json:"newPaymentStatus,omitempty"`
}

// CapturePaymentResult is the outcome of a capture
type CapturePaymentResult struct {
	Result
	CaptureTransactionID     string        `json:"captureTransactionId,omitempty"`
	CaptureTransactionResult string        `json:"captureTransactionResult,omitempty"`
	NewPaymentStatus         PaymentStatus `json:"newPaymentStatus,omitempty"`
}

// RefundPaymentResult is the outcome of a refund
type RefundPaymentResult struct {
	Result
	NewPaymentStatus PaymentStatus `json:"newPaymentStatus,omitempty"`
}

// VoidPaymentResult is the outcome of a void
type VoidPaymentResult struct {
	Result
	NewPaymentStatus PaymentStatus `json:"newPaymentStatus,omitempty"`
}

// CancelRecurringPaymentResult is the outcome of a recurring cancellation
type CancelRecurringPaymentResult struct {
	Result
}

// PaymentInfoForm holds the raw card fields posted from checkout
type PaymentInfoForm struct {
	CardNumber  string `json:"cardNumber"`
	CardCode    string `json:"cardCode"`
	ExpireMonth string `json:"expireMonth"`
	ExpireYear  string `json:"expireYear"`
}

// Capabilities describes which host payment operations a payment method supports
type Capabilities struct {
	SupportCapture         bool   `json:"supportCapture"`
	SupportPartiallyRefund bool   `json:"supportPartiallyRefund"`
	SupportRefund          bool   `json:"supportRefund"`
	SupportVoid            bool   `json:"supportVoid"`
	RecurringPaymentType   string `json:"recurringPaymentType"`
	PaymentMethodType      string `json:"paymentMethodType"`
	SkipPaymentInfo        bool   `json:"skipPaymentInfo"`
	HideInWidgetList       bool   `json:"hideInWidgetList"`
	Description            string `json:"description"`
}

// PaymentMethod is the contract a host uses to drive a card payment method.
// Gateway failures are reported inside the returned results, never as Go errors.
type PaymentMethod interface {
	// ProcessPayment authorizes or sells against the card in the request
	ProcessPayment(ctx context.Context, request ProcessPaymentRequest) *ProcessPaymentResult

	// ProcessRecurringPayment processes a recurring payment
	ProcessRecurringPayment(ctx context.Context, request ProcessPaymentRequest) *ProcessPaymentResult

	// CancelRecurringPayment cancels a recurring payment
	CancelRecurringPayment(ctx context.Context, request CancelRecurringRequest) *CancelRecurringPaymentResult

	// Capture captures an authorized payment
	Capture(ctx context.Context, request CaptureRequest) *CapturePaymentResult

	// Refund refunds a paid payment
	Refund(ctx context.Context, request RefundRequest) *RefundPaymentResult

	// Void voids an authorized payment
	Void(ctx context.Context, request VoidRequest) *VoidPaymentResult

	// ValidatePaymentForm returns the localized warnings for a checkout form
	ValidatePaymentForm(form PaymentInfoForm) []string

	// GetPaymentInfo maps a checkout form onto a payment request
	GetPaymentInfo(form PaymentInfoForm) (ProcessPaymentRequest, error)

	// AdditionalHandlingFee returns the fee charged on top of cartTotal for a store
	AdditionalHandlingFee(storeID int, cartTotal decimal.Decimal) (decimal.Decimal, error)

	// Capabilities returns the supported operations
	Capabilities() Capabilities
}
