package paysafe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/logger"
	"github.com/mstgnz/gopaysafe/infra/opensearch"
	"github.com/mstgnz/gopaysafe/provider"
	"github.com/shopspring/decimal"
)

const (
	providerName = "paysafe"

	// API URLs
	apiSandboxURL    = "https://api.sandbox.expinet.net/v2/transactions"
	apiProductionURL = "https://api.expinet.net/v2/transactions"

	defaultTimeout = 30 * time.Second
)

// SettingsSource supplies the settings of a store
type SettingsSource interface {
	LoadSettings(storeID int) (config.PaySafeSettings, error)
}

// StaticSettings serves the same settings to every store
type StaticSettings config.PaySafeSettings

// LoadSettings returns s for any store
func (s StaticSettings) LoadSettings(int) (config.PaySafeSettings, error) {
	return config.PaySafeSettings(s), nil
}

// PaymentLogger records every gateway exchange
type PaymentLogger interface {
	LogPayment(ctx context.Context, entry opensearch.PaymentLog) error
}

// Processor implements provider.PaymentMethod against the PaySafe / Expinet transactions API
type Processor struct {
	settings      SettingsSource
	httpClient    *provider.ProviderHTTPClient
	sandboxURL    string
	productionURL string
	localizer     Localizer
	validate      *validator.Validate
	paymentLogger PaymentLogger
}

var _ provider.PaymentMethod = (*Processor)(nil)

// Option configures a Processor
type Option func(*Processor)

// WithHTTPClient replaces the shared gateway HTTP client
func WithHTTPClient(client *provider.ProviderHTTPClient) Option {
	return func(p *Processor) {
		p.httpClient = client
	}
}

// WithBaseURLs replaces the sandbox and production transaction URLs
func WithBaseURLs(sandboxURL, productionURL string) Option {
	return func(p *Processor) {
		p.sandboxURL = sandboxURL
		p.productionURL = productionURL
	}
}

// WithLocalizer sets the resolver for form warnings and descriptions
func WithLocalizer(localizer Localizer) Option {
	return func(p *Processor) {
		p.localizer = localizer
	}
}

// WithPaymentLogger records each gateway exchange on logger
func WithPaymentLogger(paymentLogger PaymentLogger) Option {
	return func(p *Processor) {
		p.paymentLogger = paymentLogger
	}
}

// NewProcessor creates a PaySafe payment method reading store settings from settings
func NewProcessor(settings SettingsSource, opts ...Option) *Processor {
	p := &Processor{
		settings:      settings,
		sandboxURL:    apiSandboxURL,
		productionURL: apiProductionURL,
		localizer:     DefaultResources,
		validate:      newFormValidator(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.httpClient == nil {
		p.httpClient = provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig("", defaultTimeout))
	}

	return p
}

// Capabilities returns the operations the gateway supports
func (p *Processor) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		SupportCapture:         true,
		SupportPartiallyRefund: true,
		SupportRefund:          true,
		SupportVoid:            true,
		RecurringPaymentType:   "not_supported",
		PaymentMethodType:      "standard",
		SkipPaymentInfo:        false,
		HideInWidgetList:       false,
		Description:            p.localizer.GetResource(resourcePaymentMethodDescription),
	}
}

// ProcessPayment authorizes (authonly) or sells (sale) against the card in request
func (p *Processor) ProcessPayment(ctx context.Context, request provider.ProcessPaymentRequest) *provider.ProcessPaymentResult {
	result := &provider.ProcessPaymentResult{}

	settings, ok := p.loadSettings(request.StoreID, &result.Result)
	if !ok {
		return result
	}

	mode := request.TransactMode
	if mode == 0 {
		mode = settings.TransactMode
	}
	if !mode.Valid() {
		result.AddError(provider.ErrorKindValidation, "unsupported transaction mode: %d", int(mode))
		return result
	}

	expDate, err := formatExpDate(request.CreditCardExpireMonth, request.CreditCardExpireYear)
	if err != nil {
		result.AddError(provider.ErrorKindValidation, "%s", err.Error())
		return result
	}
	orderTotal := roundAmount(request.OrderTotal)
	if !orderTotal.IsPositive() {
		result.AddError(provider.ErrorKindValidation, "order total must be greater than zero")
		return result
	}

	action := actionAuthOnly
	if mode == config.TransactModeAuthorizeAndCapture {
		action = actionSale
	}

	creds := CredentialsFromSettings(settings)
	envelope, status, ok := p.send(ctx, gatewayCall{
		operation: "process_payment",
		storeID:   request.StoreID,
		method:    http.MethodPost,
		url:       p.transactionsURL(creds.Sandbox),
		creds:     creds,
		amount:    orderTotal,
		body: transactionRequest{Transaction: saleTransaction{
			LocationID:        creds.LocationID,
			PaymentMethod:     paymentMethodCard,
			Action:            action,
			AccountNumber:     request.CreditCardNumber,
			ExpDate:           expDate,
			CCV:               request.CreditCardCvv2,
			TransactionAmount: formatAmount(orderTotal),
			BillingStreet:     request.BillingAddress.Street,
			BillingCity:       request.BillingAddress.City,
			BillingPhone:      request.BillingAddress.Phone,
			BillingState:      request.BillingAddress.StateAbbreviation,
			BillingZip:        request.BillingAddress.ZipCode,
		}},
	}, &result.Result)
	if !ok {
		return result
	}

	tx := envelope.Transaction
	if tx == nil || tx.ID == "" {
		rejected(&result.Result, envelope, status, "gateway returned no transaction id")
		return result
	}

	ref, err := provider.NewTransactionReference(tx.ID.String(), tx.AuthCode.String())
	if err != nil {
		result.AddError(provider.ErrorKindParse, "Exception Occurred: %s", err.Error())
		return result
	}

	result.AuthorizationTransactionCode = ref.String()
	result.AuthorizationTransactionResult = fmt.Sprintf("Approved.  Status ID: %s, Reason Code: %s", tx.StatusID, tx.ReasonCodeID)
	result.AvsResult = tx.AvsEnhanced.String()
	result.Cvv2Result = tx.CvvResponse.String()

	if mode == config.TransactModeAuthorizeAndCapture {
		result.NewPaymentStatus = provider.StatusPaid
	} else {
		result.NewPaymentStatus = provider.StatusAuthorized
	}

	return result
}

// Capture completes an authorization stored on the order
func (p *Processor) Capture(ctx context.Context, request provider.CaptureRequest) *provider.CapturePaymentResult {
	result := &provider.CapturePaymentResult{}

	ref, err := provider.ParseTransactionReference(request.Order.AuthorizationTransactionCode)
	if err != nil {
		result.AddError(provider.ErrorKindValidation, "%s", err.Error())
		return result
	}

	settings, ok := p.loadSettings(request.Order.StoreID, &result.Result)
	if !ok {
		return result
	}

	creds := CredentialsFromSettings(settings)
	envelope, _, ok := p.send(ctx, gatewayCall{
		operation:     "capture",
		storeID:       request.Order.StoreID,
		method:        http.MethodPut,
		url:           p.transactionURL(creds.Sandbox, ref.TransactionID),
		creds:         creds,
		body:          transactionRequest{Transaction: actionTransaction{Action: actionAuthComplete}},
		transactionID: ref.TransactionID,
	}, &result.Result)
	if !ok {
		return result
	}

	tx := envelope.Transaction
	if tx == nil {
		result.AddError(provider.ErrorKindParse, "Exception Occurred: gateway response has no transaction")
		return result
	}

	captureRef, err := provider.NewTransactionReference(tx.ID.String(), tx.AuthCode.String())
	if err != nil {
		result.AddError(provider.ErrorKindParse, "Exception Occurred: %s", err.Error())
		return result
	}

	result.CaptureTransactionID = captureRef.String()
	result.CaptureTransactionResult = fmt.Sprintf("Captured.  Status ID: %s, Reason Code: %s", tx.StatusID, tx.ReasonCodeID)
	result.NewPaymentStatus = provider.StatusPaid
	return result
}

// Refund creates a refund transaction against the order's latest reference
func (p *Processor) Refund(ctx context.Context, request provider.RefundRequest) *provider.RefundPaymentResult {
	result := &provider.RefundPaymentResult{}

	ref, err := provider.ParseTransactionReference(latestReference(request.Order))
	if err != nil {
		result.AddError(provider.ErrorKindValidation, "%s", err.Error())
		return result
	}
	amountToRefund := roundAmount(request.AmountToRefund)
	if !amountToRefund.IsPositive() {
		result.AddError(provider.ErrorKindValidation, "amount to refund must be greater than zero")
		return result
	}

	settings, ok := p.loadSettings(request.Order.StoreID, &result.Result)
	if !ok {
		return result
	}

	creds := CredentialsFromSettings(settings)
	if _, _, ok := p.send(ctx, gatewayCall{
		operation:     "refund",
		storeID:       request.Order.StoreID,
		method:        http.MethodPost,
		url:           p.transactionsURL(creds.Sandbox),
		creds:         creds,
		amount:        amountToRefund,
		transactionID: ref.TransactionID,
		body: transactionRequest{Transaction: refundTransaction{
			Action:                actionRefund,
			PaymentMethod:         paymentMethodCard,
			PreviousTransactionID: ref.TransactionID,
			TransactionAmount:     formatAmount(amountToRefund),
			LocationID:            creds.LocationID,
		}},
	}, &result.Result); !ok {
		return result
	}

	if isFullyRefunded(request.Order, amountToRefund, settings.RefundTolerance) {
		result.NewPaymentStatus = provider.StatusRefunded
	} else {
		result.NewPaymentStatus = provider.StatusPartiallyRefunded
	}
	return result
}

// Void voids the order's latest transaction
func (p *Processor) Void(ctx context.Context, request provider.VoidRequest) *provider.VoidPaymentResult {
	result := &provider.VoidPaymentResult{}

	ref, err := provider.ParseTransactionReference(latestReference(request.Order))
	if err != nil {
		result.AddError(provider.ErrorKindValidation, "%s", err.Error())
		return result
	}

	settings, ok := p.loadSettings(request.Order.StoreID, &result.Result)
	if !ok {
		return result
	}

	creds := CredentialsFromSettings(settings)
	if _, _, ok := p.send(ctx, gatewayCall{
		operation:     "void",
		storeID:       request.Order.StoreID,
		method:        http.MethodPut,
		url:           p.transactionURL(creds.Sandbox, ref.TransactionID),
		creds:         creds,
		body:          transactionRequest{Transaction: actionTransaction{Action: actionVoid}},
		transactionID: ref.TransactionID,
	}, &result.Result); !ok {
		return result
	}

	result.NewPaymentStatus = provider.StatusVoided
	return result
}

// ProcessRecurringPayment is not supported by the gateway integration
func (p *Processor) ProcessRecurringPayment(ctx context.Context, request provider.ProcessPaymentRequest) *provider.ProcessPaymentResult {
	result := &provider.ProcessPaymentResult{}
	result.AddError(provider.ErrorKindNotSupported, "%s", p.localizer.GetResource(resourceRecurringNotSupported))
	return result
}

// CancelRecurringPayment is not supported by the gateway integration
func (p *Processor) CancelRecurringPayment(ctx context.Context, request provider.CancelRecurringRequest) *provider.CancelRecurringPaymentResult {
	result := &provider.CancelRecurringPaymentResult{}
	result.AddError(provider.ErrorKindNotSupported, "%s", p.localizer.GetResource(resourceRecurringNotSupported))
	return result
}

// latestReference prefers the capture reference over the authorization reference
func latestReference(order provider.Order) string {
	if order.CaptureTransactionID != "" {
		return order.CaptureTransactionID
	}
	return order.AuthorizationTransactionCode
}

// isFullyRefunded compares the refunded total with the order total within tolerance
func isFullyRefunded(order provider.Order, amountToRefund, tolerance decimal.Decimal) bool {
	refundedTotal := amountToRefund.Add(order.RefundedAmount)
	return refundedTotal.Sub(order.OrderTotal).Abs().LessThanOrEqual(tolerance)
}

func (p *Processor) transactionsURL(sandbox bool) string {
	if sandbox {
		return p.sandboxURL
	}
	return p.productionURL
}

func (p *Processor) transactionURL(sandbox bool, transactionID string) string {
	return p.transactionsURL(sandbox) + "/" + url.PathEscape(transactionID)
}

// loadSettings loads and checks the settings of a store, recording a validation error on failure
func (p *Processor) loadSettings(storeID int, result *provider.Result) (config.PaySafeSettings, bool) {
	settings, err := p.settings.LoadSettings(storeID)
	if err != nil {
		result.AddError(provider.ErrorKindValidation, "failed to load settings: %s", err.Error())
		return config.PaySafeSettings{}, false
	}
	if err := settings.Validate(); err != nil {
		result.AddError(provider.ErrorKindValidation, "%s", err.Error())
		return config.PaySafeSettings{}, false
	}
	return settings, true
}

type gatewayCall struct {
	operation     string
	storeID       int
	method        string
	url           string
	creds         Credentials
	body          any
	amount        decimal.Decimal
	transactionID string
}

// send performs one gateway call. It returns false after recording the failure on result:
// transport errors, non-2xx responses and unreadable 2xx bodies.
func (p *Processor) send(ctx context.Context, call gatewayCall, result *provider.Result) (*Envelope, int, bool) {
	log := logger.WithContext(logger.LogContext{
		StoreID:  strconv.Itoa(call.storeID),
		Provider: providerName,
	}).AddField("operation", call.operation).AddField("sandbox", call.creds.Sandbox)

	exchange := opensearch.PaymentLog{
		StoreID:       call.storeID,
		Provider:      providerName,
		Operation:     call.operation,
		TransactionID: call.transactionID,
		Sandbox:       call.creds.Sandbox,
		Request:       opensearch.RequestLog{Method: call.method, Endpoint: call.url},
	}
	if !call.amount.IsZero() {
		exchange.Amount = formatAmount(call.amount)
	}
	if body, err := json.Marshal(call.body); err == nil {
		exchange.Request.Body = string(body)
	}

	start := time.Now()
	resp, err := p.httpClient.SendJSON(ctx, &provider.HTTPRequest{
		Method:   call.method,
		Endpoint: call.url,
		Headers:  authHeaders(call.creds),
		Body:     call.body,
	})
	elapsed := time.Since(start).Milliseconds()
	log.AddField("duration_ms", elapsed)
	exchange.Response.ProcessingTimeMs = elapsed

	if err != nil {
		log.AddField("error_kind", provider.ErrorKindNetwork).Error("PaySafe Error", err)
		result.AddError(provider.ErrorKindNetwork, "Exception Occurred: %s", err.Error())
		p.record(ctx, exchange, result)
		return nil, 0, false
	}
	log.AddField("status_code", resp.StatusCode)
	exchange.Response.StatusCode = resp.StatusCode
	exchange.Response.Body = string(resp.Body)

	envelope, parseErr := parseEnvelope(resp.Body)

	if !resp.IsSuccess() {
		rejected(result, envelope, resp.StatusCode, "")
		log.AddField("error_kind", provider.ErrorKindGatewayRejected).Warn("PaySafe rejected " + call.operation)
		p.record(ctx, exchange, result)
		return envelope, resp.StatusCode, false
	}

	if parseErr != nil {
		log.AddField("error_kind", provider.ErrorKindParse).Error("PaySafe Error", parseErr)
		result.AddError(provider.ErrorKindParse, "Exception Occurred: failed to parse gateway response: %s", parseErr.Error())
		p.record(ctx, exchange, result)
		return nil, resp.StatusCode, false
	}

	if envelope.Transaction != nil && envelope.Transaction.ID != "" {
		log.AddField("transaction_id", envelope.Transaction.ID.String())
		exchange.TransactionID = envelope.Transaction.ID.String()
	}
	log.Info("PaySafe " + call.operation + " completed")
	p.record(ctx, exchange, result)

	return envelope, resp.StatusCode, true
}

// record hands the exchange to the payment logger. Failures to record never fail the payment.
func (p *Processor) record(ctx context.Context, exchange opensearch.PaymentLog, result *provider.Result) {
	if p.paymentLogger == nil {
		return
	}

	exchange.Status = "approved"
	if !result.Success() {
		exchange.Status = "failed"
		exchange.ErrorKind = string(result.ErrorKind)
		exchange.ErrorMessage = strings.Join(result.Errors, "; ")
	}

	if err := p.paymentLogger.LogPayment(ctx, exchange); err != nil {
		logger.Warn("Failed to record PaySafe exchange: "+err.Error(), logger.LogContext{
			StoreID:  strconv.Itoa(exchange.StoreID),
			Provider: providerName,
		})
	}
}

// rejected records a gateway rejection, preferring the gateway's own error text
func rejected(result *provider.Result, envelope *Envelope, status int, fallback string) {
	message := envelope.errorMessage()
	if message == "" {
		message = fallback
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
	}
	result.AddError(provider.ErrorKindGatewayRejected, "PaySafe rejected the transaction: %s", message)
}
