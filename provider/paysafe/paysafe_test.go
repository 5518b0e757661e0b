package paysafe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/opensearch"
	"github.com/mstgnz/gopaysafe/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    map[string]map[string]any
}

// fakeGateway answers every call with the configured status and body
type fakeGateway struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []gatewayRequest
}

func newFakeGateway(t *testing.T, status int, body string) (*fakeGateway, *httptest.Server) {
	t.Helper()
	gw := &fakeGateway{status: status, body: body}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]map[string]any
		_ = json.Unmarshal(raw, &decoded)

		gw.mu.Lock()
		gw.requests = append(gw.requests, gatewayRequest{Method: r.Method, Path: r.URL.Path, Headers: r.Header.Clone(), Body: decoded})
		status, body := gw.status, gw.body
		gw.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return gw, server
}

func (g *fakeGateway) last(t *testing.T) gatewayRequest {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.requests, "gateway was not called")
	return g.requests[len(g.requests)-1]
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []opensearch.PaymentLog
	err     error
}

func (l *recordingLogger) LogPayment(ctx context.Context, entry opensearch.PaymentLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return l.err
}

func testSettings() config.PaySafeSettings {
	return config.PaySafeSettings{
		UseSandbox:   true,
		TransactMode: config.TransactModeAuthorizeAndCapture,
		LocationID:   "loc-123",
		DeveloperID:  "dev-456",
		UserID:       "user-789",
		UserAPIKey:   "api-key-secret",
	}
}

func newTestProcessor(t *testing.T, settings config.PaySafeSettings, server *httptest.Server, opts ...Option) *Processor {
	t.Helper()
	opts = append([]Option{WithBaseURLs(server.URL+"/sandbox", server.URL+"/production")}, opts...)
	return NewProcessor(StaticSettings(settings), opts...)
}

func paymentRequest() provider.ProcessPaymentRequest {
	return provider.ProcessPaymentRequest{
		StoreID:               1,
		CreditCardNumber:      "4111111111111111",
		CreditCardCvv2:        "123",
		CreditCardExpireMonth: 9,
		CreditCardExpireYear:  2027,
		OrderTotal:            decimal.RequireFromString("49.999"),
		BillingAddress: provider.Address{
			Street:            "1 Main St",
			City:              "Austin",
			Phone:             "555-0100",
			StateAbbreviation: "TX",
			ZipCode:           "73301",
		},
	}
}

const approvedBody = `{"transaction":{"id":"11ea1","auth_code":"A1B2C3","status_id":"101","reason_code_id":1000,"avs_enhanced":"Y","cvv_response":"M","verbiage":"APPROVED"}}`

func TestNewProcessor_Defaults(t *testing.T) {
	p := NewProcessor(StaticSettings(testSettings()))
	assert.Equal(t, apiSandboxURL, p.sandboxURL)
	assert.Equal(t, apiProductionURL, p.productionURL)
	assert.NotNil(t, p.httpClient)
	assert.Equal(t, "https://api.sandbox.expinet.net/v2/transactions", p.transactionsURL(true))
	assert.Equal(t, "https://api.expinet.net/v2/transactions/tx%2F1", p.transactionURL(false, "tx/1"))
}

func TestProcessor_Capabilities(t *testing.T) {
	caps := NewProcessor(StaticSettings(testSettings())).Capabilities()
	assert.True(t, caps.SupportCapture)
	assert.True(t, caps.SupportPartiallyRefund)
	assert.True(t, caps.SupportRefund)
	assert.True(t, caps.SupportVoid)
	assert.Equal(t, "not_supported", caps.RecurringPaymentType)
	assert.Equal(t, "standard", caps.PaymentMethodType)
	assert.False(t, caps.SkipPaymentInfo)
	assert.Equal(t, "Pay by credit / debit card", caps.Description)
}

func TestProcessPayment_Sale(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	p := newTestProcessor(t, testSettings(), server)

	result := p.ProcessPayment(context.Background(), paymentRequest())
	require.True(t, result.Success(), "errors: %v", result.Errors)

	assert.Equal(t, "11ea1,A1B2C3", result.AuthorizationTransactionCode)
	assert.Equal(t, "Approved.  Status ID: 101, Reason Code: 1000", result.AuthorizationTransactionResult)
	assert.Equal(t, "Y", result.AvsResult)
	assert.Equal(t, "M", result.Cvv2Result)
	assert.Equal(t, provider.StatusPaid, result.NewPaymentStatus)

	req := gw.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/sandbox", req.Path)
	assert.Equal(t, "dev-456", req.Headers.Get("developer-id"))
	assert.Equal(t, "user-789", req.Headers.Get("user-id"))
	assert.Equal(t, "api-key-secret", req.Headers.Get("user-api-key"))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))

	tx := req.Body["transaction"]
	assert.Equal(t, "sale", tx["action"])
	assert.Equal(t, "cc", tx["payment_method"])
	assert.Equal(t, "loc-123", tx["location_id"])
	assert.Equal(t, "4111111111111111", tx["account_number"])
	assert.Equal(t, "0927", tx["exp_date"])
	assert.Equal(t, "123", tx["ccv"])
	assert.Equal(t, "50.00", tx["transaction_amount"])
	assert.Equal(t, "1 Main St", tx["billing_street"])
	assert.Equal(t, "Austin", tx["billing_city"])
	assert.Equal(t, "555-0100", tx["billing_phone"])
	assert.Equal(t, "TX", tx["billing_state"])
	assert.Equal(t, "73301", tx["billing_zip"])
}

func TestProcessPayment_AuthorizeOnly(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	settings := testSettings()
	settings.TransactMode = config.TransactModeAuthorize
	settings.UseSandbox = false
	p := newTestProcessor(t, settings, server)

	req := paymentRequest()
	req.CreditCardExpireMonth = 12
	req.CreditCardExpireYear = 2030
	result := p.ProcessPayment(context.Background(), req)
	require.True(t, result.Success(), "errors: %v", result.Errors)
	assert.Equal(t, provider.StatusAuthorized, result.NewPaymentStatus)

	last := gw.last(t)
	assert.Equal(t, "/production", last.Path)
	assert.Equal(t, "authonly", last.Body["transaction"]["action"])
	assert.Equal(t, "1230", last.Body["transaction"]["exp_date"])
}

func TestProcessPayment_RequestModeOverridesSettings(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	p := newTestProcessor(t, testSettings(), server)

	req := paymentRequest()
	req.TransactMode = config.TransactModeAuthorize
	result := p.ProcessPayment(context.Background(), req)
	require.True(t, result.Success())
	assert.Equal(t, provider.StatusAuthorized, result.NewPaymentStatus)
	assert.Equal(t, "authonly", gw.last(t).Body["transaction"]["action"])
}

func TestProcessPayment_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*provider.ProcessPaymentRequest, *config.PaySafeSettings)
		contains string
	}{
		{"zero total", func(r *provider.ProcessPaymentRequest, _ *config.PaySafeSettings) { r.OrderTotal = decimal.Zero }, "order total"},
		{"total rounds to zero", func(r *provider.ProcessPaymentRequest, _ *config.PaySafeSettings) { r.OrderTotal = decimal.RequireFromString("0.004") }, "order total"},
		{"negative total", func(r *provider.ProcessPaymentRequest, _ *config.PaySafeSettings) { r.OrderTotal = decimal.NewFromInt(-5) }, "order total"},
		{"month 13", func(r *provider.ProcessPaymentRequest, _ *config.PaySafeSettings) { r.CreditCardExpireMonth = 13 }, "expire month"},
		{"two digit year", func(r *provider.ProcessPaymentRequest, _ *config.PaySafeSettings) { r.CreditCardExpireYear = 27 }, "expire year"},
		{"bad mode", func(r *provider.ProcessPaymentRequest, _ *config.PaySafeSettings) { r.TransactMode = 7 }, "transaction mode"},
		{"missing api key", func(_ *provider.ProcessPaymentRequest, s *config.PaySafeSettings) { s.UserAPIKey = "" }, "userApiKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
			settings := testSettings()
			req := paymentRequest()
			tt.mutate(&req, &settings)

			result := newTestProcessor(t, settings, server).ProcessPayment(context.Background(), req)
			require.False(t, result.Success())
			assert.Equal(t, provider.ErrorKindValidation, result.ErrorKind)
			assert.Contains(t, result.Errors[0], tt.contains)
			assert.Equal(t, 0, gw.calls(), "gateway must not be called")
		})
	}
}

func TestProcessPayment_GatewayRejected(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"field errors", http.StatusUnprocessableEntity, `{"errors":{"account_number":["is invalid"],"ccv":["is required"]}}`, "account_number: is invalid; ccv: is required"},
		{"no body", http.StatusInternalServerError, ``, "HTTP 500 Internal Server Error"},
		{"plain list", http.StatusBadRequest, `{"errors":["declined"]}`, "declined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newFakeGateway(t, tt.status, tt.body)
			result := newTestProcessor(t, testSettings(), server).ProcessPayment(context.Background(), paymentRequest())

			require.False(t, result.Success())
			assert.Equal(t, provider.ErrorKindGatewayRejected, result.ErrorKind)
			assert.Contains(t, result.Errors[0], tt.contains)
			assert.Empty(t, result.AuthorizationTransactionCode)
			assert.Empty(t, result.NewPaymentStatus)
		})
	}
}

func TestProcessPayment_NumericPassthroughFields(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"numeric amount", `{"transaction":{"id":"11ea1","auth_code":"A1","transaction_amount":49.99}}`, "11ea1,A1"},
		{"numeric location", `{"transaction":{"id":"11ea1","auth_code":"A1","location_id":123,"auth_amount":50}}`, "11ea1,A1"},
		{"empty type id", `{"transaction":{"id":"11ea1","auth_code":"A1","type_id":""}}`, "11ea1,A1"},
		{"numeric id", `{"transaction":{"id":12345,"auth_code":"A1","status_id":101,"reason_code_id":1000}}`, "12345,A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newFakeGateway(t, http.StatusOK, tt.body)
			result := newTestProcessor(t, testSettings(), server).ProcessPayment(context.Background(), paymentRequest())

			require.True(t, result.Success(), "errors: %v", result.Errors)
			assert.Equal(t, tt.expected, result.AuthorizationTransactionCode)
			assert.Equal(t, provider.StatusPaid, result.NewPaymentStatus)
		})
	}
}

func TestOrderOperations_NumericPassthroughFields(t *testing.T) {
	body := `{"transaction":{"id":98765,"auth_code":"C1","transaction_amount":49.99,"location_id":123,"type_id":""}}`
	_, server := newFakeGateway(t, http.StatusOK, body)
	p := newTestProcessor(t, testSettings(), server)
	order := provider.Order{OrderTotal: decimal.NewFromInt(50), AuthorizationTransactionCode: "auth-1,A"}

	capture := p.Capture(context.Background(), provider.CaptureRequest{Order: order})
	require.True(t, capture.Success(), "errors: %v", capture.Errors)
	assert.Equal(t, "98765,C1", capture.CaptureTransactionID)

	refund := p.Refund(context.Background(), provider.RefundRequest{Order: order, AmountToRefund: decimal.NewFromInt(50)})
	require.True(t, refund.Success(), "errors: %v", refund.Errors)
	assert.Equal(t, provider.StatusRefunded, refund.NewPaymentStatus)

	void := p.Void(context.Background(), provider.VoidRequest{Order: order})
	require.True(t, void.Success(), "errors: %v", void.Errors)
	assert.Equal(t, provider.StatusVoided, void.NewPaymentStatus)
}

func TestProcessPayment_MissingTransactionID(t *testing.T) {
	_, server := newFakeGateway(t, http.StatusOK, `{"transaction":{"auth_code":"A1"}}`)
	result := newTestProcessor(t, testSettings(), server).ProcessPayment(context.Background(), paymentRequest())

	require.False(t, result.Success())
	assert.Equal(t, provider.ErrorKindGatewayRejected, result.ErrorKind)
	assert.Contains(t, result.Errors[0], "no transaction id")
}

func TestProcessPayment_UnparseableBody(t *testing.T) {
	_, server := newFakeGateway(t, http.StatusOK, `<html>oops</html>`)
	result := newTestProcessor(t, testSettings(), server).ProcessPayment(context.Background(), paymentRequest())

	require.False(t, result.Success())
	assert.Equal(t, provider.ErrorKindParse, result.ErrorKind)
	assert.Contains(t, result.Errors[0], "Exception Occurred: ")
}

func TestProcessPayment_DelimiterInResponse(t *testing.T) {
	_, server := newFakeGateway(t, http.StatusOK, `{"transaction":{"id":"a,b","auth_code":"c"}}`)
	result := newTestProcessor(t, testSettings(), server).ProcessPayment(context.Background(), paymentRequest())

	require.False(t, result.Success())
	assert.Equal(t, provider.ErrorKindParse, result.ErrorKind)
}

func TestNetworkFailure_AllOperations(t *testing.T) {
	client := provider.NewProviderHTTPClient(&provider.HTTPClientConfig{Transport: failingTransport{}})
	p := NewProcessor(StaticSettings(testSettings()), WithHTTPClient(client))
	ctx := context.Background()
	order := provider.Order{OrderTotal: decimal.NewFromInt(100), AuthorizationTransactionCode: "tx-1,AUTH"}

	results := map[string]provider.Result{
		"process": p.ProcessPayment(ctx, paymentRequest()).Result,
		"capture": p.Capture(ctx, provider.CaptureRequest{Order: order}).Result,
		"refund":  p.Refund(ctx, provider.RefundRequest{Order: order, AmountToRefund: decimal.NewFromInt(10)}).Result,
		"void":    p.Void(ctx, provider.VoidRequest{Order: order}).Result,
	}

	for name, result := range results {
		t.Run(name, func(t *testing.T) {
			require.False(t, result.Success())
			assert.Equal(t, provider.ErrorKindNetwork, result.ErrorKind)
			assert.Contains(t, result.Errors[0], "Exception Occurred: ")
			assert.Contains(t, result.Errors[0], "connection refused")
		})
	}
}

func TestCapture(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, `{"transaction":{"id":"cap-9","auth_code":"Z9","status_id":101,"reason_code_id":1000}}`)
	p := newTestProcessor(t, testSettings(), server)

	result := p.Capture(context.Background(), provider.CaptureRequest{Order: provider.Order{
		StoreID:                      1,
		AuthorizationTransactionCode: "11ea1,A1B2C3",
	}})
	require.True(t, result.Success(), "errors: %v", result.Errors)
	assert.Equal(t, "cap-9,Z9", result.CaptureTransactionID)
	assert.Equal(t, provider.StatusPaid, result.NewPaymentStatus)
	assert.Contains(t, result.CaptureTransactionResult, "Status ID: 101")

	req := gw.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/sandbox/11ea1", req.Path)
	assert.Equal(t, map[string]any{"action": "authcomplete"}, req.Body["transaction"])
}

func TestCapture_InvalidReference(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	result := newTestProcessor(t, testSettings(), server).Capture(context.Background(), provider.CaptureRequest{})

	require.False(t, result.Success())
	assert.Equal(t, provider.ErrorKindValidation, result.ErrorKind)
	assert.Equal(t, 0, gw.calls())
}

func TestRefund(t *testing.T) {
	tests := []struct {
		name      string
		order     provider.Order
		amount    string
		tolerance string
		expected  provider.PaymentStatus
		prevID    string
	}{
		{
			name:     "full refund uses capture reference",
			order:    provider.Order{OrderTotal: decimal.NewFromInt(100), AuthorizationTransactionCode: "auth-1,A", CaptureTransactionID: "cap-1,C"},
			amount:   "100",
			expected: provider.StatusRefunded,
			prevID:   "cap-1",
		},
		{
			name:     "partial refund falls back to authorization",
			order:    provider.Order{OrderTotal: decimal.NewFromInt(100), AuthorizationTransactionCode: "auth-1,A"},
			amount:   "40",
			expected: provider.StatusPartiallyRefunded,
			prevID:   "auth-1",
		},
		{
			name:     "earlier refunds count",
			order:    provider.Order{OrderTotal: decimal.NewFromInt(100), RefundedAmount: decimal.NewFromInt(60), AuthorizationTransactionCode: "auth-1,A"},
			amount:   "40",
			expected: provider.StatusRefunded,
			prevID:   "auth-1",
		},
		{
			name:      "within tolerance",
			order:     provider.Order{OrderTotal: decimal.RequireFromString("100.00"), AuthorizationTransactionCode: "auth-1"},
			amount:    "99.99",
			tolerance: "0.01",
			expected:  provider.StatusRefunded,
			prevID:    "auth-1",
		},
		{
			name:     "amount is rounded before comparing",
			order:    provider.Order{OrderTotal: decimal.RequireFromString("50.00"), AuthorizationTransactionCode: "auth-1"},
			amount:   "49.999",
			expected: provider.StatusRefunded,
			prevID:   "auth-1",
		},
		{
			name:     "exact match required without tolerance",
			order:    provider.Order{OrderTotal: decimal.RequireFromString("100.00"), AuthorizationTransactionCode: "auth-1"},
			amount:   "99.99",
			expected: provider.StatusPartiallyRefunded,
			prevID:   "auth-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, server := newFakeGateway(t, http.StatusOK, `{"transaction":{"id":"ref-1"}}`)
			settings := testSettings()
			if tt.tolerance != "" {
				settings.RefundTolerance = decimal.RequireFromString(tt.tolerance)
			}

			result := newTestProcessor(t, settings, server).Refund(context.Background(), provider.RefundRequest{
				Order:          tt.order,
				AmountToRefund: decimal.RequireFromString(tt.amount),
			})
			require.True(t, result.Success(), "errors: %v", result.Errors)
			assert.Equal(t, tt.expected, result.NewPaymentStatus)

			req := gw.last(t)
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/sandbox", req.Path)
			tx := req.Body["transaction"]
			assert.Equal(t, "refund", tx["action"])
			assert.Equal(t, "cc", tx["payment_method"])
			assert.Equal(t, tt.prevID, tx["previous_transaction_id"])
			assert.Equal(t, decimal.RequireFromString(tt.amount).StringFixed(2), tx["transaction_amount"])
			assert.Equal(t, "loc-123", tx["location_id"])
		})
	}
}

func TestRefund_Validation(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, `{"transaction":{"id":"ref-1"}}`)
	p := newTestProcessor(t, testSettings(), server)

	for _, amount := range []string{"0", "-1", "0.004"} {
		result := p.Refund(context.Background(), provider.RefundRequest{
			Order:          provider.Order{OrderTotal: decimal.NewFromInt(10), AuthorizationTransactionCode: "auth-1"},
			AmountToRefund: decimal.RequireFromString(amount),
		})
		require.False(t, result.Success())
		assert.Equal(t, provider.ErrorKindValidation, result.ErrorKind)
	}

	result := p.Refund(context.Background(), provider.RefundRequest{
		Order:          provider.Order{AuthorizationTransactionCode: ","},
		AmountToRefund: decimal.NewFromInt(1),
	})
	require.False(t, result.Success())
	assert.Equal(t, provider.ErrorKindValidation, result.ErrorKind)
	assert.Contains(t, result.Errors[0], provider.ErrInvalidReference.Error())
	assert.Equal(t, 0, gw.calls())
}

func TestVoid(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, `{"transaction":{"id":"cap-1"}}`)
	p := newTestProcessor(t, testSettings(), server)

	result := p.Void(context.Background(), provider.VoidRequest{Order: provider.Order{
		AuthorizationTransactionCode: "auth-1,A",
		CaptureTransactionID:         "cap-1,C",
	}})
	require.True(t, result.Success(), "errors: %v", result.Errors)
	assert.Equal(t, provider.StatusVoided, result.NewPaymentStatus)

	req := gw.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/sandbox/cap-1", req.Path)
	assert.Equal(t, map[string]any{"action": "void"}, req.Body["transaction"])
}

func TestVoid_Rejected(t *testing.T) {
	_, server := newFakeGateway(t, http.StatusNotFound, `{"errors":{"id":"not found"}}`)
	result := newTestProcessor(t, testSettings(), server).Void(context.Background(), provider.VoidRequest{Order: provider.Order{
		AuthorizationTransactionCode: "auth-1,A",
	}})

	require.False(t, result.Success())
	assert.Equal(t, provider.ErrorKindGatewayRejected, result.ErrorKind)
	assert.Contains(t, result.Errors[0], "id: not found")
	assert.Empty(t, result.NewPaymentStatus)
}

func TestRecurring_NotSupported(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	p := newTestProcessor(t, testSettings(), server)

	processed := p.ProcessRecurringPayment(context.Background(), paymentRequest())
	require.False(t, processed.Success())
	assert.Equal(t, provider.ErrorKindNotSupported, processed.ErrorKind)
	assert.Equal(t, []string{"Recurring payment not supported"}, processed.Errors)

	cancelled := p.CancelRecurringPayment(context.Background(), provider.CancelRecurringRequest{})
	require.False(t, cancelled.Success())
	assert.Equal(t, provider.ErrorKindNotSupported, cancelled.ErrorKind)

	assert.Equal(t, 0, gw.calls())
}

func TestPaymentLogger_RecordsExchanges(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	recorder := &recordingLogger{}
	p := newTestProcessor(t, testSettings(), server, WithPaymentLogger(recorder))

	require.True(t, p.ProcessPayment(context.Background(), paymentRequest()).Success())

	gw.mu.Lock()
	gw.status, gw.body = http.StatusBadRequest, `{"errors":["declined"]}`
	gw.mu.Unlock()
	require.False(t, p.Void(context.Background(), provider.VoidRequest{Order: provider.Order{StoreID: 1, AuthorizationTransactionCode: "11ea1,A1B2C3"}}).Success())

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.entries, 2)

	approved := recorder.entries[0]
	assert.Equal(t, "process_payment", approved.Operation)
	assert.Equal(t, "paysafe", approved.Provider)
	assert.Equal(t, 1, approved.StoreID)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "11ea1", approved.TransactionID)
	assert.Equal(t, "50.00", approved.Amount)
	assert.True(t, approved.Sandbox)
	assert.Equal(t, http.StatusOK, approved.Response.StatusCode)
	assert.Equal(t, http.MethodPost, approved.Request.Method)
	assert.NotContains(t, approved.Request.Body, "api-key-secret")

	failed := recorder.entries[1]
	assert.Equal(t, "void", failed.Operation)
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, string(provider.ErrorKindGatewayRejected), failed.ErrorKind)
	assert.Contains(t, failed.ErrorMessage, "declined")
	assert.Equal(t, "11ea1", failed.TransactionID)
}

func TestPaymentLogger_FailureDoesNotFailPayment(t *testing.T) {
	_, server := newFakeGateway(t, http.StatusOK, approvedBody)
	p := newTestProcessor(t, testSettings(), server, WithPaymentLogger(&recordingLogger{err: errors.New("cluster down")}))

	result := p.ProcessPayment(context.Background(), paymentRequest())
	assert.True(t, result.Success())
	assert.Equal(t, provider.StatusPaid, result.NewPaymentStatus)
}

func TestStoreSettingsAreUsedPerCall(t *testing.T) {
	gw, server := newFakeGateway(t, http.StatusOK, approvedBody)
	store := config.NewSettingsStore(nil)
	require.NoError(t, store.SaveSettings(config.GlobalStoreID, map[string]string{
		config.KeyLocationID:  "global-loc",
		config.KeyDeveloperID: "dev",
		config.KeyUserID:      "user",
		config.KeyUserAPIKey:  "global-key",
	}))
	require.NoError(t, store.SaveSettings(2, map[string]string{
		config.KeyLocationID: "store-loc",
		config.KeyUserAPIKey: "store-key",
	}))

	p := NewProcessor(store, WithBaseURLs(server.URL+"/sandbox", server.URL+"/production"))

	req := paymentRequest()
	req.StoreID = 2
	require.True(t, p.ProcessPayment(context.Background(), req).Success())
	last := gw.last(t)
	assert.Equal(t, "store-loc", last.Body["transaction"]["location_id"])
	assert.Equal(t, "store-key", last.Headers.Get("user-api-key"))

	req.StoreID = 3
	require.True(t, p.ProcessPayment(context.Background(), req).Success())
	last = gw.last(t)
	assert.Equal(t, "global-loc", last.Body["transaction"]["location_id"])
	assert.Equal(t, "global-key", last.Headers.Get("user-api-key"))
}
