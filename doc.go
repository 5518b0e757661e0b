// Package gopaysafe is a payment gateway adapter for PaySafe (Expinet) card processing.
// It exposes the operations a storefront needs to take card payments through the
// PaySafe transaction API behind a small, standardized HTTP service.
//
// # Overview
//
// A storefront posts its checkout form and order totals to gopaysafe. gopaysafe validates
// the card fields, builds the PaySafe transaction request with the store's credentials
// and reports the outcome in a uniform result envelope:
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│   Storefront    │◄──►│    gopaysafe    │◄──►│  PaySafe API    │
//	│  (store 0..n)   │    │    (adapter)    │    │ (sandbox/prod)  │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// # Supported Operations
//
//   - Authorize only or authorize and capture (sale)
//   - Capture of a prior authorization
//   - Full and partial refunds
//   - Void
//   - Checkout form validation and form to request mapping
//   - Additional handling fee, fixed or percentage
//
// Recurring payments are not supported and always report a failure.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//
//	    "github.com/mstgnz/gopaysafe/infra/config"
//	    "github.com/mstgnz/gopaysafe/provider"
//	    "github.com/mstgnz/gopaysafe/provider/paysafe"
//	    "github.com/shopspring/decimal"
//	)
//
//	func main() {
//	    settings := config.NewSettingsStore(nil)
//	    _ = settings.SaveSettings(config.GlobalStoreID, map[string]string{
//	        config.KeyUseSandbox:   "true",
//	        config.KeyLocationID:   "location-id",
//	        config.KeyDeveloperID:  "developer-id",
//	        config.KeyUserID:       "user-id",
//	        config.KeyUserAPIKey:   "user-api-key",
//	    })
//
//	    processor := paysafe.NewProcessor(settings)
//	    result := processor.ProcessPayment(context.Background(), provider.ProcessPaymentRequest{
//	        CreditCardNumber:      "4111111111111111",
//	        CreditCardCvv2:        "123",
//	        CreditCardExpireMonth: 12,
//	        CreditCardExpireYear:  2030,
//	        OrderTotal:            decimal.RequireFromString("100.50"),
//	    })
//	    if !result.Success() {
//	        // result.ErrorKind and result.Errors describe the failure
//	    }
//	}
//
// # HTTP API
//
// The service in cmd serves these routes. Everything under /v1 requires
// "Authorization: Bearer <API_KEY>". The optional X-Store-ID header selects the store scope.
//
//	GET    /health
//	POST   /v1/payments/process
//	POST   /v1/payments/validate
//	POST   /v1/payments/capture
//	POST   /v1/payments/refund
//	POST   /v1/payments/void
//	POST   /v1/payments/recurring
//	POST   /v1/payments/recurring/cancel
//	GET    /v1/payments/fee?cartTotal=100
//	GET    /v1/payments/capabilities
//	GET    /v1/settings/fields
//	GET    /v1/settings/stats
//	GET    /v1/settings/{storeID}
//	PUT    /v1/settings/{storeID}
//	DELETE /v1/settings/{storeID}
//	GET    /v1/logs
//	GET    /v1/logs/errors
//	GET    /v1/logs/stats
//	GET    /v1/logs/transactions/{transactionID}
//
// Gateway outcomes are always returned with status 200. A declined or failed
// operation carries "success": false and the gateway errors in the data.
//
// # Configuration
//
// Service settings come from the environment, optionally loaded from a .env file:
//
//	APP_PORT=9999
//	ENVIRONMENT=development
//	API_KEY=your-api-key
//	IP_WHITELIST=127.0.0.1,10.0.0.0/8
//	TRUSTED_PROXIES=10.0.0.0/8
//	RATE_LIMIT_PER_MINUTE=100
//	PAYMENT_RATE_LIMIT_PER_MINUTE=30
//	SQLITE_PATH=data/gopaysafe.db
//	ENABLE_OPENSEARCH_LOGGING=false
//	OPENSEARCH_URL=http://localhost:9200
//	LOGGING_LEVEL=info
//
// The global PaySafe settings are seeded from PAYSAFE_USE_SANDBOX, PAYSAFE_TRANSACT_MODE,
// PAYSAFE_LOCATION_ID, PAYSAFE_DEVELOPER_ID, PAYSAFE_USER_ID, PAYSAFE_USER_API_KEY,
// PAYSAFE_ADDITIONAL_FEE, PAYSAFE_ADDITIONAL_FEE_PERCENTAGE and PAYSAFE_REFUND_TOLERANCE.
// Store scopes override individual keys through the settings API and fall back to
// the global scope for the rest.
//
// # Security
//
// Card numbers, card codes and API keys are never written to logs. Settings responses
// redact secret fields.
package gopaysafe
