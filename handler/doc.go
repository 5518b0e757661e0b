// Package handler provides the HTTP request handlers of the gopaysafe service.
//
// Handlers decode requests, call into the payment method or the settings and log
// stores, and write the standard response envelope:
//
//	{"success": true, "message": "...", "data": {...}}
//
// # Handlers
//
//   - PaymentHandler: authorize or sale, capture, refund, void, recurring, fee and capabilities
//   - ConfigHandler: per-store PaySafe settings with secret fields redacted
//   - LogsHandler: search over the OpenSearch payment logs
//   - HealthHandler: service, gateway configuration and system health
//
// # Store Scope
//
// The X-Store-ID header sets the store a request runs for. Without it the global
// scope (store 0) is used. A store-scoped caller only ever sees the logs of its own store.
//
//	POST /v1/payments/process
//	Headers:
//	  X-Store-ID: 7
//	  Authorization: Bearer your-api-key
//	  Content-Type: application/json
//
//	Body:
//	{
//	  "paymentInfo": {
//	    "cardNumber": "4111111111111111",
//	    "cardCode": "123",
//	    "expireMonth": "12",
//	    "expireYear": "2030"
//	  },
//	  "orderTotal": "100.50",
//	  "billingAddress": {"street": "1 Main St", "city": "Austin", "zipCode": "73301"}
//	}
//
// # Results
//
// Gateway operations answer 200 even when the gateway declines. Malformed bodies and
// invalid checkout forms answer 400. Settings writes that fail validation answer 400,
// and log queries answer 503 while OpenSearch logging is disabled.
package handler
