package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/gopaysafe/handler"
	"github.com/mstgnz/gopaysafe/infra/validate"
	"github.com/mstgnz/gopaysafe/provider"
)

// Services are the components behind the v1 API
type Services struct {
	PaymentMethod provider.PaymentMethod
	Settings      handler.SettingsManager
	Logs          handler.LogSearcher
	Validate      *validator.Validate
}

// Routes registers all API routes
func Routes(r chi.Router, svc Services) {
	v := svc.Validate
	if v == nil {
		v = validate.New()
	}

	paymentHandler := handler.NewPaymentHandler(svc.PaymentMethod, v)
	configHandler := handler.NewConfigHandler(svc.Settings)
	logsHandler := handler.NewLogsHandler(svc.Logs)

	// Payment routes
	r.Route("/payments", func(r chi.Router) {
		r.Post("/process", paymentHandler.ProcessPayment)
		r.Post("/validate", paymentHandler.ValidatePaymentForm)
		r.Post("/capture", paymentHandler.Capture)
		r.Post("/refund", paymentHandler.Refund)
		r.Post("/void", paymentHandler.Void)
		r.Post("/recurring", paymentHandler.ProcessRecurringPayment)
		r.Post("/recurring/cancel", paymentHandler.CancelRecurringPayment)
		r.Get("/fee", paymentHandler.AdditionalFee)
		r.Get("/capabilities", paymentHandler.Capabilities)
	})

	// Store settings routes
	r.Route("/settings", func(r chi.Router) {
		r.Get("/fields", configHandler.GetFields)
		r.Get("/stats", configHandler.GetStats)
		r.Get("/{storeID}", configHandler.GetSettings)
		r.Put("/{storeID}", configHandler.SaveSettings)
		r.Delete("/{storeID}", configHandler.DeleteSettings)
	})

	// Gateway exchange logs
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", logsHandler.ListLogs)
		r.Get("/errors", logsHandler.GetErrorLogs)
		r.Get("/stats", logsHandler.GetLogStats)
		r.Get("/transactions/{transactionID}", logsHandler.GetTransactionLogs)
	})
}
