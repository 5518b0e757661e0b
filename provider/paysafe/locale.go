package paysafe

// Localizer resolves a resource key to display text
type Localizer interface {
	GetResource(key string) string
}

// ResourceMap is a Localizer over a fixed set of strings. Unknown keys resolve to the key itself.
type ResourceMap map[string]string

// GetResource returns the text for key
func (m ResourceMap) GetResource(key string) string {
	if text, ok := m[key]; ok {
		return text
	}
	return key
}

const (
	resourceCardNumberWrong    = "Payment.CardNumber.Wrong"
	resourceCardCodeWrong      = "Payment.CardCode.Wrong"
	resourceExpireMonthMissing = "Payment.ExpireMonth.Required"
	resourceExpireYearMissing  = "Payment.ExpireYear.Required"

	resourcePaymentMethodDescription = "Plugins.Payments.PaySafe.PaymentMethodDescription"
	resourceRecurringNotSupported    = "Plugins.Payments.PaySafe.RecurringNotSupported"
)

// DefaultResources are the English strings used when no Localizer is configured
var DefaultResources = ResourceMap{
	resourceCardNumberWrong:          "Wrong card number",
	resourceCardCodeWrong:            "Wrong card code",
	resourceExpireMonthMissing:       "Expire month is required",
	resourceExpireYearMissing:        "Expire year is required",
	resourcePaymentMethodDescription: "Pay by credit / debit card",
	resourceRecurringNotSupported:    "Recurring payment not supported",
}
