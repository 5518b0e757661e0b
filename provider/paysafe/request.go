package paysafe

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	paymentMethodCard = "cc"

	actionSale         = "sale"
	actionAuthOnly     = "authonly"
	actionAuthComplete = "authcomplete"
	actionRefund       = "refund"
	actionVoid         = "void"
)

// transactionRequest is the body of every gateway call
type transactionRequest struct {
	Transaction any `json:"transaction"`
}

type saleTransaction struct {
	LocationID        string `json:"location_id"`
	PaymentMethod     string `json:"payment_method"`
	Action            string `json:"action"`
	AccountNumber     string `json:"account_number"`
	ExpDate           string `json:"exp_date"`
	CCV               string `json:"ccv"`
	TransactionAmount string `json:"transaction_amount"`
	BillingStreet     string `json:"billing_street"`
	BillingCity       string `json:"billing_city"`
	BillingPhone      string `json:"billing_phone"`
	BillingState      string `json:"billing_state"`
	BillingZip        string `json:"billing_zip"`
}

type refundTransaction struct {
	Action                string `json:"action"`
	PaymentMethod         string `json:"payment_method"`
	PreviousTransactionID string `json:"previous_transaction_id"`
	TransactionAmount     string `json:"transaction_amount"`
	LocationID            string `json:"location_id"`
}

type actionTransaction struct {
	Action string `json:"action"`
}

// roundAmount rounds to the cent, half away from zero. Amounts are rounded once and the
// rounded value is both sent to the gateway and used for status decisions.
func roundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// formatAmount renders an amount with exactly two decimals
func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// formatExpDate renders MMYY from a 1-12 month and a four digit year
func formatExpDate(month, year int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("invalid expire month: %d", month)
	}
	if year < 1000 || year > 9999 {
		return "", fmt.Errorf("invalid expire year: %d", year)
	}
	return fmt.Sprintf("%02d%02d", month, year%100), nil
}
