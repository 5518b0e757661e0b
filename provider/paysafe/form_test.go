package paysafe

import (
	"testing"

	"github.com/mstgnz/gopaysafe/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePaymentForm(t *testing.T) {
	p := NewProcessor(StaticSettings(testSettings()))

	tests := []struct {
		name     string
		form     provider.PaymentInfoForm
		warnings []string
	}{
		{
			name: "valid visa",
			form: provider.PaymentInfoForm{CardNumber: "4111111111111111", CardCode: "123", ExpireMonth: "9", ExpireYear: "2027"},
		},
		{
			name: "four digit card code",
			form: provider.PaymentInfoForm{CardNumber: "4111111111111111", CardCode: "1234", ExpireMonth: "9", ExpireYear: "2027"},
		},
		{
			name:     "short card number",
			form:     provider.PaymentInfoForm{CardNumber: "1234", CardCode: "123", ExpireMonth: "9", ExpireYear: "2027"},
			warnings: []string{"Wrong card number"},
		},
		{
			name:     "two digit card code",
			form:     provider.PaymentInfoForm{CardNumber: "4111111111111111", CardCode: "12", ExpireMonth: "9", ExpireYear: "2027"},
			warnings: []string{"Wrong card code"},
		},
		{
			name:     "letters in card code",
			form:     provider.PaymentInfoForm{CardNumber: "4111111111111111", CardCode: "12a", ExpireMonth: "9", ExpireYear: "2027"},
			warnings: []string{"Wrong card code"},
		},
		{
			name:     "empty form",
			form:     provider.PaymentInfoForm{},
			warnings: []string{"Wrong card number", "Wrong card code", "Expire month is required", "Expire year is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.warnings, p.ValidatePaymentForm(tt.form))
		})
	}
}

func TestValidatePaymentForm_Localized(t *testing.T) {
	p := NewProcessor(StaticSettings(testSettings()), WithLocalizer(ResourceMap{
		resourceCardNumberWrong: "Kart numarası hatalı",
	}))

	warnings := p.ValidatePaymentForm(provider.PaymentInfoForm{CardNumber: "1", CardCode: "123", ExpireMonth: "1", ExpireYear: "2030"})
	assert.Equal(t, []string{"Kart numarası hatalı"}, warnings)

	// unknown keys resolve to the key itself
	assert.Equal(t, resourceCardCodeWrong, ResourceMap{}.GetResource(resourceCardCodeWrong))
}

func TestGetPaymentInfo(t *testing.T) {
	p := NewProcessor(StaticSettings(testSettings()))

	req, err := p.GetPaymentInfo(provider.PaymentInfoForm{
		CardNumber:  "4111111111111111",
		CardCode:    "123",
		ExpireMonth: " 09 ",
		ExpireYear:  "2027",
	})
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", req.CreditCardNumber)
	assert.Equal(t, "123", req.CreditCardCvv2)
	assert.Equal(t, 9, req.CreditCardExpireMonth)
	assert.Equal(t, 2027, req.CreditCardExpireYear)

	_, err = p.GetPaymentInfo(provider.PaymentInfoForm{ExpireMonth: "September", ExpireYear: "2027"})
	assert.ErrorContains(t, err, "invalid expire month")

	_, err = p.GetPaymentInfo(provider.PaymentInfoForm{ExpireMonth: "9", ExpireYear: ""})
	assert.ErrorContains(t, err, "invalid expire year")
}
