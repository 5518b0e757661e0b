package paysafe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/gopaysafe/provider"
)

var cardCodePattern = regexp.MustCompile(`^[0-9]{3,4}$`)

// paymentInfoModel carries the checkout form through the validator.
// Field order is the order warnings are reported in.
type paymentInfoModel struct {
	CardNumber  string `validate:"credit_card"`
	CardCode    string `validate:"cvv"`
	ExpireMonth string `validate:"required"`
	ExpireYear  string `validate:"required"`
}

var fieldResources = map[string]string{
	"CardNumber":  resourceCardNumberWrong,
	"CardCode":    resourceCardCodeWrong,
	"ExpireMonth": resourceExpireMonthMissing,
	"ExpireYear":  resourceExpireYearMissing,
}

func newFormValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
		return cardCodePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidatePaymentForm returns the localized warnings for a checkout form. No warnings means the form is valid.
func (p *Processor) ValidatePaymentForm(form provider.PaymentInfoForm) []string {
	model := paymentInfoModel{
		CardNumber:  form.CardNumber,
		CardCode:    form.CardCode,
		ExpireMonth: form.ExpireMonth,
		ExpireYear:  form.ExpireYear,
	}

	err := p.validate.Struct(model)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	warnings := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		key, ok := fieldResources[fieldErr.StructField()]
		if !ok {
			warnings = append(warnings, fieldErr.Error())
			continue
		}
		warnings = append(warnings, p.localizer.GetResource(key))
	}
	return warnings
}

// GetPaymentInfo maps a checkout form onto a payment request. Month and year must be integers.
func (p *Processor) GetPaymentInfo(form provider.PaymentInfoForm) (provider.ProcessPaymentRequest, error) {
	month, err := strconv.Atoi(strings.TrimSpace(form.ExpireMonth))
	if err != nil {
		return provider.ProcessPaymentRequest{}, fmt.Errorf("invalid expire month %q: %w", form.ExpireMonth, err)
	}

	year, err := strconv.Atoi(strings.TrimSpace(form.ExpireYear))
	if err != nil {
		return provider.ProcessPaymentRequest{}, fmt.Errorf("invalid expire year %q: %w", form.ExpireYear, err)
	}

	return provider.ProcessPaymentRequest{
		CreditCardNumber:      form.CardNumber,
		CreditCardCvv2:        form.CardCode,
		CreditCardExpireMonth: month,
		CreditCardExpireYear:  year,
	}, nil
}
