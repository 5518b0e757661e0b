package validate

import (
	"testing"

	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/shopspring/decimal"
)

type amountForm struct {
	Total  decimal.Decimal `validate:"gt=0"`
	Refund decimal.Decimal `validate:"gte=0"`
}

func TestDecimalRules(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		form  amountForm
		valid bool
	}{
		{"positive total", amountForm{Total: decimal.RequireFromString("0.01")}, true},
		{"zero total", amountForm{Total: decimal.Zero}, false},
		{"negative total", amountForm{Total: decimal.NewFromInt(-3)}, false},
		{"negative refund", amountForm{Total: decimal.NewFromInt(1), Refund: decimal.NewFromInt(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if tt.valid && err != nil {
				t.Errorf("Expected valid form, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestCustomValidate(t *testing.T) {
	CustomValidate()

	if err := config.App().Validator.Struct(amountForm{Total: decimal.NewFromInt(5)}); err != nil {
		t.Errorf("Expected valid form, got %v", err)
	}
	if err := config.App().Validator.Struct(amountForm{}); err == nil {
		t.Error("Expected zero total to fail on the application validator")
	}
}

func BenchmarkValidation(b *testing.B) {
	v := New()
	form := amountForm{Total: decimal.NewFromInt(10)}

	for i := 0; i < b.N; i++ {
		_ = v.Struct(form)
	}
}
