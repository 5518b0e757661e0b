package validate

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/shopspring/decimal"
)

// CustomValidate registers the custom types on the application validator
func CustomValidate() {
	register(config.App().Validator)
}

// New returns a validator with the custom types registered
func New() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

func register(v *validator.Validate) {
	// decimal amounts validate by value, so gt=0 and friends work on them
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}
