package paysafe

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateAdditionalFee returns the fee charged on top of cartTotal.
// A percentage fee is rounded to two places.
func CalculateAdditionalFee(cartTotal, fee decimal.Decimal, usePercentage bool) decimal.Decimal {
	if !fee.IsPositive() {
		return decimal.Zero
	}

	if usePercentage {
		return cartTotal.Mul(fee).Div(hundred).Round(2)
	}
	return fee
}

// AdditionalHandlingFee returns the configured fee of a store for cartTotal
func (p *Processor) AdditionalHandlingFee(storeID int, cartTotal decimal.Decimal) (decimal.Decimal, error) {
	settings, err := p.settings.LoadSettings(storeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("paysafe: failed to load settings: %w", err)
	}
	return CalculateAdditionalFee(cartTotal, settings.AdditionalFee, settings.AdditionalFeePercentage), nil
}
