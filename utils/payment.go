package utils

import "math"

// PaymentBreakdown is the fee split of a booking price
type PaymentBreakdown struct {
	Total          float64 `json:"total"`
	PlatformFee    float64 `json:"platform_fee"`
	ProviderAmount float64 `json:"provider_amount"`
}

// CalculatePaymentAmounts splits a price into the 5% platform fee and the
// provider's share. Rounding is to 2 decimals, half away from zero
// (math.Round semantics); the two parts always sum back to the total.
func CalculatePaymentAmounts(price float64) PaymentBreakdown {
	platformFee := roundCents(price * 0.05)
	providerAmount := roundCents(price - platformFee)
	return PaymentBreakdown{
		Total:          price,
		PlatformFee:    platformFee,
		ProviderAmount: providerAmount,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
