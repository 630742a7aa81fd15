package entity

import "github.com/shopspring/decimal"

// RoundMoney rounds an amount to cents.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// MoneyGreater compares two amounts at cent precision.
func MoneyGreater(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).GreaterThan(decimal.NewFromFloat(b).Round(2))
}
