package services

import "math"

// billingTiers maps a monthly usage ceiling in kWh to the price of a full
// block at that ceiling. The matched tier's price divided by its ceiling
// gives the effective unit rate, which keeps the bill curve continuous
// across tier boundaries instead of jumping at each one.
var billingTiers = []struct {
	ceiling float64
	price   float64
}{
	{30, 195.00},
	{60, 500.00},
	{90, 1480.00},
	{120, 2680.00},
	{150, 4170.00},
	{180, 5160.00},
	{210, 7220.00},
	{240, 8780.00},
	{270, 10340.00},
	{300, 11900.00},
}

// CalculateBillAmount converts a month's total energy into a bill amount
// using the tiered unit rate. A ceiling matches inclusively, and usage
// beyond the top tier keeps the top tier's unit rate.
func CalculateBillAmount(totalKWh float64) float64 {
	if totalKWh <= 0 {
		return 0
	}
	for _, tier := range billingTiers {
		if totalKWh <= tier.ceiling {
			return round2(tier.price / tier.ceiling * totalKWh)
		}
	}
	top := billingTiers[len(billingTiers)-1]
	return round2(top.price / top.ceiling * totalKWh)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
