package loan

import "math"

// monthlyRate converts an annual rate in basis points to a monthly fraction
func monthlyRate(rateBps int) float64 {
	return float64(rateBps) / 10000.0 / 12.0
}

// EMI computes the equal monthly installment for a fully amortizing loan:
// P*r*(1+r)^n / ((1+r)^n - 1), rounded to the nearest minor unit. The EMI
// is a schedule value; actual repayment splits stay integer-exact.
func EMI(principal int64, rateBps, tenureMonths int) int64 {
	if tenureMonths < 1 {
		return 0
	}
	r := monthlyRate(rateBps)
	if r == 0 {
		return int64(math.Round(float64(principal) / float64(tenureMonths)))
	}
	pow := math.Pow(1+r, float64(tenureMonths))
	return int64(math.Round(float64(principal) * r * pow / (pow - 1)))
}

// PeriodInterest computes one month's interest on the outstanding
// principal, rounded to the nearest minor unit.
func PeriodInterest(outstanding int64, rateBps int) int64 {
	return int64(math.Round(float64(outstanding) * monthlyRate(rateBps)))
}
