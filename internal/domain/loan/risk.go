package loan

import "errors"

var ErrInvalidRiskLevel = errors.New("invalid risk level")

// RiskLevel is a coarse credit band derived from the borrower's score as
// captured at request time. The opportunity feed filters on it so lenders
// can screen by risk appetite without seeing raw scores.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Band boundaries in credit score points.
const (
	lowRiskMinScore    = 750
	mediumRiskMinScore = 700
)

// Valid reports whether r is a known risk level
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ScoreBounds returns the closed credit score range [min, max] the band
// covers. A zero max means unbounded above.
func (r RiskLevel) ScoreBounds() (minScore, maxScore int) {
	switch r {
	case RiskLow:
		return lowRiskMinScore, 0
	case RiskMedium:
		return mediumRiskMinScore, lowRiskMinScore - 1
	case RiskHigh:
		return 0, mediumRiskMinScore - 1
	}
	return 0, 0
}

// RiskLevelFor maps a credit score to its band
func RiskLevelFor(creditScore int) RiskLevel {
	switch {
	case creditScore >= lowRiskMinScore:
		return RiskLow
	case creditScore >= mediumRiskMinScore:
		return RiskMedium
	}
	return RiskHigh
}
