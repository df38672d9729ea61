package patient

import "time"

// CheckupIntervalMonths returns the recommended number of months between
// check-ups for a risk profile. Unknown profiles fall back to the low-risk
// interval.
func CheckupIntervalMonths(profile RiskProfile) int {
	switch profile {
	case RiskHigh:
		return 3
	case RiskModerate:
		return 6
	default:
		return 12
	}
}

// NextCheckupDate computes the date of the next check-up from the last exam
// date and the risk profile.
//
// Month arithmetic uses time.AddDate, which normalizes overflowing days
// forward: Jan 31 + 3 months is May 1, not Apr 30. This matches the date
// library of the original system and is pinned by tests.
func NextCheckupDate(lastExam time.Time, profile RiskProfile) time.Time {
	return lastExam.AddDate(0, CheckupIntervalMonths(profile), 0)
}
