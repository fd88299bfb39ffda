package behavior

import "time"

// PeriodDays maps a reporting period to its length in days. 7d and 30d are
// recognized; anything else is 90 days.
func PeriodDays(period string) int {
	switch period {
	case "7d":
		return 7
	case "30d":
		return 30
	default:
		return 90
	}
}

// Since returns the start of the reporting window ending at now.
func Since(now time.Time, period string) time.Time {
	return now.AddDate(0, 0, -PeriodDays(period))
}
