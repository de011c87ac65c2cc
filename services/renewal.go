package services

import (
	"subtrack/models"
)

// NextRenewalDate returns the first renewal date after the start of a
// subscription. MONTHLY advances one calendar month, anything else one
// calendar year. Day-of-month overflow rolls forward (time.AddDate
// normalization): a Jan 31 start renews Mar 2 in a leap year and Mar 3
// otherwise; a Feb 29 start renews Mar 1 in a non-leap year.
func NextRenewalDate(start models.Date, cycle models.BillingCycle) models.Date {
	if cycle == models.CycleMonthly {
		return models.NewDate(start.AddDate(0, 1, 0))
	}

	return models.NewDate(start.AddDate(1, 0, 0))
}
