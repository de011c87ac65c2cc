package models

import (
	"time"

	"github.com/google/uuid"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "MONTHLY"
	CycleYearly  BillingCycle = "YEARLY"
)

func (c BillingCycle) Valid() bool {
	return c == CycleMonthly || c == CycleYearly
}

type Subscription struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	ServiceName     string       `json:"service_name" db:"service_name"`
	Cost            float64      `json:"cost" db:"cost"`
	BillingCycle    BillingCycle `json:"billing_cycle" db:"billing_cycle"`
	StartDate       Date         `json:"start_date" db:"start_date"`
	NextRenewalDate Date         `json:"next_renewal_date" db:"next_renewal_date"`
	OwnerEmail      string       `json:"owner_email" db:"owner_email"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}
