package repository

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"subtrack/models"
)

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, service_name, cost, billing_cycle, start_date, next_renewal_date, owner_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	return r.db.QueryRow(query,
		sub.ID, sub.ServiceName, sub.Cost, sub.BillingCycle,
		sub.StartDate, sub.NextRenewalDate, sub.OwnerEmail,
	).Scan(&sub.CreatedAt)
}

func (r *SubscriptionRepository) ListByOwner(ownerEmail string) ([]models.Subscription, error) {
	var subs []models.Subscription
	query := `
		SELECT id, service_name, cost, billing_cycle, start_date, next_renewal_date, owner_email, created_at
		FROM subscriptions
		WHERE owner_email = $1
		ORDER BY created_at
	`

	if err := r.db.Select(&subs, query, ownerEmail); err != nil {
		return nil, err
	}

	return subs, nil
}

// DeleteByOwner removes the record only when both id and owner match.
// A false return covers both "no such id" and "owned by someone else";
// callers must not distinguish the two.
func (r *SubscriptionRepository) DeleteByOwner(id uuid.UUID, ownerEmail string) (bool, error) {
	res, err := r.db.Exec(
		"DELETE FROM subscriptions WHERE id = $1 AND owner_email = $2",
		id, ownerEmail,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *SubscriptionRepository) ListByRenewalDate(date models.Date) ([]models.Subscription, error) {
	var subs []models.Subscription
	query := `
		SELECT id, service_name, cost, billing_cycle, start_date, next_renewal_date, owner_email, created_at
		FROM subscriptions
		WHERE next_renewal_date = $1
	`

	if err := r.db.Select(&subs, query, date); err != nil {
		return nil, err
	}

	return subs, nil
}

type SpendingSummary struct {
	TotalSubscriptions int     `json:"total_subscriptions" db:"total_subscriptions"`
	MonthlyCount       int     `json:"monthly_count" db:"monthly_count"`
	YearlyCount        int     `json:"yearly_count" db:"yearly_count"`
	MonthlySpend       float64 `json:"monthly_spend" db:"monthly_spend"`
}

// SummaryByOwner reports per-owner counts and the monthly-equivalent
// spend (yearly costs divided by 12).
func (r *SubscriptionRepository) SummaryByOwner(ownerEmail string) (SpendingSummary, error) {
	var s SpendingSummary
	query := `
		SELECT
			COUNT(*) AS total_subscriptions,
			COUNT(*) FILTER (WHERE billing_cycle = 'MONTHLY') AS monthly_count,
			COUNT(*) FILTER (WHERE billing_cycle <> 'MONTHLY') AS yearly_count,
			COALESCE(SUM(CASE WHEN billing_cycle = 'MONTHLY' THEN cost ELSE cost / 12 END), 0) AS monthly_spend
		FROM subscriptions
		WHERE owner_email = $1
	`

	if err := r.db.Get(&s, query, ownerEmail); err != nil {
		return SpendingSummary{}, err
	}

	return s, nil
}
