package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classlottery/internal/database"
	"classlottery/internal/models"

	"github.com/jackc/pgx/v5"
)

// MembershipRepository stores export memberships in membership_records.
type MembershipRepository struct {
	db *database.DB
}

func NewMembershipRepository(db *database.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create inserts membership and sets its id.
func (r *MembershipRepository) Create(ctx context.Context, membership *models.MembershipRecord) error {
	query := `
		INSERT INTO membership_records
		(user_id, membership_type, order_no, amount, remaining_exports, purchase_time, expiry_time, status)
		VALUES ($1, $2, $3, $4::float8, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		membership.UserID,
		membership.MembershipType,
		membership.OrderNo,
		membership.Amount,
		membership.RemainingExports,
		membership.PurchaseTime,
		membership.ExpiryTime,
		membership.Status,
	).Scan(&membership.ID)
	if err != nil {
		return fmt.Errorf("failed to create membership for %s: %w", membership.UserID, err)
	}
	return nil
}

// GetActiveByUserID returns the most recently purchased membership of userID
// that is valid at now, or nil.
func (r *MembershipRepository) GetActiveByUserID(ctx context.Context, userID string, now time.Time) (*models.MembershipRecord, error) {
	query := `
		SELECT id, user_id, membership_type, order_no, amount::float8, remaining_exports,
		       purchase_time, expiry_time, status
		FROM membership_records
		WHERE user_id = $1
		  AND status = 'active'
		  AND (expiry_time IS NULL OR expiry_time > $2)
		  AND (membership_type = 'monthly' OR remaining_exports > 0)
		ORDER BY purchase_time DESC, id DESC
		LIMIT 1
	`

	var m models.MembershipRecord
	err := r.db.QueryRow(ctx, query, userID, now).Scan(
		&m.ID,
		&m.UserID,
		&m.MembershipType,
		&m.OrderNo,
		&m.Amount,
		&m.RemainingExports,
		&m.PurchaseTime,
		&m.ExpiryTime,
		&m.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership for %s: %w", userID, err)
	}
	return &m, nil
}

// ConsumeExport counts one export against a single membership, marking it
// used when the last export is spent.
func (r *MembershipRepository) ConsumeExport(ctx context.Context, id int64) error {
	query := `
		UPDATE membership_records
		SET remaining_exports = remaining_exports - 1,
		    status = CASE WHEN remaining_exports - 1 <= 0 THEN 'used' ELSE status END
		WHERE id = $1 AND membership_type = 'single' AND remaining_exports > 0
	`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to consume export of membership %d: %w", id, err)
	}
	return nil
}

// ExpireOverdue marks active memberships whose expiry has passed.
func (r *MembershipRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE membership_records
		SET status = 'expired'
		WHERE status = 'active' AND expiry_time IS NOT NULL AND expiry_time <= $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire memberships: %w", err)
	}
	return tag.RowsAffected(), nil
}
