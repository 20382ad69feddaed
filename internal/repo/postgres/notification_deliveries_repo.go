package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifehubhq/lifehub/internal/domain/delivery"
)

type NotificationsDeliveriesRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationsDeliveriesRepo(pool *pgxpool.Pool) *NotificationsDeliveriesRepo {
	return &NotificationsDeliveriesRepo{pool: pool}
}

// TryStart claims one delivery for sending. deliveryKey identifies the
// logical notification (for share invitations: owner, grantee email and
// grant timestamp), so queue redeliveries of the same job collapse to a
// single send.
func (r *NotificationsDeliveriesRepo) TryStart(
	ctx context.Context,
	kind string,
	deliveryKey string,
	jobID string,
	recipient string,
) error {
	// 1) Insert if missing
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_deliveries (kind, delivery_key, job_id, recipient, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'sending', NOW(), NOW())
	`, kind, deliveryKey, jobID, recipient)

	if err == nil {
		return nil
	}
	if !IsUniqueViolation(err) {
		return err
	}

	// 2) Row exists. If it was failed, "claim" it for retry by switching back to sending.
	// This is atomic: only one worker can flip failed -> sending.
	tag, uErr := r.pool.Exec(ctx, `
		UPDATE notification_deliveries
		SET status = 'sending',
		    job_id = $3,
		    recipient = $4,
		    last_error = NULL,
		    updated_at = NOW()
		WHERE kind = $1 AND delivery_key = $2 AND status = 'failed'
	`, kind, deliveryKey, jobID, recipient)

	if uErr != nil {
		return uErr
	}
	if tag.RowsAffected() == 1 {
		return nil // we successfully claimed the retry
	}

	// 3) Not failed. Determine whether it's already sent or currently sending.
	var status string
	var sentAt *time.Time

	qErr := r.pool.QueryRow(ctx, `
		SELECT status, sent_at
		FROM notification_deliveries
		WHERE kind = $1 AND delivery_key = $2
	`, kind, deliveryKey).Scan(&status, &sentAt)

	if qErr != nil {
		if errors.Is(qErr, pgx.ErrNoRows) {
			// row disappeared; let caller retry
			return nil
		}
		return qErr
	}

	if sentAt != nil || status == "sent" {
		return delivery.ErrAlreadySent
	}

	// status == "sending"
	return delivery.ErrInProgress
}

func (r *NotificationsDeliveriesRepo) MarkSent(
	ctx context.Context,
	kind string,
	deliveryKey string,
	providerMessageID *string,
) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_deliveries
		SET status = 'sent',
		    sent_at = NOW(),
		    provider_message_id = $3,
		    last_error = NULL,
		    updated_at = NOW()
		WHERE kind = $1 AND delivery_key = $2
	`, kind, deliveryKey, providerMessageID)

	return err
}

func (r *NotificationsDeliveriesRepo) MarkFailed(
	ctx context.Context,
	kind string,
	deliveryKey string,
	errMsg string,
) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_deliveries
		SET status = 'failed',
		    last_error = $3,
		    updated_at = NOW()
		WHERE kind = $1 AND delivery_key = $2
	`, kind, deliveryKey, errMsg)

	return err
}
