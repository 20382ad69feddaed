package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lifehubhq/lifehub/internal/domain/bizmetric"
	"github.com/lifehubhq/lifehub/internal/domain/delivery"
	"github.com/lifehubhq/lifehub/internal/domain/job"
	"github.com/lifehubhq/lifehub/internal/domain/user"
	"github.com/lifehubhq/lifehub/internal/jobs"
	"github.com/lifehubhq/lifehub/internal/notifications"
)

type UserSource interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type DeliveryLog interface {
	TryStart(ctx context.Context, kind, deliveryKey, jobID, recipient string) error
	MarkSent(ctx context.Context, kind, deliveryKey string, providerMessageID *string) error
	MarkFailed(ctx context.Context, kind, deliveryKey, errMsg string) error
}

type SummarySource interface {
	Summaries(ctx context.Context, ownerID string) ([]bizmetric.Summary, error)
}

const (
	deliveryKindShareInvitation = "share.invitation"
	deliveryKindMetricsDigest   = "metrics.digest"
)

// ShareInvitationHandler emails (via the notifier) the grantee that an
// owner shared their account. The deliveries table keeps queue
// redeliveries from double-sending.
func ShareInvitationHandler(users UserSource, deliveries DeliveryLog, notifier notifications.Notifier) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		decoded, err := jobs.DecodePayload(jobs.JobShareInvitation, j.Payload)

		if err != nil {
			return Permanent(err)
		}

		p := decoded.(jobs.ShareInvitationPayload)

		if err := jobs.ValidatePayload(jobs.JobShareInvitation, p); err != nil {
			return Permanent(err)
		}

		owner, err := users.GetByID(ctx, p.OwnerID)

		if err != nil {
			// owner gone means the grant is meaningless; drop the job
			return Permanent(fmt.Errorf("load owner %s: %w", p.OwnerID, err))
		}

		key := fmt.Sprintf("%s:%s:%s", p.OwnerID, p.GranteeEmail, p.GrantedAt.UTC().Format(time.RFC3339))

		err = deliveries.TryStart(ctx, deliveryKindShareInvitation, key, j.ID, p.GranteeEmail)

		if err != nil {
			if errors.Is(err, delivery.ErrAlreadySent) {
				return nil
			}

			if errors.Is(err, delivery.ErrInProgress) {
				// another worker is on it; retry later to confirm the outcome
				return err
			}

			return err
		}

		err = notifier.SendShareInvitation(ctx, notifications.SendShareInvitationInput{
			OwnerEmail:   owner.Email,
			OwnerName:    owner.Name,
			GranteeEmail: p.GranteeEmail,
			GrantedAt:    p.GrantedAt,
		})

		if err != nil {
			_ = deliveries.MarkFailed(ctx, deliveryKindShareInvitation, key, err.Error())
			return err
		}

		return deliveries.MarkSent(ctx, deliveryKindShareInvitation, key, nil)
	}
}

// MetricsDigestHandler aggregates one owner's business metrics and
// sends the digest to the owner.
func MetricsDigestHandler(users UserSource, summaries SummarySource, deliveries DeliveryLog, notifier notifications.Notifier) HandlerFunc {
	return func(ctx context.Context, j job.Job) error {
		decoded, err := jobs.DecodePayload(jobs.JobMetricsDigest, j.Payload)

		if err != nil {
			return Permanent(err)
		}

		p := decoded.(jobs.MetricsDigestPayload)

		if err := jobs.ValidatePayload(jobs.JobMetricsDigest, p); err != nil {
			return Permanent(err)
		}

		owner, err := users.GetByID(ctx, p.OwnerID)

		if err != nil {
			return Permanent(fmt.Errorf("load owner %s: %w", p.OwnerID, err))
		}

		sums, err := summaries.Summaries(ctx, p.OwnerID)

		if err != nil {
			return err
		}

		lines := make([]string, 0, len(sums))

		for _, s := range sums {
			lines = append(lines, fmt.Sprintf("%s: count=%d sum=%.2f avg=%.2f latest=%.2f",
				s.Name, s.Count, s.Sum, s.Average, s.Latest))
		}

		key := "digest:" + p.OwnerID + ":" + j.ID

		err = deliveries.TryStart(ctx, deliveryKindMetricsDigest, key, j.ID, owner.Email)

		if err != nil {
			if errors.Is(err, delivery.ErrAlreadySent) {
				return nil
			}

			return err
		}

		err = notifier.SendMetricsDigest(ctx, notifications.SendMetricsDigestInput{
			OwnerEmail: owner.Email,
			Lines:      lines,
		})

		if err != nil {
			_ = deliveries.MarkFailed(ctx, deliveryKindMetricsDigest, key, err.Error())
			return err
		}

		return deliveries.MarkSent(ctx, deliveryKindMetricsDigest, key, nil)
	}
}
