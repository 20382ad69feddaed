package notifications

import (
	"context"
	"time"
)

type SendShareInvitationInput struct {
	OwnerEmail   string
	OwnerName    string
	GranteeEmail string
	GrantedAt    time.Time
}

type SendMetricsDigestInput struct {
	OwnerEmail string
	Lines      []string
}

type Notifier interface {
	SendShareInvitation(ctx context.Context, input SendShareInvitationInput) error
	SendMetricsDigest(ctx context.Context, input SendMetricsDigestInput) error
}
