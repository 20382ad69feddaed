package notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendShareInvitation(ctx context.Context, in SendShareInvitationInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.share_invitation to=%s owner=%s owner_name=%q granted_at=%s",
		in.GranteeEmail, in.OwnerEmail, in.OwnerName, in.GrantedAt.UTC().Format(time.RFC3339),
	)
	return nil
}

func (n *LogNotifier) SendMetricsDigest(ctx context.Context, in SendMetricsDigestInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	log.Printf("notification.metrics_digest to=%s metrics=%d\n%s",
		in.OwnerEmail, len(in.Lines), strings.Join(in.Lines, "\n"),
	)
	return nil
}

func simulateProvider(ctx context.Context) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
