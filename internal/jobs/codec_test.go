package jobs

import (
	"testing"
	"time"
)

func TestEncodeDecode_ShareInvitation(t *testing.T) {
	payload := ShareInvitationPayload{
		OwnerID:      "owner-123",
		GranteeEmail: "bob@x.test",
		GrantedAt:    time.Now().UTC(),
	}

	b, err := EncodePayload(JobShareInvitation, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	decoded, err := DecodePayload(JobShareInvitation, b)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(ShareInvitationPayload)
	if !ok {
		t.Fatalf("expected ShareInvitationPayload, got %T", decoded)
	}

	if p.OwnerID != payload.OwnerID {
		t.Fatalf("expected ownerId %s, got %s", payload.OwnerID, p.OwnerID)
	}

	if p.GranteeEmail != payload.GranteeEmail {
		t.Fatalf("expected granteeEmail %s, got %s", payload.GranteeEmail, p.GranteeEmail)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobShareInvitation, MetricsDigestPayload{
		OwnerID: "owner-123",
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if err != ErrPayloadTypeMismatch {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestValidatePayload_RequiredIDs(t *testing.T) {
	err := ValidatePayload(JobShareInvitation, ShareInvitationPayload{OwnerID: ""})
	if err == nil {
		t.Fatalf("expected error")
	}

	err = ValidatePayload(JobMetricsDigest, MetricsDigestPayload{OwnerID: ""})
	if err == nil {
		t.Fatalf("expected error")
	}
}
