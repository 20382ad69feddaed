package jobs

import "strings"

// ValidatePayload performs minimal validation on decoded payloads.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobShareInvitation:
		var p ShareInvitationPayload
		switch v := payload.(type) {
		case ShareInvitationPayload:
			p = v
		case *ShareInvitationPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.OwnerID) == "" || trim(p.GranteeEmail) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobMetricsDigest:
		var p MetricsDigestPayload
		switch v := payload.(type) {
		case MetricsDigestPayload:
			p = v
		case *MetricsDigestPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.OwnerID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
