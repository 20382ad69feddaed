package jobs

import (
	"encoding/json"
	"fmt"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobShareInvitation:
		_, ok := payload.(ShareInvitationPayload)

		if !ok {
			_, ok2 := payload.(*ShareInvitationPayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}

	case JobMetricsDigest:
		_, ok := payload.(MetricsDigestPayload)

		if !ok {
			_, ok2 := payload.(*MetricsDigestPayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals raw payload bytes into the correct typed payload struct.
func DecodePayload(t JobType, raw []byte) (any, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(raw) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch t {
	case JobShareInvitation:
		var p ShareInvitationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	case JobMetricsDigest:
		var p MetricsDigestPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}
