package jobs

import (
	"encoding/json"
	"time"
)

// ShareInvitationPayload describes a grant that should be announced to
// the grantee. Keep payload minimal and ID-based; worker loads details
// from the DB.
type ShareInvitationPayload struct {
	OwnerID      string    `json:"ownerId"`
	GranteeEmail string    `json:"granteeEmail"`
	GrantedAt    time.Time `json:"grantedAt"`
	RequestID    string    `json:"requestId,omitempty"`
}

// MetricsDigestPayload asks for a digest of one owner's business metrics.
type MetricsDigestPayload struct {
	OwnerID   string `json:"ownerId"`
	ActorID   string `json:"actorId,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Helper to convert payload to json.RawMessage

func (p ShareInvitationPayload) ToJSONRaw() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func (p MetricsDigestPayload) ToJSONRaw() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
