package access

// EffectiveContext is the answer to "whose rows is this request
// operating on". It is derived per request and never persisted or
// cached, so a revoked grant takes effect on the very next call.
type EffectiveContext struct {
	CallerID    string
	CallerEmail string

	EffectiveOwnerID string
	OwnerEmail       string

	ViewingOwnData bool
}
