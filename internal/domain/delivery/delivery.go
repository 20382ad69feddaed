package delivery

import "errors"

// Exactly-once guard states for outbound notifications. The jobs queue
// retries at-least-once; the deliveries table collapses that to one
// send per delivery key.
var (
	ErrAlreadySent = errors.New("notification already sent")
	ErrInProgress  = errors.New("notification send in progress")
)
