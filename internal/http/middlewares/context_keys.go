package middlewares

type ctxKey string

const (
	CtxUserID ctxKey = "userID"
	CtxRole   ctxKey = "role"
	CtxEmail  ctxKey = "email"
	KeyUserID ctxKey = "user_id"
)

// gin context keys (gin uses plain strings)
const (
	CtxRequestID     = "request_id"
	CtxJobID         = "job_id"
	CtxAccessContext = "access.context"
)
