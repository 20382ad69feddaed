package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifehubhq/lifehub/internal/access"
)

// DataContextHeader lets a caller with several grants pick whose data
// to operate on: an owner's email, or "self".
const DataContextHeader = "X-Data-Context"

type ContextResolver interface {
	Resolve(ctx *gin.Context) (access.EffectiveContext, error)
}

type resolverFunc struct {
	resolver *access.Resolver
}

func (r resolverFunc) Resolve(c *gin.Context) (access.EffectiveContext, error) {
	userID, _ := UserIDFromContext(c)
	email, _ := EmailFromContext(c)

	return r.resolver.Resolve(c.Request.Context(), userID, email, c.GetHeader(DataContextHeader))
}

type AccessContextMiddleware struct {
	resolver ContextResolver
}

func NewAccessContextMiddleware(resolver *access.Resolver) *AccessContextMiddleware {
	return &AccessContextMiddleware{resolver: resolverFunc{resolver: resolver}}
}

// NewAccessContextMiddlewareFrom lets tests plug a fake resolver.
func NewAccessContextMiddlewareFrom(resolver ContextResolver) *AccessContextMiddleware {
	return &AccessContextMiddleware{resolver: resolver}
}

// ResolveContext must run after RequireAuth on every route that
// touches owned rows. The result lives only for this request; grants
// are re-read every time so a revocation bites immediately.
func (m *AccessContextMiddleware) ResolveContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ec, err := m.resolver.Resolve(c)

		if err != nil {
			if errors.Is(err, access.ErrNoSuchGrant) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error": gin.H{
						"code":    "invalid_data_context",
						"message": "No active grant from the requested owner",
					},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "storage_unavailable",
					"message": "Temporary storage problem, please retry.",
				},
			})
			return
		}

		c.Set(CtxAccessContext, ec)

		c.Next()
	}
}

func AccessContextFrom(c *gin.Context) (access.EffectiveContext, bool) {
	v, ok := c.Get(CtxAccessContext)

	if !ok {
		return access.EffectiveContext{}, false
	}

	ec, ok := v.(access.EffectiveContext)

	return ec, ok
}
