package orderingserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/b2b-ordering-api/internal/shared/identity"
)

// Authenticator resolves a session token into the caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Identity, error)
}

// BearerAuth attaches the identity behind "Authorization: Bearer <token>" to
// the request context. Missing or rejected tokens leave the request
// anonymous; operations that need a caller fail later with 401.
func BearerAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if auth == nil || token == "" {
			c.Next()
			return
		}
		caller, err := auth.Authenticate(c.Request.Context(), token)
		if err == nil {
			c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), caller))
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
