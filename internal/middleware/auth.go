package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/rbac"
	"github.com/noah-isme/tutorhub-api/internal/service"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

const (
	// ContextPrincipalKey is the gin context key storing the authenticated principal.
	ContextPrincipalKey = "currentPrincipal"
	// ContextSessionKey stores the session id the request authenticated with, if any.
	ContextSessionKey = "currentSession"
)

type authenticator interface {
	Authenticate(ctx context.Context, kinds []models.PrincipalKind, carriers ...service.Carrier) (*models.Principal, error)
}

type authorizer interface {
	Authorize(ctx context.Context, principal *models.Principal, permission rbac.Permission) error
}

// Authenticate resolves the request's principal from the session cookie, then the
// bearer token. Only principals of the given kinds are admitted.
func Authenticate(auth authenticator, cookieName string, kinds ...models.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(cookieName)
		carriers := []service.Carrier{
			service.SessionCarrier{ID: sessionID},
			service.BearerCarrier{Token: bearerToken(c.GetHeader("Authorization"))},
		}

		principal, err := auth.Authenticate(c.Request.Context(), kinds, carriers...)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextPrincipalKey, principal)
		if sessionID != "" {
			c.Set(ContextSessionKey, sessionID)
		}
		c.Next()
	}
}

// Authorize requires the authenticated principal to hold permission. It must run
// after Authenticate.
func Authorize(auth authorizer, permission rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal(c)
		if principal == nil {
			response.Abort(c, appErrors.ErrUnauthenticated)
			return
		}
		if err := auth.Authorize(c.Request.Context(), principal, permission); err != nil {
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}

// Principal returns the principal stored by Authenticate, or nil.
func Principal(c *gin.Context) *models.Principal {
	value, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	principal, _ := value.(*models.Principal)
	return principal
}

// SessionID returns the session id the request authenticated with.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}

// RequestMeta captures the client details recorded in audit entries.
func RequestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
