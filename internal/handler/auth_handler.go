package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type authService interface {
	SessionLogin(ctx context.Context, kind models.PrincipalKind, req models.LoginRequest, previousSessionID string) (*models.Session, *models.SessionLoginResponse, error)
	TokenLogin(ctx context.Context, kind models.PrincipalKind, req models.LoginRequest) (*models.TokenLoginResponse, error)
	Logout(ctx context.Context, principal *models.Principal, sessionID string, meta models.RequestMeta) error
	SessionTTL() time.Duration
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler serves the login and logout endpoints of one account kind.
type AuthHandler struct {
	service authService
	kind    models.PrincipalKind
	cookie  CookieConfig
}

// NewAuthHandler creates a handler for kind.
func NewAuthHandler(svc authService, kind models.PrincipalKind, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	return &AuthHandler{service: svc, kind: kind, cookie: cookie}
}

// SessionLogin godoc
// @Summary Log in with a session cookie
// @Description Authenticate by user name or email and password; sets an HTTP-only session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /users/auth/session/login [post]
// @Router /teachers/auth/session/login [post]
func (h *AuthHandler) SessionLogin(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "login") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	previous, _ := c.Cookie(h.cookie.Name)

	session, res, err := h.service.SessionLogin(c.Request.Context(), h.kind, req, previous)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, session.ID, int(h.service.SessionTTL().Seconds()), "/", "", h.cookie.Secure, true)
	response.OK(c, res)
}

// TokenLogin godoc
// @Summary Log in for a bearer token
// @Description Authenticate by user name or email and password; returns a signed login token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /users/auth/token/login [post]
// @Router /teachers/auth/token/login [post]
func (h *AuthHandler) TokenLogin(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "login") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.TokenLogin(c.Request.Context(), h.kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Logout godoc
// @Summary Log out
// @Description Destroy the current session. Bearer tokens stay valid until they expire.
// @Tags Authentication
// @Produce json
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /users/logout [post]
// @Router /teachers/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	sessionID := middleware.SessionID(c)
	if err := h.service.Logout(c.Request.Context(), principal, sessionID, middleware.RequestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	if sessionID != "" {
		c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	}
	response.NoContent(c)
}
