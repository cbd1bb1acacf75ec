package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"violence-detection/pkg/models"
)

const (
	CookieName = "vds_session"
	sessionKey = "session"
)

// TokenFromRequest returns the session token from the cookie or, failing
// that, from an "Authorization: Bearer" header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func SetCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", false, true)
}

func ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

// CurrentSession returns the session stored by one of the middlewares, if any.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*models.Session)
	return s, ok
}

func lookup(c *gin.Context) (*models.Session, bool) {
	token := TokenFromRequest(c)
	if token == "" {
		return nil, false
	}
	session, err := Resolve(token)
	if err != nil {
		return nil, false
	}
	c.Set(sessionKey, session)
	return session, true
}

// RequireAPISession rejects unauthenticated API calls with 401.
func RequireAPISession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := lookup(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequirePageSession sends unauthenticated browsers back to the login page.
func RequirePageSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := lookup(c); !ok {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalSession attaches the session when one is present.
func OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		lookup(c)
		c.Next()
	}
}
