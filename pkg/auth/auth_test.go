package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violence-detection/cmd/config"
	"violence-detection/pkg/database"
	"violence-detection/pkg/models"
)

func setup(t *testing.T) *models.User {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.SecretKey = "test-secret"
	config.SessionTTL = time.Hour

	require.NoError(t, database.Init(":memory:"))
	t.Cleanup(func() { database.DB.Close() })

	user, err := database.CreateUser("user1", "password123", "user")
	require.NoError(t, err)
	return user
}

func TestSessionLifecycle(t *testing.T) {
	user := setup(t)

	token, session, err := StartSession(user)
	require.NoError(t, err)

	got, err := Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "user1", got.Username)

	require.NoError(t, EndSession(token))
	_, err = Resolve(token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResolveExpiredSession(t *testing.T) {
	user := setup(t)
	config.SessionTTL = -time.Minute

	token, _, err := StartSession(user)
	require.NoError(t, err)

	_, err = Resolve(token)
	assert.Error(t, err)
}

func TestValidateJWTWrongKey(t *testing.T) {
	user := setup(t)
	token, _, err := StartSession(user)
	require.NoError(t, err)

	config.SecretKey = "rotated"
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	user := setup(t)
	token, _, err := StartSession(user)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/ping", RequireAPISession(), func(c *gin.Context) {
		s, ok := CurrentSession(c)
		require.True(t, ok)
		c.String(http.StatusOK, s.Username)
	})
	r.GET("/page", RequirePageSession(), func(c *gin.Context) {
		c.String(http.StatusOK, "page")
	})

	tests := []struct {
		name   string
		path   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{name: "api no session", path: "/api/ping", status: http.StatusUnauthorized},
		{
			name:   "api cookie",
			path:   "/api/ping",
			setup:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) },
			status: http.StatusOK,
			body:   "user1",
		},
		{
			name:   "api bearer",
			path:   "/api/ping",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			status: http.StatusOK,
			body:   "user1",
		},
		{
			name:   "api garbage token",
			path:   "/api/ping",
			setup:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			status: http.StatusUnauthorized,
		},
		{name: "page redirect", path: "/page", status: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.setup != nil {
				tt.setup(req)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
