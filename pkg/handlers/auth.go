package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"violence-detection/cmd/config"
	"violence-detection/pkg/auth"
	"violence-detection/pkg/database"
	"violence-detection/pkg/metrics"
	"violence-detection/pkg/models"
)

func (h *Handler) Register(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	if _, err := database.FindUser(creds.Username); err == nil {
		fail(c, http.StatusConflict, "Username already taken")
		return
	}

	if _, err := database.CreateUser(creds.Username, creds.Password, "user"); err != nil {
		h.logger.Error("register failed", zap.String("username", creds.Username), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error creating user")
		return
	}

	h.logger.Info("account created", zap.String("username", creds.Username))
	c.JSON(http.StatusCreated, gin.H{"success": true, "status": "Account created"})
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := database.FindUser(req.Username)
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password))
	}
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		h.logger.Warn("login failed", zap.String("username", req.Username))
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, _, err := auth.StartSession(user)
	if err != nil {
		h.logger.Error("start session failed", zap.String("username", user.Username), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Error creating session")
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("accepted").Inc()
	h.logger.Info("login", zap.String("username", user.Username), zap.String("role", user.Role))
	auth.SetCookie(c, token, int(config.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true, "role": user.Role, "token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	if token := auth.TokenFromRequest(c); token != "" {
		if err := auth.EndSession(token); err != nil {
			h.logger.Warn("end session failed", zap.Error(err))
		}
	}
	auth.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
