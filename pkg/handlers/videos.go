package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"violence-detection/pkg/auth"
	"violence-detection/pkg/database"
	"violence-detection/pkg/models"
)

// FetchVideos lists the caller's uploads, newest first, with their detection runs.
func (h *Handler) FetchVideos(c *gin.Context) {
	session, _ := auth.CurrentSession(c)

	user, err := database.FindUser(session.Username)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var videos []models.Video
	err = database.DB.
		Preload("Detections").
		Where("user_id = ?", user.ID).
		Order("id desc").
		Find(&videos).Error
	if err != nil {
		h.logger.Error("list videos failed", zap.String("username", user.Username), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Could not list videos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "videos": videos})
}
