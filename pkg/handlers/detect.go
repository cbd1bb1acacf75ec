package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"violence-detection/pkg/alerts"
	"violence-detection/pkg/auth"
	"violence-detection/pkg/database"
	"violence-detection/pkg/detection"
	"violence-detection/pkg/metrics"
	"violence-detection/pkg/models"
)

// within reports whether p resolves to a location under dir.
func within(dir, p string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	return strings.HasPrefix(absPath, absDir+string(filepath.Separator))
}

func (h *Handler) Detect(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "Detect")
	defer span.End()

	session, _ := auth.CurrentSession(c)

	var req models.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}
	threshold := h.defaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		fail(c, http.StatusBadRequest, "Threshold must be between 0 and 1")
		return
	}

	path, err := filepath.Abs(req.Filepath)
	if req.Filepath == "" || err != nil || !within(h.uploadDir, path) {
		fail(c, http.StatusNotFound, "File not found")
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		fail(c, http.StatusNotFound, "File not found")
		return
	}

	var video models.Video
	found := database.DB.Where("path = ?", path).First(&video).Error == nil
	if (found && !h.owns(session, &video)) || (!found && session.Role != "admin") {
		fail(c, http.StatusNotFound, "File not found")
		return
	}

	span.SetAttributes(attribute.String("video.path", path), attribute.Float64("detect.threshold", threshold))
	log := h.logger.With(zap.String("username", session.Username), zap.String("path", path))

	start := time.Now()
	result, err := h.analyzer.Analyze(ctx, path, threshold)
	if err != nil {
		switch {
		case errors.Is(err, detection.ErrModelNotLoaded):
			metrics.DetectionRunsTotal.WithLabelValues("no_model").Inc()
			fail(c, http.StatusInternalServerError, "Model not loaded")
		case errors.Is(err, detection.ErrOpenVideo):
			metrics.DetectionRunsTotal.WithLabelValues("unreadable").Inc()
			log.Warn("cannot open video", zap.Error(err))
			fail(c, http.StatusBadRequest, "Cannot open video")
		case errors.Is(err, context.Canceled):
			metrics.DetectionRunsTotal.WithLabelValues("cancelled").Inc()
			log.Info("detection cancelled by client")
			c.Abort()
		default:
			metrics.DetectionRunsTotal.WithLabelValues("failed").Inc()
			log.Error("detection error", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Detection failed")
		}
		return
	}

	metrics.DetectionRunsTotal.WithLabelValues("completed").Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.FramesSampledTotal.Add(float64(result.SampledFrames))
	metrics.ViolenceEventsTotal.Add(float64(result.ViolenceCount))

	if found {
		h.recordDetection(&video, threshold, result, log)
	}
	if result.ViolenceCount > 0 && h.alerts != nil {
		alert := alerts.Alert{
			Username:       session.Username,
			Filename:       filepath.Base(path),
			ViolenceCount:  result.ViolenceCount,
			BestConfidence: result.BestConfidence,
			BestTimestamp:  result.BestTimestamp,
			At:             h.now().UTC(),
		}
		if result.BestFrame != nil {
			alert.BestFrame = *result.BestFrame
		}
		if err := h.alerts.Publish(alert); err != nil {
			log.Warn("alert publish failed", zap.Error(err))
		}
	}

	log.Info("detection",
		zap.Int("violence_count", result.ViolenceCount),
		zap.Float64("average_confidence", result.AverageConfidence),
	)
	c.JSON(http.StatusOK, gin.H{"results": result})
}

func (h *Handler) owns(session *models.Session, video *models.Video) bool {
	if session.Role == "admin" || video.UserID == 0 {
		return true
	}
	user, err := database.FindUser(session.Username)
	return err == nil && user.ID == video.UserID
}

func (h *Handler) recordDetection(video *models.Video, threshold float64, result *detection.Result, log *zap.Logger) {
	record := models.Detection{
		VideoID:           video.ID,
		Threshold:         threshold,
		TotalFrames:       result.TotalFrames,
		ViolenceCount:     result.ViolenceCount,
		AverageConfidence: result.AverageConfidence,
		BestConfidence:    result.BestConfidence,
		BestTimestamp:     result.BestTimestamp,
	}
	if result.BestFrame != nil {
		record.BestFrame = *result.BestFrame
	}
	if err := database.DB.Create(&record).Error; err != nil {
		log.Warn("save detection record failed", zap.Error(err))
	}
}
