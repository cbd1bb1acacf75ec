package handlers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"violence-detection/pkg/auth"
	"violence-detection/pkg/database"
	"violence-detection/pkg/metrics"
	"violence-detection/pkg/models"
)

var allowedExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
}

func allowedVideo(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

func (h *Handler) UploadVideo(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "UploadVideo")
	defer span.End()

	session, _ := auth.CurrentSession(c)
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.UploadsTotal.WithLabelValues("too_large").Inc()
			fail(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		fail(c, http.StatusBadRequest, "No file")
		return
	}

	base := filepath.Base(file.Filename)
	if file.Filename == "" || base == "." || base == string(filepath.Separator) {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		fail(c, http.StatusBadRequest, "No file selected")
		return
	}
	if !allowedVideo(base) {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		fail(c, http.StatusBadRequest, "Invalid format")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Error("create upload dir failed", zap.Error(err))
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		fail(c, http.StatusInternalServerError, "Upload failed")
		return
	}

	path, err := h.saveUpload(file, fmt.Sprintf("%s_%s", h.now().Format("20060102_150405"), base))
	if err != nil {
		h.logger.Error("save upload failed", zap.String("filename", base), zap.Error(err))
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		fail(c, http.StatusInternalServerError, "Upload failed")
		return
	}
	filename := filepath.Base(path)
	span.SetAttributes(attribute.String("upload.path", path), attribute.Int64("upload.size", file.Size))

	video := models.Video{
		Filename: filename,
		Path:     path,
		Size:     file.Size,
	}
	if user, err := database.FindUser(session.Username); err == nil {
		video.UserID = user.ID
	}

	if h.archive != nil {
		key := fmt.Sprintf("videos/%s/%s", session.Username, filename)
		if url, err := h.archive.UploadPath(ctx, path, key); err != nil {
			h.logger.Warn("archive upload failed", zap.String("key", key), zap.Error(err))
		} else {
			video.URL = url
		}
	}

	if err := database.DB.Create(&video).Error; err != nil {
		h.logger.Error("save video record failed", zap.String("path", path), zap.Error(err))
		os.Remove(path)
		metrics.UploadsTotal.WithLabelValues("failed").Inc()
		fail(c, http.StatusInternalServerError, "Upload failed")
		return
	}

	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	h.logger.Info("file uploaded",
		zap.String("username", session.Username),
		zap.String("filename", filename),
		zap.Int64("size", file.Size),
	)
	c.JSON(http.StatusOK, models.UploadResponse{Success: true, Filepath: path, Filename: filename})
}

const maxNameAttempts = 100

// saveUpload writes the upload under uploadDir as name, or as name_N when
// an earlier upload already holds it. Existing files are never replaced.
func (h *Handler) saveUpload(file *multipart.FileHeader, name string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(h.uploadDir, candidate)
		dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}

		_, err = io.Copy(dst, src)
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free name for %s", name)
}
