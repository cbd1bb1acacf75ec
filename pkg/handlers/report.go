package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"violence-detection/pkg/auth"
	"violence-detection/pkg/metrics"
	"violence-detection/pkg/models"
	"violence-detection/pkg/report"
)

func (h *Handler) GenerateReport(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GenerateReport")
	defer span.End()

	session, _ := auth.CurrentSession(c)

	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request")
		return
	}

	in := report.Input{
		Filename:       req.Filename,
		ViolenceCount:  req.ViolenceCount,
		BestConfidence: req.BestConfidence,
		AvgConfidence:  req.AvgConfidence,
		BestTimestamp:  req.BestTimestamp,
	}
	if req.BestFramePath != "" {
		frame := filepath.Clean(req.BestFramePath)
		if within(h.detectionDir, frame) {
			in.BestFramePath = frame
		} else {
			h.logger.Warn("ignoring best frame outside detection dir", zap.String("path", req.BestFramePath))
		}
	}
	span.SetAttributes(attribute.Int("report.violence_count", req.ViolenceCount))

	pdf, err := h.reports.Build(in)
	if err != nil {
		metrics.ReportsGeneratedTotal.WithLabelValues("failed").Inc()
		h.logger.Error("report generation failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Report generation failed")
		return
	}

	name := report.DownloadName(h.now())
	if h.archive != nil {
		key := fmt.Sprintf("reports/%s/%s", session.Username, name)
		if _, err := h.archive.UploadFile(ctx, bytes.NewReader(pdf), key); err != nil {
			h.logger.Warn("archive report failed", zap.String("key", key), zap.Error(err))
		}
	}

	metrics.ReportsGeneratedTotal.WithLabelValues("generated").Inc()
	h.logger.Info("report generated",
		zap.String("username", session.Username),
		zap.String("name", name),
		zap.Int("bytes", len(pdf)),
	)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
