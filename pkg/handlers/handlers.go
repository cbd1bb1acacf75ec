package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"violence-detection/pkg/alerts"
	"violence-detection/pkg/detection"
	"violence-detection/pkg/models"
	"violence-detection/pkg/report"
)

var tracer trace.Tracer = otel.Tracer("handlers")

type VideoAnalyzer interface {
	Analyze(ctx context.Context, path string, threshold float64) (*detection.Result, error)
}

type ReportBuilder interface {
	Build(in report.Input) ([]byte, error)
}

type Archiver interface {
	UploadFile(ctx context.Context, body io.Reader, key string) (string, error)
	UploadPath(ctx context.Context, path, key string) (string, error)
}

type Alerter interface {
	Publish(alert alerts.Alert) error
}

// Options configures a Handler. Archive and Alerts are optional.
type Options struct {
	Analyzer         VideoAnalyzer
	Reports          ReportBuilder
	Archive          Archiver
	Alerts           Alerter
	Logger           *zap.Logger
	UploadDir        string
	DetectionDir     string
	MaxUploadBytes   int64
	DefaultThreshold float64
}

type Handler struct {
	analyzer         VideoAnalyzer
	reports          ReportBuilder
	archive          Archiver
	alerts           Alerter
	logger           *zap.Logger
	uploadDir        string
	detectionDir     string
	maxUploadBytes   int64
	defaultThreshold float64
	now              func() time.Time
}

// New builds a Handler. Upload and detection dirs are made absolute so stored
// video paths have a single spelling.
func New(opts Options) *Handler {
	uploadDir, detectionDir := opts.UploadDir, opts.DetectionDir
	if abs, err := filepath.Abs(uploadDir); err == nil {
		uploadDir = abs
	}
	if abs, err := filepath.Abs(detectionDir); err == nil {
		detectionDir = abs
	}
	return &Handler{
		analyzer:         opts.Analyzer,
		reports:          opts.Reports,
		archive:          opts.Archive,
		alerts:           opts.Alerts,
		logger:           opts.Logger,
		uploadDir:        uploadDir,
		detectionDir:     detectionDir,
		maxUploadBytes:   opts.MaxUploadBytes,
		defaultThreshold: opts.DefaultThreshold,
		now:              time.Now,
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, models.ErrorResponse{Success: false, Error: msg})
}

// RequestLogger logs one line per request once it completes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Recovery turns panics into the generic JSON server error.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Server error"})
	})
}
