package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vds_login_attempts_total",
		Help: "Login attempts, by result",
	}, []string{"result"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vds_uploads_total",
		Help: "Video uploads, by status",
	}, []string{"status"})

	DetectionRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vds_detection_runs_total",
		Help: "Detection runs, by outcome",
	}, []string{"outcome"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vds_frames_sampled_total",
		Help: "Frames passed through the detector",
	})

	ViolenceEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vds_violence_events_total",
		Help: "Target class hits above threshold across all runs",
	})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vds_analysis_duration_seconds",
		Help:    "Duration of a full video analysis",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	ReportsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vds_reports_generated_total",
		Help: "PDF reports, by status",
	}, []string{"status"})
)
