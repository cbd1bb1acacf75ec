package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"violence-detection/cmd/config"
	"violence-detection/pkg/alerts"
	"violence-detection/pkg/database"
	"violence-detection/pkg/detection"
	"violence-detection/pkg/detection/yolo"
	"violence-detection/pkg/handlers"
	"violence-detection/pkg/logger"
	"violence-detection/pkg/metrics"
	"violence-detection/pkg/report"
	"violence-detection/pkg/s3"
	"violence-detection/pkg/tracing"
)

func main() {
	config.Load()

	log, err := logger.New(config.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting violence-detection")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (optional)
	if config.TracingEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, config.TracingEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	// Database
	fatalOnErr(database.Init(config.DBPath), "open database")
	defer database.DB.Close()
	fatalOnErr(database.Seed(config.Users), "seed users")

	for _, dir := range []string{config.UploadDir, config.DetectionDir} {
		fatalOnErr(os.MkdirAll(dir, 0o755), "create "+dir)
	}

	// Detector
	var model detection.Model
	net, err := yolo.LoadModel(yolo.ModelConfig{
		Path:         config.ModelPath,
		Name:         config.ModelName,
		NMSThreshold: config.NMSThreshold,
	})
	if err != nil {
		log.Warn("model not loaded, detection disabled", zap.String("path", config.ModelPath), zap.Error(err))
	} else {
		defer net.Close()
		model = net
		log.Info("model loaded", zap.String("path", config.ModelPath))
	}
	analyzer := detection.NewAnalyzer(yolo.Opener{}, model, yolo.JPEGWriter{}, detection.Config{
		Stride:      config.SampleStride,
		TargetClass: config.TargetClass,
		OutputDir:   config.DetectionDir,
	}, log)

	opts := handlers.Options{
		Analyzer:         analyzer,
		Reports:          report.NewBuilder(log),
		Logger:           log,
		UploadDir:        config.UploadDir,
		DetectionDir:     config.DetectionDir,
		MaxUploadBytes:   config.MaxUploadMB << 20,
		DefaultThreshold: config.DefaultThresh,
	}

	// S3 archive (optional)
	if config.S3Bucket != "" {
		archiver, err := s3.NewArchiver(config.AWSRegion, config.S3Bucket)
		fatalOnErr(err, "create s3 archiver")
		opts.Archive = archiver
	}

	// MQTT alerts (optional)
	if config.MQTTBroker != "" {
		emitter, err := alerts.Connect(alerts.MQTTConfig{
			Broker:   config.MQTTBroker,
			Topic:    config.MQTTTopic,
			ClientID: config.MQTTClientID,
		}, log)
		if err != nil {
			log.Warn("mqtt connect failed, alerts disabled", zap.Error(err))
		} else {
			defer emitter.Close()
			opts.Alerts = emitter
		}
	}

	metricsSrv := metrics.StartMetricsServer(ctx, config.MetricsPort, log)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + config.Port,
		Handler: handlers.New(opts).Router(config.StaticDir),
	}

	go func() {
		log.Info("http server starting", zap.String("port", config.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			cancel()
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	metricsSrv.Shutdown(shutdownCtx)
	log.Info("violence-detection stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
