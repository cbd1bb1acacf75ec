package detection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultStride    = 5
	DefaultMaxEvents = 5
	zeroTimestamp    = "00:00"
	progressEvery    = 50
)

type Config struct {
	Stride      int
	TargetClass int
	// MaxEvents caps the events listed in a Result; the count and the
	// average still cover every event.
	MaxEvents int
	OutputDir string
}

type Analyzer struct {
	opener Opener
	model  Model
	writer FrameWriter
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyzer wires a detector. model may be nil, in which case every
// analysis fails with ErrModelNotLoaded.
func NewAnalyzer(opener Opener, model Model, writer FrameWriter, cfg Config, logger *zap.Logger) *Analyzer {
	if cfg.Stride <= 0 {
		cfg.Stride = DefaultStride
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultMaxEvents
	}
	return &Analyzer{
		opener: opener,
		model:  model,
		writer: writer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Ready reports whether a model is loaded.
func (a *Analyzer) Ready() bool {
	return a != nil && a.model != nil
}

func (a *Analyzer) Analyze(ctx context.Context, path string, threshold float64) (*Result, error) {
	if !a.Ready() {
		return nil, ErrModelNotLoaded
	}

	src, err := a.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenVideo, err)
	}
	defer src.Close()

	total := src.FrameCount()
	fps := src.FPS()
	log := a.logger.With(zap.String("path", path), zap.Float64("threshold", threshold))
	log.Info("detection started", zap.Int("total_frames", total), zap.Float64("fps", fps))

	var (
		frameNo   int
		sampled   int
		events    []Event
		sum       float64
		best      Frame
		bestConf  float64
		bestStamp = zeroTimestamp
	)
	defer func() {
		if best != nil {
			best.Close()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, ok := src.Read()
		if !ok {
			break
		}
		frameNo++

		if frameNo%a.cfg.Stride != 0 {
			frame.Close()
			continue
		}
		sampled++

		if frameNo%progressEvery == 0 {
			log.Debug("processing frame", zap.Int("frame", frameNo), zap.Int("total_frames", total))
		}

		boxes, err := a.model.Detect(ctx, frame, threshold)
		if err != nil {
			log.Warn("inference failed, skipping frame", zap.Int("frame", frameNo), zap.Error(err))
			frame.Close()
			continue
		}

		for _, box := range boxes {
			if box.Class != a.cfg.TargetClass || box.Confidence < threshold {
				continue
			}
			stamp := FormatTimestamp(frameNo, fps)
			if box.Confidence > bestConf {
				if best != nil {
					best.Close()
				}
				best = frame.Clone()
				bestConf = box.Confidence
				bestStamp = stamp
				log.Debug("new best frame", zap.String("timestamp", stamp), zap.Float64("confidence", box.Confidence))
			}
			events = append(events, Event{Frame: frameNo, Timestamp: stamp, Confidence: box.Confidence})
			sum += box.Confidence
		}
		frame.Close()
	}

	result := &Result{
		Success:        true,
		TotalFrames:    total,
		SampledFrames:  sampled,
		ViolenceCount:  len(events),
		Detections:     events[:min(len(events), a.cfg.MaxEvents)],
		ModelUsed:      a.model.Name(),
		BestConfidence: bestConf,
		BestTimestamp:  bestStamp,
	}
	if result.Detections == nil {
		result.Detections = []Event{}
	}
	if len(events) > 0 {
		result.AverageConfidence = sum / float64(len(events))
	}

	if best != nil && len(events) > 0 {
		if p, err := a.saveBest(best); err != nil {
			log.Error("failed to save best frame", zap.Error(err))
		} else {
			result.BestFrame = &p
		}
	}

	log.Info("detection finished",
		zap.Int("violence_count", result.ViolenceCount),
		zap.Float64("average_confidence", result.AverageConfidence),
		zap.Int("sampled_frames", sampled),
	)
	return result, nil
}

func (a *Analyzer) saveBest(frame Frame) (string, error) {
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create detection dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_best.jpg", a.now().Format("20060102_150405"), uuid.New().String()[:8])
	p := filepath.Join(a.cfg.OutputDir, name)
	if err := a.writer.WriteFrame(p, frame); err != nil {
		return "", err
	}
	return p, nil
}

// FormatTimestamp renders the position of frame as MM:SS. Minutes are not
// wrapped into hours.
func FormatTimestamp(frame int, fps float64) string {
	var seconds float64
	if fps > 0 {
		seconds = float64(frame) / fps
	}
	whole := int(seconds)
	return fmt.Sprintf("%02d:%02d", whole/60, whole%60)
}
