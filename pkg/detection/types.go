// Package detection samples frames from a video, runs an object detector over
// them and aggregates hits of one target class into a summary.
package detection

import (
	"context"
	"errors"
	"image"
)

var (
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrOpenVideo      = errors.New("cannot open video")
)

// Frame is a decoded video frame owned by the caller until Close.
type Frame interface {
	// Clone returns an independent copy that outlives the source frame.
	Clone() Frame
	Close() error
}

// Source yields frames in decode order.
type Source interface {
	// Read returns the next frame, or false once the stream is exhausted.
	Read() (Frame, bool)
	FrameCount() int
	FPS() float64
	Close() error
}

type Opener interface {
	Open(path string) (Source, error)
}

// Box is a single detector hit.
type Box struct {
	Class      int
	Confidence float64
	Rect       image.Rectangle
}

type Model interface {
	Name() string
	Detect(ctx context.Context, frame Frame, threshold float64) ([]Box, error)
}

type FrameWriter interface {
	WriteFrame(path string, frame Frame) error
}

// Event is one target-class hit above the threshold.
type Event struct {
	Frame      int     `json:"frame"`
	Timestamp  string  `json:"timestamp"`
	Confidence float64 `json:"confidence"`
}

// Result is the summary returned to API clients.
type Result struct {
	Success           bool    `json:"success"`
	TotalFrames       int     `json:"total_frames"`
	SampledFrames     int     `json:"sampled_frames"`
	ViolenceCount     int     `json:"violence_count"`
	Detections        []Event `json:"detections"`
	AverageConfidence float64 `json:"average_confidence"`
	ModelUsed         string  `json:"model_used"`
	BestFrame         *string `json:"best_frame"`
	BestConfidence    float64 `json:"best_confidence"`
	BestTimestamp     string  `json:"best_timestamp"`
}
