// Package yolo implements detection interfaces on top of OpenCV: video
// decoding through VideoCapture and YOLOv8 inference through the DNN module.
package yolo

import (
	"fmt"

	"gocv.io/x/gocv"

	"violence-detection/pkg/detection"
)

// MatFrame wraps a gocv.Mat. The Mat must be closed to release native memory.
type MatFrame struct {
	Mat gocv.Mat
}

func (f *MatFrame) Clone() detection.Frame {
	return &MatFrame{Mat: f.Mat.Clone()}
}

func (f *MatFrame) Close() error {
	return f.Mat.Close()
}

type Opener struct{}

func (Opener) Open(path string) (detection.Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("capture %s is not opened", path)
	}
	return &Capture{capture: capture}, nil
}

type Capture struct {
	capture *gocv.VideoCapture
}

func (c *Capture) Read() (detection.Frame, bool) {
	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, false
	}
	return &MatFrame{Mat: mat}, true
}

func (c *Capture) FrameCount() int {
	return int(c.capture.Get(gocv.VideoCaptureFrameCount))
}

func (c *Capture) FPS() float64 {
	return c.capture.Get(gocv.VideoCaptureFPS)
}

func (c *Capture) Close() error {
	return c.capture.Close()
}

// JPEGWriter stores frames with IMWrite; the format follows the extension.
type JPEGWriter struct{}

func (JPEGWriter) WriteFrame(path string, frame detection.Frame) error {
	mf, ok := frame.(*MatFrame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", frame)
	}
	if !gocv.IMWrite(path, mf.Mat) {
		return fmt.Errorf("imwrite %s failed", path)
	}
	return nil
}
