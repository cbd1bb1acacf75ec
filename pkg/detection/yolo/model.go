package yolo

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"violence-detection/pkg/detection"
)

const (
	inputSize = 640
	// maxWH exceeds any box coordinate, so shifting a box by class*maxWH
	// puts each class in its own region of NMS space.
	maxWH = 7680
)

type ModelConfig struct {
	Path         string
	Name         string
	NMSThreshold float64
}

// Model runs a YOLOv8 ONNX export. A gocv.Net is not safe for concurrent use,
// so Detect calls are serialized.
type Model struct {
	mu   sync.Mutex
	net  gocv.Net
	name string
	nms  float32
}

func LoadModel(cfg ModelConfig) (*Model, error) {
	net := gocv.ReadNetFromONNX(cfg.Path)
	if net.Empty() {
		return nil, fmt.Errorf("read onnx model %s", cfg.Path)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "yolov8"
	}
	nms := cfg.NMSThreshold
	if nms <= 0 {
		nms = 0.45
	}
	return &Model{net: net, name: name, nms: float32(nms)}, nil
}

func (m *Model) Name() string { return m.name }

func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}

func (m *Model) Detect(ctx context.Context, frame detection.Frame, threshold float64) ([]detection.Box, error) {
	mf, ok := frame.(*MatFrame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", frame)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blob := gocv.BlobFromImage(mf.Mat, 1.0/255.0, image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.mu.Lock()
	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	m.mu.Unlock()
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	scale := scaleFactors{
		x: float32(mf.Mat.Cols()) / inputSize,
		y: float32(mf.Mat.Rows()) / inputSize,
	}
	cands := decodeOutput(data, dims[1], dims[2], scale, float32(threshold))
	if len(cands) == 0 {
		return nil, nil
	}

	rects := classSeparated(cands)
	scores := make([]float32, len(cands))
	for i, c := range cands {
		scores[i] = c.score
	}
	keep := gocv.NMSBoxes(rects, scores, float32(threshold), m.nms)

	boxes := make([]detection.Box, 0, len(keep))
	for _, i := range keep {
		boxes = append(boxes, detection.Box{
			Class:      cands[i].class,
			Confidence: float64(cands[i].score),
			Rect:       cands[i].rect,
		})
	}
	return boxes, nil
}

// classSeparated returns the candidate rects shifted per class so a single
// NMSBoxes pass only suppresses overlaps within the same class.
func classSeparated(cands []candidate) []image.Rectangle {
	rects := make([]image.Rectangle, len(cands))
	for i, c := range cands {
		off := c.class * maxWH
		rects[i] = c.rect.Add(image.Pt(off, off))
	}
	return rects
}

type scaleFactors struct {
	x, y float32
}

type candidate struct {
	class int
	score float32
	rect  image.Rectangle
}

// decodeOutput reads a YOLOv8 head laid out as [features][anchors]: four box
// coordinates (cx, cy, w, h in input pixels) followed by one score per class.
func decodeOutput(data []float32, features, anchors int, scale scaleFactors, threshold float32) []candidate {
	if features <= 4 || len(data) < features*anchors {
		return nil
	}

	var out []candidate
	for a := 0; a < anchors; a++ {
		bestClass, bestScore := -1, float32(0)
		for c := 4; c < features; c++ {
			if s := data[c*anchors+a]; s > bestScore {
				bestClass, bestScore = c-4, s
			}
		}
		if bestClass < 0 || bestScore < threshold {
			continue
		}

		cx := data[0*anchors+a] * scale.x
		cy := data[1*anchors+a] * scale.y
		w := data[2*anchors+a] * scale.x
		h := data[3*anchors+a] * scale.y
		left := int(cx - w/2)
		top := int(cy - h/2)

		out = append(out, candidate{
			class: bestClass,
			score: bestScore,
			rect:  image.Rect(left, top, left+int(w), top+int(h)),
		})
	}
	return out
}
