// Package report renders detection summaries as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	DefaultFilename  = "video.mp4"
	DefaultTimestamp = "00:00"
	ModelLabel       = "YOLOv8"

	labelWidth = 63.5 // 2.5in
	valueWidth = 88.9 // 3.5in
	rowHeight  = 8
	imageW     = 139.7 // 5.5in
	imageH     = 88.9  // 3.5in
)

type rgb struct{ r, g, b int }

var (
	titleColor    = rgb{0xFF, 0x44, 0x44}
	headingColor  = rgb{0x00, 0xCC, 0xFF}
	infoFill      = rgb{0x1A, 0x1A, 0x2E}
	headerFill    = rgb{0x16, 0x21, 0x3E}
	violenceFill  = rgb{0xFF, 0x44, 0x44}
	clearFill     = rgb{0x00, 0xCC, 0x00}
	gridColor     = rgb{0x80, 0x80, 0x80}
	whitesmoke    = rgb{0xF5, 0xF5, 0xF5}
	bodyTextColor = rgb{0x00, 0x00, 0x00}
)

// Input is the summary a report is rendered from.
type Input struct {
	Filename       string
	ViolenceCount  int
	BestConfidence float64
	AvgConfidence  float64
	BestTimestamp  string
	BestFramePath  string
}

type Builder struct {
	logger   *zap.Logger
	now      func() time.Time
	compress bool
}

func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger, now: time.Now, compress: true}
}

// DownloadName is the attachment name for a report generated at t.
func DownloadName(t time.Time) string {
	return fmt.Sprintf("VDS_Report_%s.pdf", t.Format("20060102_150405"))
}

func (b *Builder) Build(in Input) ([]byte, error) {
	if strings.TrimSpace(in.Filename) == "" {
		in.Filename = DefaultFilename
	}
	if in.BestTimestamp == "" {
		in.BestTimestamp = DefaultTimestamp
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCompression(b.compress)
	pdf.SetTopMargin(12.7)
	pdf.SetTitle("Violence Detection Report", true)

	// Core fonts are cp1252; user text arrives as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	in.Filename = tr(in.Filename)
	in.BestTimestamp = tr(in.BestTimestamp)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	setText(pdf, titleColor)
	pdf.CellFormat(0, 12, "VIOLENCE DETECTION REPORT", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	heading(pdf, "Report Information")
	pdf.SetDrawColor(gridColor.r, gridColor.g, gridColor.b)
	info := [][2]string{
		{"Generated Date:", b.now().Format("2006-01-02 15:04:05")},
		{"Video File:", in.Filename},
		{"Model Used:", ModelLabel},
	}
	for _, row := range info {
		setFill(pdf, infoFill)
		setText(pdf, whitesmoke)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(labelWidth, rowHeight, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(valueWidth, rowHeight, row[1], "1", 1, "L", true, 0, "")
	}
	pdf.Ln(10)

	heading(pdf, "Detection Results")
	rows, status := resultRows(in)
	setFill(pdf, headerFill)
	setText(pdf, whitesmoke)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(labelWidth, rowHeight, "Metric", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, "Value", "1", 1, "L", true, 0, "")

	setText(pdf, bodyTextColor)
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		last := i == len(rows)-1
		pdf.CellFormat(labelWidth, rowHeight, row[0], "1", 0, "L", false, 0, "")
		if last {
			setFill(pdf, status)
		}
		pdf.CellFormat(valueWidth, rowHeight, row[1], "1", 1, "L", last, 0, "")
	}

	if in.BestFramePath != "" {
		if err := b.addFrame(pdf, in.BestFramePath); err != nil {
			b.logger.Warn("skipping best frame", zap.String("path", in.BestFramePath), zap.Error(err))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func resultRows(in Input) ([][2]string, rgb) {
	if in.ViolenceCount > 0 {
		return [][2]string{
			{"Violence Events Detected", fmt.Sprintf("%d", in.ViolenceCount)},
			{"Best Confidence Score", percent(in.BestConfidence)},
			{"Average Confidence", percent(in.AvgConfidence)},
			{"Detection Timestamp", in.BestTimestamp},
			{"Status", "VIOLENCE DETECTED"},
		}, violenceFill
	}
	return [][2]string{
		{"Violence Events Detected", "0"},
		{"Status", "NO VIOLENCE DETECTED"},
	}, clearFill
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// addFrame checks the image up front since fpdf errors are sticky and would
// fail the whole document.
func (b *Builder) addFrame(pdf *fpdf.Fpdf, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	_, format, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	var imageType string
	switch format {
	case "jpeg":
		imageType = "JPG"
	case "png":
		imageType = "PNG"
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}

	pdf.AddPage()
	heading(pdf, "Best Detection Frame")
	pdf.Ln(5)
	x, y := pdf.GetXY()
	pdf.ImageOptions(path, x, y, imageW, imageH, false, fpdf.ImageOptions{ImageType: imageType}, 0, "")
	return nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, headingColor)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
