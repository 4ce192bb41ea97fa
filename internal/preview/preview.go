// Package preview rasterizes generated invoices so they can be checked without a PDF viewer
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// DefaultDPI is the resolution of preview images
const DefaultDPI = 110.0

// Renderer converts PDF pages to PNG images using mupdf
type Renderer struct {
	dpi    float64
	logger *zap.Logger
}

// NewRenderer creates a new Renderer. A non positive dpi selects DefaultDPI.
func NewRenderer(dpi float64, logger *zap.Logger) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{
		dpi:    dpi,
		logger: logger,
	}
}

// PageCount returns the number of pages of a PDF
func (r *Renderer) PageCount(pdfPath string) (int, error) {
	doc, err := r.open(pdfPath)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// RenderPage rasterizes a 0-based page of pdfPath
func (r *Renderer) RenderPage(pdfPath string, page int) (image.Image, error) {
	doc, err := r.open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d", page, doc.NumPage())
	}

	img, err := doc.ImageDPI(page, r.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize page %d: %w", page, err)
	}

	r.logger.Debug("Rendered preview page",
		zap.String("path", pdfPath),
		zap.Int("page", page),
		zap.Float64("dpi", r.dpi),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return img, nil
}

// WritePNG encodes the first page of pdfPath as PNG into w
func (r *Renderer) WritePNG(pdfPath string, w io.Writer) error {
	img, err := r.RenderPage(pdfPath, 0)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// RenderPNG writes the first page of pdfPath to outPath. An empty outPath
// writes next to the PDF with a .png extension. It returns the path written.
func (r *Renderer) RenderPNG(pdfPath, outPath string) (string, error) {
	if outPath == "" {
		outPath = strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".png"
	}

	var buf bytes.Buffer
	if err := r.WritePNG(pdfPath, &buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write preview: %w", err)
	}

	r.logger.Info("Preview written", zap.String("pdf", pdfPath), zap.String("png", outPath))
	return outPath, nil
}

func (r *Renderer) open(pdfPath string) (*fitz.Document, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("PDF file not found: %s", pdfPath)
	}
	if ext := strings.ToLower(filepath.Ext(pdfPath)); ext != ".pdf" {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return doc, nil
}
