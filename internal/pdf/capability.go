// Package pdf is the narrow PDF capability used by the invoice generator:
// read the template page box, draw text on a blank page of the same size and
// composite that page over the template.
package pdf

import (
	"io"

	"github.com/garyjia/invoice-filler/internal/overlay"
)

// PageBox is the size of a page, in points
type PageBox struct {
	Width  float64
	Height float64
}

// Canvas is a blank single page that text operations are drawn onto
type Canvas interface {
	Draw(op overlay.DrawOp) error
	// Bytes serializes the page as a standalone PDF document
	Bytes() ([]byte, error)
}

// Engine is implemented by the PDF backend
type Engine interface {
	// ReadPageBox returns the media box of the first page of the PDF at path
	ReadPageBox(path string) (PageBox, error)
	NewCanvas(box PageBox) (Canvas, error)
	// Composite draws the first page of overlay over the first page of the template
	// and writes the resulting document to w
	Composite(templatePath string, overlay []byte, w io.Writer) error
}
