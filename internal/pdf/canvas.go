package pdf

import (
	"bytes"
	"sync"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/garyjia/invoice-filler/internal/overlay"
)

// overlayEpoch is stamped as the creation date so identical forms give identical bytes
var overlayEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// newPage returns a gofpdf document measuring in points with one blank page of the given size
func newPage(box PageBox) *gofpdf.Fpdf {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: box.Width, Ht: box.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreationDate(overlayEpoch)
	doc.SetCatalogSort(true)
	doc.AddPage()
	return doc
}

// fpdfCanvas draws text with the PDF core fonts.
// Strings are translated to cp1252, which carries the euro sign.
type fpdfCanvas struct {
	doc       *gofpdf.Fpdf
	translate func(string) string
	metrics   *Metrics
}

func newCanvas(box PageBox, metrics *Metrics) *fpdfCanvas {
	doc := newPage(box)
	return &fpdfCanvas{
		doc:       doc,
		translate: doc.UnicodeTranslatorFromDescriptor(""),
		metrics:   metrics,
	}
}

func (c *fpdfCanvas) Draw(op overlay.DrawOp) error {
	c.doc.SetFont(op.Font.Family, op.Font.Style(), op.Size)
	c.doc.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))

	x := op.X
	if op.Anchor == overlay.AnchorRight {
		x -= c.metrics.StringWidth(op.Text, op.Font, op.Size)
	}
	c.doc.Text(x, op.Y, c.translate(op.Text))

	if err := c.doc.Error(); err != nil {
		return errors.Wrapf(err, "draw %s", op.Field)
	}
	return nil
}

func (c *fpdfCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "serialize overlay page")
	}
	return buf.Bytes(), nil
}

// Metrics measures strings with the core font tables of gofpdf.
// It is safe for concurrent use.
type Metrics struct {
	mu        sync.Mutex
	doc       *gofpdf.Fpdf
	translate func(string) string
}

// NewMetrics creates a new Metrics
func NewMetrics() *Metrics {
	doc := gofpdf.New("P", "pt", "A4", "")
	return &Metrics{
		doc:       doc,
		translate: doc.UnicodeTranslatorFromDescriptor(""),
	}
}

// StringWidth implements overlay.TextMeasurer
func (m *Metrics) StringWidth(text string, font overlay.Font, size float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc.SetFont(font.Family, font.Style(), size)
	return m.doc.GetStringWidth(m.translate(text))
}
