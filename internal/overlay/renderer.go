// Package overlay turns an invoice form into the ordered text drawing operations
// of the overlay page.
package overlay

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/invoice"
)

// MonetaryOffset is the distance between a monetary field's anchor and the right edge of its value
const MonetaryOffset = 80.0

// DefaultFontFamily is a PDF core font, available without embedding
const DefaultFontFamily = "Helvetica"

// Anchor tells which end of the text sits on the op's X coordinate
type Anchor int

const (
	AnchorLeft Anchor = iota
	AnchorRight
)

func (a Anchor) String() string {
	if a == AnchorRight {
		return "right"
	}
	return "left"
}

// Color is an RGB text color
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// Font identifies a typeface variant
type Font struct {
	Family string
	Bold   bool
}

// Style returns the gofpdf style string of the font
func (f Font) Style() string {
	if f.Bold {
		return "B"
	}
	return ""
}

// DrawOp is one text string to draw on the overlay page.
// Y is the baseline, measured from the top edge of the page.
type DrawOp struct {
	Field  string
	Text   string
	X      float64
	Y      float64
	Anchor Anchor
	Font   Font
	Size   float64
	Color  Color
}

func (op DrawOp) String() string {
	return fmt.Sprintf("%s %q @(%.2f,%.2f) %s %s/%s %.1f #%02x%02x%02x",
		op.Field, op.Text, op.X, op.Y, op.Anchor, op.Font.Family, op.Font.Style(), op.Size,
		op.Color.R, op.Color.G, op.Color.B)
}

// TextMeasurer returns the advance width of text in points
type TextMeasurer interface {
	StringWidth(text string, font Font, size float64) float64
}

// Renderer walks the field registry and produces the draw operations of a form
type Renderer struct {
	registry *invoice.Registry
	measurer TextMeasurer
	family   string
	logger   *zap.Logger
}

// NewRenderer creates a new Renderer. An empty family selects DefaultFontFamily.
func NewRenderer(registry *invoice.Registry, measurer TextMeasurer, family string, logger *zap.Logger) *Renderer {
	if family == "" {
		family = DefaultFontFamily
	}
	return &Renderer{
		registry: registry,
		measurer: measurer,
		family:   family,
		logger:   logger,
	}
}

// Render returns the draw operations of every non-empty registered field, in registry order.
// Fields missing from the registry are skipped, and values that fail numeric parsing are
// drawn as entered.
func (r *Renderer) Render(form invoice.InvoiceForm) []DrawOp {
	values := form.Values()

	for _, id := range form.FieldIDs() {
		if _, ok := r.registry.Lookup(id); !ok {
			r.logger.Debug("Skipping field without template position", zap.String("field", id))
		}
	}

	var ops []DrawOp
	for _, field := range r.registry.Fields() {
		raw := values[field.ID]
		if raw == "" {
			continue
		}

		text, err := invoice.Format(field, raw)
		if err != nil {
			if !errors.Is(err, invoice.ErrNumericParse) {
				r.logger.Error("Unexpected formatting error", zap.String("field", field.ID), zap.Error(err))
			} else {
				r.logger.Warn("Keeping unparseable value as entered",
					zap.String("field", field.ID),
					zap.String("value", raw))
			}
		}
		if text == "" {
			continue
		}

		ops = append(ops, r.fieldOps(field, text)...)
	}
	return ops
}

func (r *Renderer) fieldOps(field invoice.Field, text string) []DrawOp {
	op := DrawOp{
		Field:  field.ID,
		Text:   text,
		X:      field.X,
		Y:      field.Y,
		Anchor: AnchorLeft,
		Font:   Font{Family: r.family},
		Size:   field.FontSize,
		Color:  Black,
	}
	if field.Inverse {
		op.Color = White
	}

	switch field.Kind {
	case invoice.KindCurrency:
		op.X = field.X + MonetaryOffset
		op.Anchor = AnchorRight
	case invoice.KindBoldConfirmation:
		op.Font.Bold = true
	case invoice.KindWrappedText:
		if invoice.NeedsWrap(text) {
			return r.wrappedOps(op)
		}
	}
	return []DrawOp{op}
}

func (r *Renderer) wrappedOps(base DrawOp) []DrawOp {
	width := func(s string) float64 {
		return r.measurer.StringWidth(s, base.Font, base.Size)
	}
	lines := invoice.WrapText(base.Text, invoice.WrapMaxWidth, width)

	ops := make([]DrawOp, 0, len(lines))
	for i, line := range lines {
		op := base
		op.Text = line
		op.Y = base.Y + float64(i)*invoice.WrapLineSpacing
		ops = append(ops, op)
	}
	return ops
}
