package overlay

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/invoice-filler/internal/invoice"
)

// runeMeasurer gives every character the same advance
type runeMeasurer struct {
	perRune float64
}

func (m runeMeasurer) StringWidth(text string, _ Font, _ float64) float64 {
	return float64(len([]rune(text))) * m.perRune
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(invoice.DefaultRegistry(), runeMeasurer{perRune: 5}, "", zap.NewNop())
}

func opsByField(ops []DrawOp) map[string][]DrawOp {
	out := make(map[string][]DrawOp)
	for _, op := range ops {
		out[op.Field] = append(out[op.Field], op)
	}
	return out
}

func TestRenderer_MinimalInvoice(t *testing.T) {
	r := newTestRenderer(t)
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1001",
	}, nil)

	ops := r.Render(form)

	require.Len(t, ops, 1)
	assert.Equal(t, DrawOp{
		Field:  invoice.FieldInvoiceNumber,
		Text:   "1001",
		X:      130,
		Y:      71.5,
		Anchor: AnchorLeft,
		Font:   Font{Family: DefaultFontFamily},
		Size:   invoice.FontSizeHeader,
		Color:  White,
	}, ops[0])
}

func TestRenderer_FieldStyles(t *testing.T) {
	r := newTestRenderer(t)
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1001",
		invoice.FieldDate:          "10/09/2025",
		invoice.FieldClientName:    " Dupont ",
		invoice.FieldTotalExclTax:  "155",
		invoice.FieldAmountConfirm: "157",
	}, []invoice.LineItem{
		{Label: "Repair", Quantity: "2", UnitPrice: "50"},
	})

	byField := opsByField(r.Render(form))

	date := byField[invoice.FieldDate][0]
	assert.Equal(t, White, date.Color)

	client := byField[invoice.FieldClientName][0]
	assert.Equal(t, "Dupont", client.Text)
	assert.Equal(t, Black, client.Color)
	assert.Equal(t, invoice.FontSizeHeader, client.Size)

	total := byField[invoice.FieldTotalExclTax][0]
	assert.Equal(t, "155.00 €", total.Text)
	assert.Equal(t, AnchorRight, total.Anchor)
	assert.Equal(t, 545.0, total.X)
	assert.Equal(t, invoice.FontSizeTable, total.Size)

	line := byField[invoice.LineTotalField(1)][0]
	assert.Equal(t, "100.00 €", line.Text)
	assert.Equal(t, 545.0, line.X)
	assert.Equal(t, 352.0, line.Y)

	price := byField[invoice.UnitPriceField(1)][0]
	assert.Equal(t, "50.00 €", price.Text)
	assert.Equal(t, 440.0, price.X)

	qty := byField[invoice.QuantityField(1)][0]
	assert.Equal(t, "2", qty.Text)
	assert.Equal(t, AnchorLeft, qty.Anchor)

	confirm := byField[invoice.FieldAmountConfirm][0]
	assert.Equal(t, "157,00 €", confirm.Text)
	assert.True(t, confirm.Font.Bold)
	assert.Equal(t, "B", confirm.Font.Style())
}

func TestRenderer_RegistryOrder(t *testing.T) {
	r := newTestRenderer(t)
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldAmountConfirm: "10",
		invoice.FieldClientName:    "Dupont",
		invoice.FieldInvoiceNumber: "1",
	}, nil)

	ops := r.Render(form)

	require.Len(t, ops, 3)
	assert.Equal(t, invoice.FieldInvoiceNumber, ops[0].Field)
	assert.Equal(t, invoice.FieldClientName, ops[1].Field)
	assert.Equal(t, invoice.FieldAmountConfirm, ops[2].Field)
}

func TestRenderer_Deterministic(t *testing.T) {
	r := newTestRenderer(t)
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "21564321",
		invoice.FieldClientName:    "Martin",
		invoice.FieldClientAddress: "12 rue des Lilas",
		invoice.FieldTotalExclTax:  "155",
		invoice.FieldVAT20:         "31",
	}, []invoice.LineItem{
		{Label: "Remplacement complet de la toiture et pose de gouttiere zinc", Quantity: "1", UnitPrice: "155"},
	})

	first := r.Render(form)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, r.Render(form)); diff != "" {
			t.Fatalf("render %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestRenderer_SkipsEmptyAndZero(t *testing.T) {
	r := newTestRenderer(t)
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1",
		invoice.FieldClientName:    "   ",
		invoice.FieldDeposit:       "0",
		invoice.FieldAmountConfirm: "0",
	}, nil)

	ops := r.Render(form)

	require.Len(t, ops, 1)
	assert.Equal(t, invoice.FieldInvoiceNumber, ops[0].Field)
}

func TestRenderer_UnknownFieldIsLoggedAndSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRenderer(invoice.DefaultRegistry(), runeMeasurer{perRune: 5}, "", zap.New(core))
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1",
		"remise":                   "10",
	}, nil)

	ops := r.Render(form)

	require.Len(t, ops, 1)
	entries := logs.FilterField(zap.String("field", "remise")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestRenderer_UnparseableAmountKeptAsEntered(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRenderer(invoice.DefaultRegistry(), runeMeasurer{perRune: 5}, "", zap.New(core))
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1",
		invoice.FieldDeposit:       " douze ",
	}, nil)

	byField := opsByField(r.Render(form))

	deposit := byField[invoice.FieldDeposit]
	require.Len(t, deposit, 1)
	assert.Equal(t, "douze", deposit[0].Text)
	assert.Equal(t, AnchorRight, deposit[0].Anchor)
	assert.Equal(t, 1, logs.FilterField(zap.String("field", invoice.FieldDeposit)).Len())
}

func TestRenderer_WrapsLongLabels(t *testing.T) {
	r := newTestRenderer(t)
	label := "Remplacement complet de la toiture et pose de gouttiere zinc"
	form := invoice.NewInvoiceForm(map[string]string{invoice.FieldInvoiceNumber: "1"},
		[]invoice.LineItem{{}, {Label: label}})

	lines := opsByField(r.Render(form))[invoice.LabelField(2)]

	require.GreaterOrEqual(t, len(lines), 2)
	for i, op := range lines {
		assert.Equal(t, 60.0, op.X)
		assert.Equal(t, 377.0+float64(i)*invoice.WrapLineSpacing, op.Y)
		assert.LessOrEqual(t, runeMeasurer{perRune: 5}.StringWidth(op.Text, op.Font, op.Size), invoice.WrapMaxWidth)
	}
}

func TestRenderer_ShortLabelNotWrapped(t *testing.T) {
	r := newTestRenderer(t)
	form := invoice.NewInvoiceForm(map[string]string{invoice.FieldInvoiceNumber: "1"},
		[]invoice.LineItem{{Label: "Repair"}})

	lines := opsByField(r.Render(form))[invoice.LabelField(1)]

	require.Len(t, lines, 1)
	assert.Equal(t, "Repair", lines[0].Text)
	assert.Equal(t, invoice.FontSizeTable, lines[0].Size)
}

func TestDrawOp_String(t *testing.T) {
	op := DrawOp{Field: "f", Text: "x", X: 1, Y: 2, Anchor: AnchorRight, Font: Font{Family: "Helvetica", Bold: true}, Size: 10, Color: White}
	assert.Equal(t, `f "x" @(1.00,2.00) right Helvetica/B 10.0 #ffffff`, op.String())
}
