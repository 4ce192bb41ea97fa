package pdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/overlay"
)

var a4 = PageBox{Width: 595.28, Height: 841.89}

// writeTemplate generates a one page background document
func writeTemplate(t *testing.T, box PageBox) string {
	t.Helper()

	doc := newPage(box)
	doc.SetFillColor(30, 30, 30)
	doc.Rect(0, 50, box.Width, 60, "F")
	doc.SetFont("Helvetica", "B", 14)
	doc.Text(40, 40, "FACTURE")

	path := filepath.Join(t.TempDir(), "template.pdf")
	require.NoError(t, doc.OutputFileAndClose(path))
	return path
}

func sampleOps() []overlay.DrawOp {
	font := overlay.Font{Family: overlay.DefaultFontFamily}
	return []overlay.DrawOp{
		{Field: "numero_de_facture", Text: "1001", X: 130, Y: 71.5, Font: font, Size: 12, Color: overlay.White},
		{Field: "total_net_1", Text: "100.00 €", X: 545, Y: 352, Anchor: overlay.AnchorRight, Font: font, Size: 10, Color: overlay.Black},
		{Field: "en_votre_aimable_reglement_de_la_somme_de", Text: "100,00 €", X: 295, Y: 639,
			Font: overlay.Font{Family: overlay.DefaultFontFamily, Bold: true}, Size: 10, Color: overlay.Black},
	}
}

func TestBackend_ReadPageBox(t *testing.T) {
	backend := NewBackend(nil, t.TempDir(), zap.NewNop())

	t.Run("a4 template", func(t *testing.T) {
		box, err := backend.ReadPageBox(writeTemplate(t, a4))
		require.NoError(t, err)
		assert.InDelta(t, a4.Width, box.Width, 0.01)
		assert.InDelta(t, a4.Height, box.Height, 0.01)
	})

	t.Run("custom size", func(t *testing.T) {
		box, err := backend.ReadPageBox(writeTemplate(t, PageBox{Width: 400, Height: 300}))
		require.NoError(t, err)
		assert.InDelta(t, 400, box.Width, 0.01)
		assert.InDelta(t, 300, box.Height, 0.01)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.pdf")
		_, err := backend.ReadPageBox(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTemplateUnavailable)
		assert.ErrorIs(t, err, os.ErrNotExist)

		var te *TemplateError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, path, te.Path)
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.pdf")
		require.NoError(t, os.WriteFile(path, []byte("definitely not a pdf"), 0644))
		_, err := backend.ReadPageBox(path)
		assert.ErrorIs(t, err, ErrTemplateUnavailable)
	})
}

func TestBackend_NewCanvas(t *testing.T) {
	backend := NewBackend(nil, "", zap.NewNop())

	_, err := backend.NewCanvas(PageBox{})
	assert.ErrorIs(t, err, ErrOverlay)

	canvas, err := backend.NewCanvas(a4)
	require.NoError(t, err)
	for _, op := range sampleOps() {
		require.NoError(t, canvas.Draw(op))
	}
	data, err := canvas.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestCanvas_Deterministic(t *testing.T) {
	metrics := NewMetrics()
	render := func() []byte {
		c := newCanvas(a4, metrics)
		for _, op := range sampleOps() {
			require.NoError(t, c.Draw(op))
		}
		data, err := c.Bytes()
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, render(), render())
}

func TestMetrics_StringWidth(t *testing.T) {
	metrics := NewMetrics()
	regular := overlay.Font{Family: overlay.DefaultFontFamily}
	bold := overlay.Font{Family: overlay.DefaultFontFamily, Bold: true}

	w10 := metrics.StringWidth("100.00 €", regular, 10)
	assert.Greater(t, w10, 0.0)
	assert.InDelta(t, 2*w10, metrics.StringWidth("100.00 €", regular, 20), 1e-6)
	assert.Greater(t, metrics.StringWidth("Repair", bold, 10), metrics.StringWidth("Repair", regular, 10))
	// digits have the same advance in both weights
	assert.InDelta(t, metrics.StringWidth("100,00 €", regular, 10), metrics.StringWidth("100,00 €", bold, 10), 1e-6)
	assert.Greater(t, metrics.StringWidth("€", regular, 10), 0.0)
	assert.Equal(t, 0.0, metrics.StringWidth("", regular, 10))
}

func TestBackend_Composite(t *testing.T) {
	backend := NewBackend(nil, t.TempDir(), zap.NewNop())
	templatePath := writeTemplate(t, a4)

	box, err := backend.ReadPageBox(templatePath)
	require.NoError(t, err)
	canvas, err := backend.NewCanvas(box)
	require.NoError(t, err)
	for _, op := range sampleOps() {
		require.NoError(t, canvas.Draw(op))
	}
	page, err := canvas.Bytes()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, backend.Composite(templatePath, page, &out))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	merged := filepath.Join(t.TempDir(), "INVOICE_1001.pdf")
	require.NoError(t, os.WriteFile(merged, out.Bytes(), 0644))
	mergedBox, err := backend.ReadPageBox(merged)
	require.NoError(t, err)
	assert.InDelta(t, box.Width, mergedBox.Width, 0.01)
	assert.InDelta(t, box.Height, mergedBox.Height, 0.01)

	t.Run("missing template", func(t *testing.T) {
		var sink bytes.Buffer
		err := backend.Composite(filepath.Join(t.TempDir(), "absent.pdf"), page, &sink)
		assert.ErrorIs(t, err, ErrTemplateUnavailable)
		assert.Zero(t, sink.Len())
	})

	t.Run("broken overlay", func(t *testing.T) {
		var sink bytes.Buffer
		err := backend.Composite(templatePath, []byte("nope"), &sink)
		assert.ErrorIs(t, err, ErrComposite)
	})
}
