package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/config"
	"github.com/garyjia/invoice-filler/internal/invoice"
)

func testConfig(t *testing.T, history bool) *config.Config {
	t.Helper()
	cfg, _, err := config.LoadOrDefault("")
	require.NoError(t, err)

	dir := t.TempDir()
	doc := gofpdf.NewCustom(&gofpdf.InitType{OrientationStr: "P", UnitStr: "pt", Size: gofpdf.SizeType{Wd: 595.28, Ht: 841.89}})
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Text(40, 30, "FACTURE")
	cfg.Template.Path = filepath.Join(dir, "template.pdf")
	require.NoError(t, doc.OutputFileAndClose(cfg.Template.Path))

	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Database.Enabled = history
	cfg.Database.Path = filepath.Join(dir, "data", "invoices.db")
	return cfg
}

func TestNew_RecordsGeneratedInvoices(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, true), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.History)

	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1001",
		invoice.FieldClientName:    "Dupont",
	}, []invoice.LineItem{{Label: "Repair", Quantity: "2", UnitPrice: "50"}})

	result, err := a.Generator.Generate(ctx, form)
	require.NoError(t, err)
	assert.FileExists(t, result.OutputPath)

	record, err := a.History.GetByInvoiceNumber(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", record.ClientName)
	assert.Equal(t, result.OutputPath, record.OutputPath)
}

func TestNew_WithoutHistory(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, false), zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, a.DB)
	assert.Nil(t, a.History)
	assert.NoError(t, a.Close())
}

func TestNew_BadMigrationsDir(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Database.MigrationsDir = filepath.Join(t.TempDir(), "missing")

	_, err := New(context.Background(), cfg, zap.NewNop())

	assert.Error(t, err)
}
