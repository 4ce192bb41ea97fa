package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/invoice-filler/internal/invoice"
)

func TestFormFromValues(t *testing.T) {
	form := FormFromValues(map[string]string{
		invoice.FieldInvoiceNumber: "1001",
		"libelle_2":                "Pose",
		"quantite_2":               "3",
		"prix_unitaire_2":          "12",
		"total_net_2":              "999",
		"libelle_3":                "",
		"remise":                   "10",
		invoice.FieldClientName:    "Dupont\x00",
	})

	assert.Equal(t, "1001", form.InvoiceNumber())
	assert.Equal(t, "Dupont", form.Field(invoice.FieldClientName))
	assert.Equal(t, "10", form.Field("remise"), "unknown ids are carried and skipped at render time")
	require.Len(t, form.Items(), 2)
	assert.True(t, form.Items()[0].IsEmpty())
	assert.Equal(t, invoice.LineItem{Label: "Pose", Quantity: "3", UnitPrice: "12"}, form.Items()[1])
	assert.Equal(t, "36.00 €", form.Values()["total_net_2"])
}

func TestFormFromValues_KeepsRowsPastCapacity(t *testing.T) {
	form := FormFromValues(map[string]string{
		invoice.FieldInvoiceNumber: "1",
		"libelle_5":                "cinquième",
	})

	assert.Len(t, form.Items(), 5)
	assert.ErrorIs(t, form.Validate(invoice.DefaultRegistry()), invoice.ErrItemLimitExceeded)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("nested document", func(t *testing.T) {
		doc := `{
			"fields": {"numero_de_facture": "1001", "tva_20_pourcent": 31},
			"items": [{"label": "Repair", "quantity": 2, "unit_price": "50"}]
		}`

		form, err := DecodeJSON(strings.NewReader(doc))

		require.NoError(t, err)
		assert.Equal(t, "1001", form.InvoiceNumber())
		assert.Equal(t, "31", form.Field(invoice.FieldVAT20))
		assert.Equal(t, []invoice.LineItem{{Label: "Repair", Quantity: "2", UnitPrice: "50"}}, form.Items())
	})

	t.Run("flat document", func(t *testing.T) {
		doc := `{"numero_de_facture": 1001, "nom": "Dupont", "libelle_1": "Repair", "quantite_1": "2", "document": null}`

		form, err := DecodeJSON(strings.NewReader(doc))

		require.NoError(t, err)
		assert.Equal(t, "1001", form.InvoiceNumber())
		assert.Equal(t, "Dupont", form.Field(invoice.FieldClientName))
		assert.NotContains(t, form.FieldIDs(), invoice.FieldDocument)
		require.Len(t, form.Items(), 1)
		assert.Equal(t, "Repair", form.Items()[0].Label)
	})

	t.Run("items win over row ids", func(t *testing.T) {
		doc := `{"libelle_1": "old", "items": [{"label": "new"}]}`
		form, err := DecodeJSON(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, "new", form.Items()[0].Label)
	})

	t.Run("rejects nested objects", func(t *testing.T) {
		_, err := DecodeJSON(strings.NewReader(`{"nom": {"first": "x"}}`))
		assert.Error(t, err)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := DecodeJSON(strings.NewReader(`{`))
		assert.Error(t, err)
	})
}

func TestLoadJSON_RoundTripsThroughEncode(t *testing.T) {
	form := invoice.NewInvoiceForm(map[string]string{
		invoice.FieldInvoiceNumber: "1001",
		invoice.FieldAmountConfirm: "100,00 €",
	}, []invoice.LineItem{{Label: "Repair", Quantity: "2", UnitPrice: "50"}})

	path := filepath.Join(t.TempDir(), "form.json")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeJSON(file, form))
	require.NoError(t, file.Close())

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, form.Values(), loaded.Values())

	_, err = LoadJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestWorkbook_BlankThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facture.xlsx")
	require.NoError(t, WriteBlankWorkbook(path, "10/09/2025"))

	blank, err := LoadWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, "10/09/2025", blank.Field(invoice.FieldDate))
	assert.Empty(t, blank.Items())
	assert.NotContains(t, blank.FieldIDs(), "champ")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	rows, err := f.GetRows(WorkbookSheet)
	require.NoError(t, err)
	set := func(id, value string) {
		for i, row := range rows {
			if len(row) > 0 && row[0] == id {
				cell, _ := excelize.CoordinatesToCellName(2, i+1)
				require.NoError(t, f.SetCellValue(WorkbookSheet, cell, value))
				return
			}
		}
		t.Fatalf("row %s not found", id)
	}
	set(invoice.FieldInvoiceNumber, "1001")
	set(invoice.LabelField(1), "Repair")
	set(invoice.QuantityField(1), "2")
	set(invoice.UnitPriceField(1), "50")
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	filled, err := LoadWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, "1001", filled.InvoiceNumber())
	require.Len(t, filled.Items(), 1)
	assert.Equal(t, "100.00 €", filled.Items()[0].Total())
}

func TestLoadWorkbook_FirstSheetFallback(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", invoice.FieldInvoiceNumber))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "77"))
	path := filepath.Join(t.TempDir(), "other.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	form, err := LoadWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, "77", form.InvoiceNumber())
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "Numéro de facture", LabelFor(invoice.FieldInvoiceNumber))
	assert.Equal(t, "remise client", LabelFor("remise_client"))
}
