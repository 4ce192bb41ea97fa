// Package intake collects invoice forms from the outside world: JSON documents,
// spreadsheets and the interactive terminal prompt.
package intake

import (
	"strings"

	"github.com/garyjia/invoice-filler/internal/invoice"
	"github.com/garyjia/invoice-filler/pkg/utils"
)

// FormFromValues builds a form from a flat field id → value map.
// Line item ids (libelle_N, quantite_N, prix_unitaire_N) become items; computed
// line totals are dropped. Rows past the template capacity are kept so that
// validation can reject them.
func FormFromValues(values map[string]string) invoice.InvoiceForm {
	fields := make(map[string]string, len(values))
	var items []invoice.LineItem

	setItem := func(row int, apply func(*invoice.LineItem)) {
		for len(items) < row {
			items = append(items, invoice.LineItem{})
		}
		apply(&items[row-1])
	}

	for id, raw := range values {
		value := utils.SanitizeString(raw)
		row, column, ok := parseItemField(id)
		if !ok {
			fields[id] = value
			continue
		}
		switch column {
		case itemLabel:
			setItem(row, func(li *invoice.LineItem) { li.Label = value })
		case itemQuantity:
			setItem(row, func(li *invoice.LineItem) { li.Quantity = value })
		case itemUnitPrice:
			setItem(row, func(li *invoice.LineItem) { li.UnitPrice = value })
		case itemTotal:
			// recomputed from quantity and unit price
		}
	}

	return invoice.NewInvoiceForm(fields, trimItems(items))
}

type itemColumn int

const (
	itemLabel itemColumn = iota
	itemQuantity
	itemUnitPrice
	itemTotal
)

// maxScannedRows bounds the row numbers recognized as line item ids
const maxScannedRows = 64

func parseItemField(id string) (row int, column itemColumn, ok bool) {
	for r := 1; r <= maxScannedRows; r++ {
		switch id {
		case invoice.LabelField(r):
			return r, itemLabel, true
		case invoice.QuantityField(r):
			return r, itemQuantity, true
		case invoice.UnitPriceField(r):
			return r, itemUnitPrice, true
		case invoice.LineTotalField(r):
			return r, itemTotal, true
		}
	}
	return 0, 0, false
}

// trimItems drops trailing empty rows and keeps the position of filled ones
func trimItems(items []invoice.LineItem) []invoice.LineItem {
	end := len(items)
	for end > 0 && items[end-1].IsEmpty() {
		end--
	}
	return items[:end]
}

func cleanItems(items []invoice.LineItem) []invoice.LineItem {
	out := make([]invoice.LineItem, len(items))
	for i, item := range items {
		out[i] = invoice.LineItem{
			Label:     utils.SanitizeString(item.Label),
			Quantity:  utils.SanitizeString(item.Quantity),
			UnitPrice: utils.SanitizeString(item.UnitPrice),
		}
	}
	return trimItems(out)
}

// Labels are the French captions of the template fields, in prompt order
var Labels = []struct {
	ID    string
	Label string
}{
	{invoice.FieldInvoiceNumber, "Numéro de facture"},
	{invoice.FieldDate, "Date"},
	{invoice.FieldClientName, "Nom"},
	{invoice.FieldClientAddress, "Adresse"},
	{invoice.FieldClientCity, "Ville"},
	{invoice.FieldClientRC, "Numéro RC"},
	{invoice.FieldClientVAT, "TVA"},
	{invoice.FieldDocument, "Document"},
	{invoice.FieldSite, "Lieu d'intervention"},
	{invoice.FieldWorkStart, "Début du chantier"},
	{invoice.FieldWorkEnd, "Fin du chantier"},
	{invoice.FieldTotalExclTax, "Total H.T."},
	{invoice.FieldVAT55, "TVA 5.5%"},
	{invoice.FieldVAT10, "TVA 10%"},
	{invoice.FieldVAT20, "TVA 20%"},
	{invoice.FieldTotalNet, "Total net de taxes"},
	{invoice.FieldDeposit, "Acompte perçu"},
	{invoice.FieldRemainder, "Reste à payer"},
	{invoice.FieldAmountConfirm, "En votre aimable règlement de la somme de"},
}

// LabelFor returns the caption of a field id, or the id itself
func LabelFor(id string) string {
	for _, l := range Labels {
		if l.ID == id {
			return l.Label
		}
	}
	return strings.ReplaceAll(id, "_", " ")
}
