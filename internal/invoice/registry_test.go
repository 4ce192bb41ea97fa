package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Lookup(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		id       string
		x, y     float64
		size     float64
		kind     FieldKind
		inverse  bool
		required bool
	}{
		{id: FieldInvoiceNumber, x: 130, y: 71.5, size: 12, kind: KindPlainText, inverse: true, required: true},
		{id: FieldDate, x: 95, y: 96.5, size: 12, kind: KindPlainText, inverse: true},
		{id: FieldClientVAT, x: 50, y: 262, size: 12, kind: KindPlainText},
		{id: FieldSite, x: 397, y: 227, size: 12, kind: KindPlainText},
		{id: FieldTotalExclTax, x: 465, y: 447, size: 10, kind: KindCurrency},
		{id: FieldRemainder, x: 465, y: 610, size: 10, kind: KindCurrency},
		{id: FieldAmountConfirm, x: 295, y: 639, size: 10, kind: KindBoldConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			f, ok := registry.Lookup(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.x, f.X)
			assert.Equal(t, tt.y, f.Y)
			assert.Equal(t, tt.size, f.FontSize)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.inverse, f.Inverse)
			assert.Equal(t, tt.required, f.Required)
		})
	}
}

func TestDefaultRegistry_LineItemRows(t *testing.T) {
	registry := DefaultRegistry()

	for row := 1; row <= MaxLineItems; row++ {
		wantY := 352 + float64(row-1)*25

		label, ok := registry.Lookup(LabelField(row))
		require.True(t, ok)
		assert.Equal(t, 60.0, label.X)
		assert.Equal(t, wantY, label.Y)
		assert.Equal(t, KindWrappedText, label.Kind)

		qty, ok := registry.Lookup(QuantityField(row))
		require.True(t, ok)
		assert.Equal(t, 290.0, qty.X)
		assert.Equal(t, KindPlainText, qty.Kind)

		price, ok := registry.Lookup(UnitPriceField(row))
		require.True(t, ok)
		assert.Equal(t, 360.0, price.X)
		assert.Equal(t, KindCurrency, price.Kind)

		total, ok := registry.Lookup(LineTotalField(row))
		require.True(t, ok)
		assert.Equal(t, 465.0, total.X)
		assert.Equal(t, wantY, total.Y)
	}

	first, _ := registry.Lookup(LabelField(1))
	last, _ := registry.Lookup(LabelField(MaxLineItems))
	assert.Less(t, first.Y, last.Y, "row 1 is nearest the top")
}

func TestDefaultRegistry_UnknownFields(t *testing.T) {
	registry := DefaultRegistry()

	for _, id := range []string{"", "libelle_0", "libelle_5", "remise", "NUMERO_DE_FACTURE"} {
		_, ok := registry.Lookup(id)
		assert.False(t, ok, id)
		assert.Equal(t, FontSizeDefault, registry.FontSizeFor(id))
	}
}

func TestDefaultRegistry_Shape(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, 11+4*MaxLineItems+8, registry.Len())
	assert.Equal(t, []string{FieldInvoiceNumber}, registry.Required())

	fields := registry.Fields()
	assert.Equal(t, FieldInvoiceNumber, fields[0].ID)
	assert.Equal(t, FieldAmountConfirm, fields[len(fields)-1].ID)

	// callers get a copy
	fields[0].X = -1
	again, _ := registry.Lookup(FieldInvoiceNumber)
	assert.Equal(t, 130.0, again.X)
}

func TestNewRegistry_DuplicateReplacesInPlace(t *testing.T) {
	registry := NewRegistry([]Field{
		{ID: "a", X: 1},
		{ID: "b", X: 2},
		{ID: "a", X: 3},
	})

	require.Equal(t, 2, registry.Len())
	fields := registry.Fields()
	assert.Equal(t, "a", fields[0].ID)
	assert.Equal(t, 3.0, fields[0].X)
}

func TestFieldKind_String(t *testing.T) {
	assert.Equal(t, "currency", KindCurrency.String())
	assert.Equal(t, "bold_confirmation", KindBoldConfirmation.String())
	assert.Equal(t, "kind(9)", FieldKind(9).String())
}
