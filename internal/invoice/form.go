package invoice

import (
	"fmt"
	"sort"
	"strings"
)

// LineItem is one row of the itemized table
type LineItem struct {
	Label     string `json:"label"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// Total returns quantity × unit price formatted as currency, or "" when either is unusable
func (li LineItem) Total() string {
	return ComputeLineTotal(li.Quantity, li.UnitPrice)
}

// IsEmpty reports whether the row carries no value at all
func (li LineItem) IsEmpty() bool {
	return strings.TrimSpace(li.Label) == "" &&
		strings.TrimSpace(li.Quantity) == "" &&
		strings.TrimSpace(li.UnitPrice) == ""
}

// InvoiceForm is the complete, immutable set of values entered for one invoice.
// Collaborators build it once and hand it to the generator.
type InvoiceForm struct {
	fields map[string]string
	items  []LineItem
}

// NewInvoiceForm copies fields and items into a new form
func NewInvoiceForm(fields map[string]string, items []LineItem) InvoiceForm {
	f := InvoiceForm{
		fields: make(map[string]string, len(fields)),
		items:  make([]LineItem, len(items)),
	}
	for k, v := range fields {
		f.fields[k] = v
	}
	copy(f.items, items)
	return f
}

// Field returns the raw value of a non line item field
func (f InvoiceForm) Field(id string) string {
	return f.fields[id]
}

// InvoiceNumber returns the trimmed invoice number
func (f InvoiceForm) InvoiceNumber() string {
	return strings.TrimSpace(f.fields[FieldInvoiceNumber])
}

// Items returns a copy of the line items
func (f InvoiceForm) Items() []LineItem {
	out := make([]LineItem, len(f.items))
	copy(out, f.items)
	return out
}

// With returns a copy of the form with one field replaced
func (f InvoiceForm) With(id, value string) InvoiceForm {
	next := NewInvoiceForm(f.fields, f.items)
	next.fields[id] = value
	return next
}

// Cleared returns an empty form that only keeps the date
func (f InvoiceForm) Cleared() InvoiceForm {
	return NewInvoiceForm(map[string]string{FieldDate: f.fields[FieldDate]}, nil)
}

// Values flattens the form into field id → raw value.
// Line items are expanded into their row fields and their totals are computed,
// overriding any value given for the same ids in the field map.
func (f InvoiceForm) Values() map[string]string {
	values := make(map[string]string, len(f.fields)+4*len(f.items))
	for k, v := range f.fields {
		values[k] = v
	}
	for i, item := range f.items {
		row := i + 1
		values[LabelField(row)] = item.Label
		values[QuantityField(row)] = item.Quantity
		values[UnitPriceField(row)] = item.UnitPrice
		values[LineTotalField(row)] = item.Total()
	}
	return values
}

// FieldIDs returns the sorted ids present in the field map
func (f InvoiceForm) FieldIDs() []string {
	ids := make([]string, 0, len(f.fields))
	for k := range f.fields {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the form against the registry before anything is rendered
func (f InvoiceForm) Validate(registry *Registry) error {
	values := f.Values()
	for _, id := range registry.Required() {
		if strings.TrimSpace(values[id]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, id)
		}
	}
	if len(f.items) > MaxLineItems {
		return fmt.Errorf("%w: %d items, template holds %d", ErrItemLimitExceeded, len(f.items), MaxLineItems)
	}
	return nil
}
