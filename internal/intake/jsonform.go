package intake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/garyjia/invoice-filler/internal/invoice"
)

// FormDocument is the JSON shape of an invoice form.
// Field values may also be given at the top level, next to "items".
type FormDocument struct {
	Fields map[string]string  `json:"fields"`
	Items  []invoice.LineItem `json:"items"`
}

// LoadJSON reads a form document from a file
func LoadJSON(path string) (invoice.InvoiceForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return invoice.InvoiceForm{}, fmt.Errorf("failed to read form file: %w", err)
	}
	return DecodeJSON(bytes.NewReader(data))
}

// DecodeJSON parses a form document. Top level strings and numbers are taken as
// field values; "fields" entries win over top level ones and "items" win over
// line item ids.
func DecodeJSON(r io.Reader) (invoice.InvoiceForm, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return invoice.InvoiceForm{}, fmt.Errorf("failed to decode form: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, msg := range raw {
		if key == "fields" || key == "items" {
			continue
		}
		v, ok, err := scalar(msg)
		if err != nil {
			return invoice.InvoiceForm{}, fmt.Errorf("field %s: %w", key, err)
		}
		if ok {
			values[key] = v
		}
	}

	if msg, ok := raw["fields"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(msg, &fields); err != nil {
			return invoice.InvoiceForm{}, fmt.Errorf("failed to decode fields: %w", err)
		}
		for key, fm := range fields {
			v, ok, err := scalar(fm)
			if err != nil {
				return invoice.InvoiceForm{}, fmt.Errorf("field %s: %w", key, err)
			}
			if ok {
				values[key] = v
			}
		}
	}

	form := FormFromValues(values)

	if msg, ok := raw["items"]; ok {
		var items []jsonItem
		if err := json.Unmarshal(msg, &items); err != nil {
			return invoice.InvoiceForm{}, fmt.Errorf("failed to decode items: %w", err)
		}
		lineItems := make([]invoice.LineItem, len(items))
		for i, it := range items {
			lineItems[i] = invoice.LineItem{Label: it.Label.String(), Quantity: it.Quantity.String(), UnitPrice: it.UnitPrice.String()}
		}
		form = withItems(form, cleanItems(lineItems))
	}

	return form, nil
}

// EncodeJSON writes form as an indented document
func EncodeJSON(w io.Writer, form invoice.InvoiceForm) error {
	doc := FormDocument{Fields: make(map[string]string), Items: form.Items()}
	for _, id := range form.FieldIDs() {
		doc.Fields[id] = form.Field(id)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

func withItems(form invoice.InvoiceForm, items []invoice.LineItem) invoice.InvoiceForm {
	fields := make(map[string]string)
	for _, id := range form.FieldIDs() {
		fields[id] = form.Field(id)
	}
	return invoice.NewInvoiceForm(fields, items)
}

// jsonItem accepts numbers as well as strings
type jsonItem struct {
	Label     flexString `json:"label"`
	Quantity  flexString `json:"quantity"`
	UnitPrice flexString `json:"unit_price"`
}

type flexString string

func (f flexString) String() string { return string(f) }

func (f *flexString) UnmarshalJSON(data []byte) error {
	v, _, err := scalar(data)
	if err != nil {
		return err
	}
	*f = flexString(v)
	return nil
}

// scalar renders a JSON string, number or bool as text. ok is false for null.
func scalar(msg json.RawMessage) (value string, ok bool, err error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false, err
	}
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	default:
		return "", false, fmt.Errorf("expected a string or number")
	}
}
