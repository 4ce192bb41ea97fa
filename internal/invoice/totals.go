package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ComputeLineTotal multiplies quantity by unit price and formats the result as currency.
// It returns "" when either input is blank or not a number, or when the product is zero.
func ComputeLineTotal(quantity, unitPrice string) string {
	q, okQ, errQ := ParseAmount(quantity)
	p, okP, errP := ParseAmount(unitPrice)
	if errQ != nil || errP != nil || !okQ || !okP {
		return ""
	}
	return formatAmount(q.Mul(p))
}

// Totals holds the computed summary amounts of a form
type Totals struct {
	ExclTax   string `json:"total_hors_taxe"`
	Net       string `json:"total_net_de_taxes"`
	Remainder string `json:"reste_a_payer"`
}

// ComputeTotals derives the summary amounts the way the "compute totals" action does:
// the excl. tax total is the sum of line totals when any line has one (the entered value
// is kept otherwise), the net total adds the three VAT amounts, and the remainder
// subtracts the deposit. A tax or deposit that does not parse leaves the dependent
// amounts as entered.
func ComputeTotals(form InvoiceForm) Totals {
	values := form.Values()
	t := Totals{
		ExclTax:   values[FieldTotalExclTax],
		Net:       values[FieldTotalNet],
		Remainder: values[FieldRemainder],
	}

	sum := decimal.Zero
	anyLine := false
	for row := 1; row <= len(form.items); row++ {
		v, ok, err := ParseAmount(values[LineTotalField(row)])
		if err != nil || !ok {
			continue
		}
		sum = sum.Add(v)
		anyLine = true
	}
	if anyLine {
		t.ExclTax = formatAmount(sum)
	}

	net, netOK := sumAmounts(t.ExclTax, values[FieldVAT55], values[FieldVAT10], values[FieldVAT20])
	if !netOK {
		return t
	}
	t.Net = formatAmount(net)

	deposit, _, err := ParseAmount(values[FieldDeposit])
	if err != nil {
		return t
	}
	t.Remainder = formatAmount(net.Sub(deposit))
	return t
}

// CompleteExclTax returns a copy of form whose excl. tax total is the sum of its line
// totals. Forms without any computable line total are returned unchanged.
func CompleteExclTax(form InvoiceForm) InvoiceForm {
	t := ComputeTotals(form)
	if t.ExclTax == form.Field(FieldTotalExclTax) {
		return form
	}
	return form.With(FieldTotalExclTax, t.ExclTax)
}

// CompleteTotals returns a copy of form with the computed summary amounts filled in
func CompleteTotals(form InvoiceForm) InvoiceForm {
	t := ComputeTotals(form)
	next := NewInvoiceForm(form.fields, form.items)
	next.fields[FieldTotalExclTax] = t.ExclTax
	next.fields[FieldTotalNet] = t.Net
	next.fields[FieldRemainder] = t.Remainder
	return next
}

// sumAmounts adds the parsed amounts. ok is false when one of them does not parse
// or when all of them are blank.
func sumAmounts(raws ...string) (decimal.Decimal, bool) {
	sum := decimal.Zero
	anyPresent := false
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		v, present, err := ParseAmount(raw)
		if err != nil {
			return decimal.Zero, false
		}
		if present {
			anyPresent = true
			sum = sum.Add(v)
		}
	}
	return sum, anyPresent
}

// ComputeRemainder returns net minus deposit formatted as currency, or "" when net is
// blank or either value does not parse
func ComputeRemainder(net, deposit string) string {
	n, ok, err := ParseAmount(net)
	if err != nil || !ok {
		return ""
	}
	d, _, err := ParseAmount(deposit)
	if err != nil {
		return ""
	}
	return formatAmount(n.Sub(d))
}
