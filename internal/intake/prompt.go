package intake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/garyjia/invoice-filler/internal/invoice"
	"github.com/garyjia/invoice-filler/pkg/utils"
)

const rule = "----------------------------------------"

// Prompter asks for the invoice values on a terminal, one question per line.
// End of input answers every remaining question with its default.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	now func() time.Time
}

// NewPrompter creates a new Prompter
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		now: time.Now,
	}
}

// Collect asks every question and returns the form with its totals computed
func (p *Prompter) Collect() (invoice.InvoiceForm, error) {
	fields := make(map[string]string)
	var err error
	ask := func(id, def string) {
		if err != nil {
			return
		}
		fields[id], err = p.ask(LabelFor(id), def)
	}

	fmt.Fprintln(p.out, "=== GÉNÉRATEUR DE FACTURES - GLOBAL SOLUTIONS ===")

	p.section("INFORMATIONS DE LA FACTURE")
	ask(invoice.FieldInvoiceNumber, "")
	ask(invoice.FieldDate, utils.Today(p.now()))
	if err == nil {
		if vErr := utils.ValidateDate(fields[invoice.FieldDate]); vErr != nil {
			fmt.Fprintf(p.out, "  Attention : %v\n", vErr)
		}
	}

	p.section("INFORMATIONS CLIENT")
	for _, id := range []string{invoice.FieldClientName, invoice.FieldClientAddress, invoice.FieldClientCity, invoice.FieldClientRC, invoice.FieldClientVAT} {
		ask(id, "")
	}

	p.section("INFORMATIONS PROJET")
	for _, id := range []string{invoice.FieldDocument, invoice.FieldSite, invoice.FieldWorkStart, invoice.FieldWorkEnd} {
		ask(id, "")
	}
	if err != nil {
		return invoice.InvoiceForm{}, err
	}

	p.section("ARTICLES DE LA FACTURE")
	items, err := p.collectItems()
	if err != nil {
		return invoice.InvoiceForm{}, err
	}

	p.section("TOTAUX")
	form := invoice.NewInvoiceForm(fields, items)
	totals := invoice.ComputeTotals(form)
	fields[invoice.FieldTotalExclTax] = totals.ExclTax
	fmt.Fprintf(p.out, "Total H.T. calculé : %s\n", display(totals.ExclTax))

	ask(invoice.FieldVAT55, "0")
	ask(invoice.FieldVAT10, "0")
	ask(invoice.FieldVAT20, "0")
	if err != nil {
		return invoice.InvoiceForm{}, err
	}

	totals = invoice.ComputeTotals(invoice.NewInvoiceForm(fields, items))
	if totals.Net == "" {
		ask(invoice.FieldTotalNet, "")
	} else {
		fields[invoice.FieldTotalNet] = totals.Net
		fmt.Fprintf(p.out, "Total T.T.C. calculé : %s\n", totals.Net)
	}

	ask(invoice.FieldDeposit, "0")
	if err != nil {
		return invoice.InvoiceForm{}, err
	}
	if remainder := invoice.ComputeRemainder(fields[invoice.FieldTotalNet], fields[invoice.FieldDeposit]); remainder == "" {
		ask(invoice.FieldRemainder, "")
	} else {
		fields[invoice.FieldRemainder] = remainder
		fmt.Fprintf(p.out, "Reste à payer : %s\n", remainder)
	}

	ask(invoice.FieldAmountConfirm, "")
	if err != nil {
		return invoice.InvoiceForm{}, err
	}

	return invoice.NewInvoiceForm(fields, items), nil
}

func (p *Prompter) collectItems() ([]invoice.LineItem, error) {
	var items []invoice.LineItem
	for len(items) < invoice.MaxLineItems {
		fmt.Fprintf(p.out, "\nArticle %d :\n", len(items)+1)
		label, err := p.ask("  Libellé", "")
		if err != nil {
			return nil, err
		}
		if label == "" {
			break
		}
		quantity, err := p.ask("  Quantité", "1")
		if err != nil {
			return nil, err
		}
		price, err := p.ask("  Prix unitaire", "")
		if err != nil {
			return nil, err
		}

		if !validNumbers(quantity, price) {
			fmt.Fprintln(p.out, "  Attention : erreur dans les nombres, article ignoré")
			continue
		}
		item := invoice.LineItem{Label: label, Quantity: quantity, UnitPrice: price}
		if total := item.Total(); total != "" {
			fmt.Fprintf(p.out, "  → Total : %s\n", total)
		}
		items = append(items, item)
	}
	return items, nil
}

// Confirm prints a summary of form and asks whether to generate it
func (p *Prompter) Confirm(form invoice.InvoiceForm) (bool, error) {
	p.section("RÉSUMÉ")
	values := form.Values()
	for _, l := range Labels {
		if v := strings.TrimSpace(values[l.ID]); v != "" {
			fmt.Fprintf(p.out, "%-42s %s\n", l.Label+" :", v)
		}
	}
	for i, item := range form.Items() {
		fmt.Fprintf(p.out, "Article %d : %s × %s = %s\n", i+1, display(item.Quantity), display(item.UnitPrice), display(item.Total()))
		fmt.Fprintf(p.out, "  %s\n", item.Label)
	}

	answer, err := p.ask("\nGénérer la facture ? (o/n)", "o")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "o", "oui", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) section(title string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, rule)
}

// ask prints the question and returns the trimmed answer, or def when it is blank
func (p *Prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s] : ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s : ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
	}

	answer := strings.TrimSpace(utils.SanitizeString(line))
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func validNumbers(raws ...string) bool {
	for _, raw := range raws {
		if _, _, err := invoice.ParseAmount(raw); err != nil {
			return false
		}
	}
	return true
}

func display(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
