package invoice

import "fmt"

// FieldKind selects how a field value is formatted and drawn
type FieldKind int

const (
	KindPlainText FieldKind = iota
	KindCurrency
	KindWrappedText
	KindBoldConfirmation
)

func (k FieldKind) String() string {
	switch k {
	case KindPlainText:
		return "plain_text"
	case KindCurrency:
		return "currency"
	case KindWrappedText:
		return "wrapped_text"
	case KindBoldConfirmation:
		return "bold_confirmation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Font size tiers of the template
const (
	FontSizeHeader  = 12.0 // header, client and project blocks
	FontSizeTable   = 10.0 // line items, taxes and totals
	FontSizeDefault = 9.0
)

// Field identifiers of the invoice template
const (
	FieldInvoiceNumber = "numero_de_facture"
	FieldDate          = "date"

	FieldClientName    = "nom"
	FieldClientAddress = "adresse"
	FieldClientCity    = "ville"
	FieldClientRC      = "num_rc"
	FieldClientVAT     = "tva"

	FieldDocument  = "document"
	FieldSite      = "lieu_d_intervention"
	FieldWorkStart = "debut_du_chantier"
	FieldWorkEnd   = "fin_du_chantier"

	FieldTotalExclTax   = "total_hors_taxe"
	FieldVAT55          = "tva_5_5_pourcent"
	FieldVAT10          = "tva_10_pourcent"
	FieldVAT20          = "tva_20_pourcent"
	FieldTotalNet       = "total_net_de_taxes"
	FieldDeposit        = "acompte_percu"
	FieldRemainder      = "reste_a_payer"
	FieldAmountConfirm  = "en_votre_aimable_reglement_de_la_somme_de"
	fieldLabelPrefix    = "libelle_"
	fieldQuantityPrefix = "quantite_"
	fieldPricePrefix    = "prix_unitaire_"
	fieldLineNetPrefix  = "total_net_"
)

// Line item table geometry
const (
	MaxLineItems = 4

	lineItemTop  = 352.0
	lineItemStep = 25.0

	labelColumnX    = 60.0
	quantityColumnX = 290.0
	priceColumnX    = 360.0
	lineNetColumnX  = 465.0
)

// LabelField returns the label field id of a 1-based line item row
func LabelField(row int) string { return fmt.Sprintf("%s%d", fieldLabelPrefix, row) }

// QuantityField returns the quantity field id of a 1-based line item row
func QuantityField(row int) string { return fmt.Sprintf("%s%d", fieldQuantityPrefix, row) }

// UnitPriceField returns the unit price field id of a 1-based line item row
func UnitPriceField(row int) string { return fmt.Sprintf("%s%d", fieldPricePrefix, row) }

// LineTotalField returns the computed total field id of a 1-based line item row
func LineTotalField(row int) string { return fmt.Sprintf("%s%d", fieldLineNetPrefix, row) }

// Field is one entry of the template geometry.
// Y is measured from the top edge of the page, in points.
type Field struct {
	ID       string
	Kind     FieldKind
	X        float64
	Y        float64
	FontSize float64
	Required bool
	// Inverse marks fields printed over the dark header band
	Inverse bool
}

// Registry is the immutable, ordered table of template fields
type Registry struct {
	fields []Field
	byID   map[string]int
}

var defaultRegistry = newDefaultRegistry()

// DefaultRegistry returns the geometry of the Global Solutions invoice template
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func newDefaultRegistry() *Registry {
	header := func(id string, x, y float64) Field {
		return Field{ID: id, Kind: KindPlainText, X: x, Y: y, FontSize: FontSizeHeader}
	}
	amount := func(id string, y float64) Field {
		return Field{ID: id, Kind: KindCurrency, X: lineNetColumnX, Y: y, FontSize: FontSizeTable}
	}

	fields := []Field{
		{ID: FieldInvoiceNumber, Kind: KindPlainText, X: 130, Y: 71.5, FontSize: FontSizeHeader, Required: true, Inverse: true},
		{ID: FieldDate, Kind: KindPlainText, X: 95, Y: 96.5, FontSize: FontSizeHeader, Inverse: true},

		header(FieldClientName, 50, 214),
		header(FieldClientAddress, 50, 226),
		header(FieldClientCity, 50, 238),
		header(FieldClientRC, 50, 250),
		header(FieldClientVAT, 50, 262),

		header(FieldDocument, 355, 203),
		header(FieldSite, 397, 227),
		header(FieldWorkStart, 393, 251),
		header(FieldWorkEnd, 378, 263),
	}

	// Row 1 is nearest the top of the table
	for row := 1; row <= MaxLineItems; row++ {
		y := lineItemTop + float64(row-1)*lineItemStep
		fields = append(fields,
			Field{ID: LabelField(row), Kind: KindWrappedText, X: labelColumnX, Y: y, FontSize: FontSizeTable},
			Field{ID: QuantityField(row), Kind: KindPlainText, X: quantityColumnX, Y: y, FontSize: FontSizeTable},
			Field{ID: UnitPriceField(row), Kind: KindCurrency, X: priceColumnX, Y: y, FontSize: FontSizeTable},
			Field{ID: LineTotalField(row), Kind: KindCurrency, X: lineNetColumnX, Y: y, FontSize: FontSizeTable},
		)
	}

	fields = append(fields,
		amount(FieldTotalExclTax, 447),
		amount(FieldVAT55, 475),
		amount(FieldVAT10, 504),
		amount(FieldVAT20, 529),
		amount(FieldTotalNet, 552),
		amount(FieldDeposit, 572),
		amount(FieldRemainder, 610),
		Field{ID: FieldAmountConfirm, Kind: KindBoldConfirmation, X: 295, Y: 639, FontSize: FontSizeTable},
	)

	return NewRegistry(fields)
}

// NewRegistry builds a registry from an ordered field list.
// Later duplicates of an id replace earlier ones in place.
func NewRegistry(fields []Field) *Registry {
	r := &Registry{byID: make(map[string]int, len(fields))}
	for _, f := range fields {
		if i, ok := r.byID[f.ID]; ok {
			r.fields[i] = f
			continue
		}
		r.byID[f.ID] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r
}

// Lookup returns the field registered under id
func (r *Registry) Lookup(id string) (Field, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Field{}, false
	}
	return r.fields[i], true
}

// Fields returns a copy of the registered fields in drawing order
func (r *Registry) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Required returns the ids of the fields that must be filled
func (r *Registry) Required() []string {
	var ids []string
	for _, f := range r.fields {
		if f.Required {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// FontSizeFor returns the size tier of id, or FontSizeDefault when id is unknown
func (r *Registry) FontSizeFor(id string) float64 {
	if f, ok := r.Lookup(id); ok {
		return f.FontSize
	}
	return FontSizeDefault
}

// Len returns the number of registered fields
func (r *Registry) Len() int {
	return len(r.fields)
}
