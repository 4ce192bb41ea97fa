package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyMarker is appended to every monetary value
const CurrencyMarker = "€"

// Label wrapping rules of the item table
const (
	WrapThreshold   = 35    // labels longer than this many characters are wrapped
	WrapMaxWidth    = 225.0 // points
	WrapLineSpacing = 12.0  // points between wrapped lines
)

// ParseAmount strips any currency marker and parses the remaining decimal number.
// present is false for blank input.
func ParseAmount(raw string) (value decimal.Decimal, present bool, err error) {
	s := stripCurrency(raw)
	if s == "" {
		return decimal.Zero, false, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, true, fmt.Errorf("%w: %q", ErrNumericParse, raw)
	}
	return v, true, nil
}

// FormatCurrency renders raw with two fraction digits and the currency marker.
// Blank and zero values render as "". A value that does not parse is returned
// trimmed together with ErrNumericParse.
func FormatCurrency(raw string) (string, error) {
	v, present, err := ParseAmount(raw)
	if err != nil {
		return strings.TrimSpace(raw), err
	}
	if !present {
		return "", nil
	}
	return formatAmount(v), nil
}

// FormatConfirmation renders the amount to settle as "<integer>,00 €".
// Blank and zero values render as "". A value that does not parse is returned
// trimmed together with ErrNumericParse.
func FormatConfirmation(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, marker := range []string{",00 " + CurrencyMarker, " " + CurrencyMarker, CurrencyMarker, ",00"} {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return strings.TrimSpace(raw), fmt.Errorf("%w: %q", ErrNumericParse, raw)
	}
	v = v.Round(0)
	if v.IsZero() {
		return "", nil
	}
	return v.StringFixed(0) + ",00 " + CurrencyMarker, nil
}

// Format renders raw according to the kind of field.
// Wrapped labels are only trimmed here; line breaking needs font metrics.
func Format(field Field, raw string) (string, error) {
	switch field.Kind {
	case KindCurrency:
		return FormatCurrency(raw)
	case KindBoldConfirmation:
		return FormatConfirmation(raw)
	default:
		return strings.TrimSpace(raw), nil
	}
}

// NeedsWrap reports whether a label is long enough to be broken into lines
func NeedsWrap(text string) bool {
	return len([]rune(text)) > WrapThreshold
}

// WrapText greedily fills lines word by word while width(line) stays within maxWidth.
// A single word wider than maxWidth gets a line of its own.
func WrapText(text string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// formatAmount rounds half away from zero to cents
func formatAmount(v decimal.Decimal) string {
	rounded := v.Round(2)
	if rounded.IsZero() {
		return ""
	}
	return rounded.StringFixed(2) + " " + CurrencyMarker
}

func stripCurrency(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " "+CurrencyMarker, "")
	s = strings.ReplaceAll(s, CurrencyMarker, "")
	return strings.TrimSpace(s)
}
