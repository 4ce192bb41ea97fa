package utils

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the dd/mm/yyyy layout printed on invoices
const DateLayout = "02/01/2006"

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)

// ValidateDate checks that s is a calendar date written dd/mm/yyyy
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, expected dd/mm/yyyy", s)
	}
	return nil
}

// Today returns the current date in DateLayout
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// SanitizeString removes control characters other than tab and newline
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
