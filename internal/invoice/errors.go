package invoice

import "errors"

var (
	// ErrMissingRequiredField is returned before rendering when a required field is blank
	ErrMissingRequiredField = errors.New("required field is missing")

	// ErrItemLimitExceeded is returned when a form carries more rows than the template has
	ErrItemLimitExceeded = errors.New("line item count exceeds template capacity")

	// ErrNumericParse marks a monetary or quantity value that is not a number.
	// It never aborts a render; the raw value is kept.
	ErrNumericParse = errors.New("value is not a number")
)
