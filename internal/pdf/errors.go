package pdf

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateUnavailable is returned when the template cannot be read or parsed
	ErrTemplateUnavailable = errors.New("template unavailable")

	// ErrOverlay is returned when the overlay page cannot be drawn or serialized
	ErrOverlay = errors.New("overlay page failed")

	// ErrComposite is returned when the overlay cannot be merged onto the template
	ErrComposite = errors.New("composite failed")
)

// TemplateError describes why a template could not be used
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// Is reports ErrTemplateUnavailable for every TemplateError
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplateUnavailable
}
