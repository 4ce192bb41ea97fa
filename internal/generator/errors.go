package generator

import "errors"

var (
	// ErrOutputWrite is returned when the finished document cannot be written
	ErrOutputWrite = errors.New("cannot write output file")

	// ErrOutputBusy is returned when another run is already producing the same file
	ErrOutputBusy = errors.New("output file is being generated")
)
