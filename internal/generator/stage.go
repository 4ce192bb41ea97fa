package generator

import "fmt"

// Stage is a step of one generation run
type Stage int

const (
	StageIdle Stage = iota
	StageFormatting
	StageRendering
	StageMerging
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageFormatting:
		return "formatting"
	case StageRendering:
		return "rendering"
	case StageMerging:
		return "merging"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError is the terminal failure of a run, tagged with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("invoice generation failed while %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
