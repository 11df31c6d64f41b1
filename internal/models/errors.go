package models

import "fmt"

// InvalidInputError reports an unreadable or unparseable scan file, or a
// volume that does not have at least three spatial dimensions. It surfaces
// to the HTTP boundary as a client error.
type InvalidInputError struct {
	// Reason describes what was wrong with the input.
	Reason string

	// Err is the underlying parser error, if any.
	Err error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scan file: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid scan file: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

// ProcessingError reports a failure while slicing, masking or encoding.
// It is fatal for the whole request; no partial per-axis output is kept.
type ProcessingError struct {
	// Stage names the pipeline stage that failed.
	Stage string

	// Err is the underlying failure.
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed during %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
