package services

import (
	"errors"
	"fmt"

	"github.com/prepstack/mockexam-api/utils/llmjson"
)

// ErrExtractionInProgress is returned when an extraction run is requested
// for a section that already holds the extraction lock
var ErrExtractionInProgress = errors.New("extraction already in progress for this section")

// DocumentUnavailableError means the source PDF could not be fetched from
// object storage
type DocumentUnavailableError struct {
	Key string
	Err error
}

func (e *DocumentUnavailableError) Error() string {
	return fmt.Sprintf("document %q is unavailable: %v", e.Key, e.Err)
}

func (e *DocumentUnavailableError) Unwrap() error { return e.Err }

// UpstreamServiceError means the generation API call failed
type UpstreamServiceError struct {
	Err error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("generation service failed: %v", e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// ExtractionFormatError means the model output could not be normalized into
// a question payload. It carries the strategies attempted and a bounded
// preview of the offending output.
type ExtractionFormatError = llmjson.FormatError

// PersistenceError means extracted questions could not be durably stored
type PersistenceError struct {
	SectionID uint
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist questions for section %d: %v", e.SectionID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
