package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySubmission is returned when a submission carries no rows.
	ErrEmptySubmission = errors.New("empty submission")

	// ErrTemplateNotFound is returned when neither template file exists.
	ErrTemplateNotFound = errors.New("template not found")
)

// TemplateError describes a failed template load.
type TemplateError struct {
	Modern string // path of the .xlsx template
	Legacy string // path of the .xls template
	Err    error
}

func (e *TemplateError) Error() string {
	if errors.Is(e.Err, ErrTemplateNotFound) {
		return fmt.Sprintf("%v: provide %s or %s", e.Err, e.Modern, e.Legacy)
	}
	return fmt.Sprintf("convert legacy template %s: %v", e.Legacy, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// BucketError reports a failed merge of one bucket.
type BucketError struct {
	Key  string
	File string
	Err  error
}

func (e *BucketError) Error() string {
	return fmt.Sprintf("bucket %s: %v", e.Key, e.Err)
}

func (e *BucketError) Unwrap() error {
	return e.Err
}
