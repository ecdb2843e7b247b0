package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// FailurePolicy decides what happens after a bucket fails.
type FailurePolicy string

const (
	// PolicyAbort stops the submission at the first failed bucket. Files
	// already written stay written. This is the default.
	PolicyAbort FailurePolicy = "abort"

	// PolicyIsolate attempts every bucket and reports failures together.
	PolicyIsolate FailurePolicy = "isolate"
)

// ParseFailurePolicy parses s; "" selects PolicyAbort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicyIsolate:
		return PolicyIsolate, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %q or %q)", s, PolicyAbort, PolicyIsolate)
	}
}

// MergeRecord describes one applied bucket merge.
type MergeRecord struct {
	SubmissionID string
	Key          string
	File         string
	Rows         int
	At           time.Time
}

// Journal records applied merges. The engine never reads it back.
type Journal interface {
	Record(ctx context.Context, rec MergeRecord) error
}

// Failure is a bucket that could not be merged.
type Failure struct {
	Key   string `json:"key"`
	File  string `json:"file"`
	Error string `json:"error"`
}

// Result summarizes one submission.
type Result struct {
	SubmissionID string        `json:"submission_id"`
	Policy       FailurePolicy `json:"policy"`
	Buckets      int           `json:"buckets"`
	Rows         int           `json:"rows"`
	Files        []string      `json:"files"`
	Failures     []Failure     `json:"failures,omitempty"`
}

// Options configures a Processor. Zero values select defaults.
type Options struct {
	Policy  FailurePolicy
	Journal Journal
	IDs     IDGenerator
	Logger  *slog.Logger
	Now     func() time.Time
}

// Processor runs submissions: group, then merge bucket by bucket.
type Processor struct {
	key     KeyFunc
	merger  *Merger
	policy  FailurePolicy
	journal Journal
	ids     IDGenerator
	log     *slog.Logger
	now     func() time.Time
}

// NewProcessor wires a key function and merger into a Processor.
func NewProcessor(key KeyFunc, merger *Merger, opts Options) *Processor {
	p := &Processor{
		key:     key,
		merger:  merger,
		policy:  opts.Policy,
		journal: opts.Journal,
		ids:     opts.IDs,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if p.policy == "" {
		p.policy = PolicyAbort
	}
	if p.ids == nil {
		p.ids = UUIDv7Generator{}
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Process groups rows and merges every bucket in group order.
//
// The returned Result is never nil. On an empty submission the error is
// ErrEmptySubmission. Under PolicyAbort the first bucket error is returned
// and later buckets are skipped; under PolicyIsolate all bucket errors are
// joined. No write is retried or rolled back.
func (p *Processor) Process(ctx context.Context, rows [][]any) (*Result, error) {
	res := &Result{
		SubmissionID: p.ids.Generate(),
		Policy:       p.policy,
		Files:        []string{},
	}
	log := p.log.With("submission", res.SubmissionID)

	groups, err := Group(rows, p.key)
	if err != nil {
		log.Info("submission rejected", "error", err)
		return res, err
	}
	res.Buckets = groups.Len()
	res.Rows = groups.RowCount()
	log.Info("submission grouped", "buckets", res.Buckets, "rows", res.Rows)

	var errs []error
	for _, key := range groups.Keys() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		bucket := groups.Rows(key)
		file, err := p.mergeBucket(ctx, res.SubmissionID, key, bucket)
		if file != "" {
			res.Files = append(res.Files, file)
		}
		if err == nil {
			log.Debug("bucket merged", "key", key, "file", file, "rows", len(bucket))
			continue
		}

		log.Error("bucket failed", "key", key, "error", err)
		res.Failures = append(res.Failures, Failure{Key: key, File: FileName(key), Error: err.Error()})
		errs = append(errs, err)
		if p.policy == PolicyAbort {
			break
		}
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	log.Info("submission stored", "files", len(res.Files))
	return res, nil
}

// mergeBucket merges one bucket and journals it. A journal failure still
// reports the file, since it was written.
func (p *Processor) mergeBucket(ctx context.Context, id, key string, rows [][]any) (string, error) {
	file, err := p.merger.Merge(ctx, key, rows)
	if err != nil {
		return "", err
	}
	if p.journal == nil {
		return file, nil
	}

	rec := MergeRecord{SubmissionID: id, Key: key, File: file, Rows: len(rows), At: p.now().UTC()}
	if err := p.journal.Record(ctx, rec); err != nil {
		return file, &BucketError{Key: key, File: file, Err: fmt.Errorf("journal: %w", err)}
	}
	return file, nil
}

// Status is the outcome category reported to requesters.
type Status string

// Outcome categories.
const (
	StatusOK      Status = "ok"
	StatusEmpty   Status = "empty"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// Classify maps a Process outcome onto a Status. Partial success is only
// reported under PolicyIsolate; an aborted submission is an error even when
// earlier buckets were written.
func Classify(res *Result, err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrEmptySubmission):
		return StatusEmpty
	case res != nil && res.Policy == PolicyIsolate && len(res.Files) > 0:
		return StatusPartial
	default:
		return StatusError
	}
}
