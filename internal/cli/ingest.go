package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bucketbook/internal/ingest"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <payload.json|->",
		Short: "Merge one submission into the entity files",
		Long: `Run one submission without the HTTP server.

The payload is either {"dados": [[...], ...]} or a bare array of rows.
Use "-" to read it from stdin.

Example:
  bucketbook ingest rows.json
  cat rows.json | bucketbook ingest --format json -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// ingestOutput prints a submission result.
type ingestOutput struct {
	*ingest.Result
}

func (o ingestOutput) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Success! %d files processed.", len(o.Files))
	for _, f := range o.Files {
		fmt.Fprintf(&b, "\n  %s", f)
	}
	return b.String()
}

func runIngest(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := setupLogging(opts.Verbose, formatter.GetErrWriter())

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	rows, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodePayload, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read payload", err)
	}

	formatter.VerboseLog("payload %s: %d rows", path, len(rows))

	a, err := newApp(cfg, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := a.proc.Process(ctx, rows)
	status := ingest.Classify(res, err)
	if status == ingest.StatusOK {
		return formatter.Success(ingestOutput{res})
	}

	_ = formatter.Error(errorCode(status, err), err.Error(), res)
	return WrapExitError(ExitFailure, fmt.Sprintf("submission %s", status), err)
}

// errorCode maps a failed outcome onto a CLI error code.
func errorCode(status ingest.Status, err error) string {
	switch {
	case status == ingest.StatusEmpty:
		return ErrCodeEmpty
	case status == ingest.StatusPartial:
		return ErrCodePartial
	case errors.Is(err, ingest.ErrTemplateNotFound):
		return ErrCodeTemplate
	}
	var te *ingest.TemplateError
	if errors.As(err, &te) {
		return ErrCodeTemplate
	}
	var be *ingest.BucketError
	if errors.As(err, &be) {
		return ErrCodeBucket
	}
	return ErrCodeGeneric
}
