package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bucketbook/internal/ingest"
)

// NewKeyCommand creates the key command.
func NewKeyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key <payload.json|->",
		Short: "Print the bucket key of every row without writing files",
		Long: `Classify a payload and print the bucket key and target file of each row,
in submission order. Nothing is written.

Example:
  bucketbook key rows.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKey(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// keyLine is the classification of one row.
type keyLine struct {
	Row  int    `json:"row"`
	Key  string `json:"key"`
	File string `json:"file"`
}

type keyOutput []keyLine

func (o keyOutput) String() string {
	lines := make([]string, len(o))
	for i, l := range o {
		lines[i] = fmt.Sprintf("%d\t%s", l.Row, l.Key)
	}
	return strings.Join(lines, "\n")
}

func runKey(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	builder, err := cfg.Builder()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid identifier schema", err)
	}

	rows, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		_ = formatter.Error(ErrCodePayload, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read payload", err)
	}
	if len(rows) == 0 {
		_ = formatter.Error(ErrCodeEmpty, ingest.ErrEmptySubmission.Error(), nil)
		return WrapExitError(ExitFailure, "nothing to classify", ingest.ErrEmptySubmission)
	}

	formatter.VerboseLog("payload %s: %d rows, max key length %d", path, len(rows), cfg.MaxKeyLength)

	out := make(keyOutput, len(rows))
	for i, row := range rows {
		key := builder.Key(row)
		out[i] = keyLine{Row: i + 1, Key: key, File: ingest.FileName(key)}
	}
	return formatter.Success(out)
}
