package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bucketbook/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [bucket-key]",
		Short: "Show journaled merges",
		Long: `List merges recorded in the journal. With a bucket key, list every merge
into that entity file; otherwise list the most recent merges.

Requires "journal" to be set in the config.

Example:
  bucketbook history --config bucketbook.yaml
  bucketbook history --config bucketbook.yaml 12345000199_Acme_Ltd`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runHistory(opts, key, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of recent merges to show without a key")

	return cmd
}

type historyOutput []journal.Entry

func (o historyOutput) String() string {
	if len(o) == 0 {
		return "no merges recorded"
	}
	lines := make([]string, len(o))
	for i, e := range o {
		lines[i] = fmt.Sprintf("%d\t%s\t%s\t%s\t+%d", e.Seq, e.At.Format(time.RFC3339), e.SubmissionID, e.File, e.Rows)
	}
	return strings.Join(lines, "\n")
}

func runHistory(opts *HistoryOptions, key string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	if cfg.Journal == "" {
		err := errors.New("journal is not configured")
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "history unavailable", err)
	}

	st, err := journal.Open(cfg.Journal)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var entries []journal.Entry
	if key != "" {
		entries, err = st.ForKey(ctx, key)
	} else {
		entries, err = st.Recent(ctx, opts.Limit)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to read journal", err)
	}
	return formatter.Success(historyOutput(entries))
}
