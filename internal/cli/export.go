package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfaughnan/barline/internal/compiler"
	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/smf"
	"github.com/tfaughnan/barline/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Patterns []string
	Output   string
	DB       string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <arrangement.yaml | fingerprint | name>",
		Short: "Export a score as a Standard MIDI File",
		Long: `Render a score to a .mid file.

Without --db, the argument is an arrangement file compiled against the
library given with --patterns. With --db, the argument is a stored
score's fingerprint, or a name resolved to its latest save.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Patterns, "patterns", "p", nil, "pattern library file (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output .mid path (required)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "read the score from this store")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(opts *ExportOptions, ref string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	score, err := resolveExportScore(formatter, opts, ref)
	if err != nil {
		return err
	}

	data, err := smf.Encode(score)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "encode", err)
	}
	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "write midi file", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"fingerprint": score.Fingerprint,
			"output":      opts.Output,
			"bytes":       len(data),
		})
	}
	fmt.Fprintf(formatter.Writer, "Wrote %s (%d bytes, fingerprint %s)\n", opts.Output, len(data), score.Fingerprint)
	return nil
}

func resolveExportScore(formatter *OutputFormatter, opts *ExportOptions, ref string) (*ir.ScoreIR, error) {
	if opts.DB == "" {
		res, _, err := compileArrangement(formatter, ref, opts.Patterns, compiler.Options{})
		if err != nil {
			return nil, err
		}
		return res.Score, nil
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()

	ctx := context.Background()
	score, _, err := st.ScoreByFingerprint(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		score, _, err = st.LatestByName(ctx, ref)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("load %s", ref), err)
	}
	return score, nil
}
