package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfaughnan/barline/internal/compiler"
	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/store"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Patterns []string
	DB       string
}

// DiffReport is the JSON payload for diff output.
type DiffReport struct {
	A    string  `json:"a"` // fingerprint of the first score
	B    string  `json:"b"` // fingerprint of the second score
	Diff ir.Diff `json:"diff"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Structurally compare two compiled scores",
		Long: `Compare two scores as note multisets: added, removed, and unchanged
counts plus tempo/key/time-signature change flags.

Without --db, the arguments are arrangement files compiled against the
library given with --patterns. With --db, the arguments are fingerprints
of stored scores.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Patterns, "patterns", "p", nil, "pattern library file (repeatable)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "read scores from this store by fingerprint")

	return cmd
}

func runDiff(opts *DiffOptions, refA, refB string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scoreA, err := resolveDiffScore(formatter, opts, refA)
	if err != nil {
		return err
	}
	scoreB, err := resolveDiffScore(formatter, opts, refB)
	if err != nil {
		return err
	}

	report := &DiffReport{
		A:    scoreA.Fingerprint,
		B:    scoreB.Fingerprint,
		Diff: ir.DiffScores(scoreA, scoreB),
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	d := report.Diff
	if scoreA.Fingerprint == scoreB.Fingerprint {
		fmt.Fprintln(formatter.Writer, "Scores are identical")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "+%d added, -%d removed, %d unchanged\n", d.Added, d.Removed, d.Unchanged)
	if d.TempoChanged {
		fmt.Fprintln(formatter.Writer, "tempo changed")
	}
	if d.KeyChanged {
		fmt.Fprintln(formatter.Writer, "key changed")
	}
	if d.TimeSignatureChanged {
		fmt.Fprintln(formatter.Writer, "time signature changed")
	}
	return nil
}

func resolveDiffScore(formatter *OutputFormatter, opts *DiffOptions, ref string) (*ir.ScoreIR, error) {
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "open store", err)
		}
		defer st.Close()
		score, _, err := st.ScoreByFingerprint(context.Background(), ref)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("load %s", ref), err)
		}
		return score, nil
	}

	res, _, err := compileArrangement(formatter, ref, opts.Patterns, compiler.Options{})
	if err != nil {
		return nil, err
	}
	return res.Score, nil
}
