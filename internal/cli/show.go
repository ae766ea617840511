package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	DB       string
	Full     bool
	Name     string
	Key      string
	MinTempo int
	MaxTempo int
}

// ScoreSummary is the JSON payload for one stored score.
type ScoreSummary struct {
	Record store.Record `json:"record"`
	Score  *ir.ScoreIR  `json:"score,omitempty"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [fingerprint | name]",
		Short: "List or inspect stored scores",
		Long: `With no argument, list stored scores in insertion order, narrowed
by any of --name, --key, --min-tempo and --max-tempo. With an
argument, show one score by fingerprint, or by name resolved to its
latest save. --full includes the note content.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			return runShow(opts, ref, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "score store path (required)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "include full note content")
	cmd.Flags().StringVar(&opts.Name, "name", "", "list only scores with this name")
	cmd.Flags().StringVar(&opts.Key, "key", "", "list only scores in this key")
	cmd.Flags().IntVar(&opts.MinTempo, "min-tempo", 0, "list only scores at or above this BPM")
	cmd.Flags().IntVar(&opts.MaxTempo, "max-tempo", 0, "list only scores at or below this BPM")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// listFilter builds the store filter from the list-mode flags. A zero
// --max-tempo means unbounded above.
func listFilter(opts *ShowOptions) store.Filter {
	var filters []store.Filter
	if opts.Name != "" {
		filters = append(filters, store.NameIs{Name: opts.Name})
	}
	if opts.Key != "" {
		filters = append(filters, store.KeyIs{Key: opts.Key})
	}
	if opts.MinTempo > 0 || opts.MaxTempo > 0 {
		max := opts.MaxTempo
		if max == 0 {
			max = 10000
		}
		filters = append(filters, store.TempoBetween{Min: opts.MinTempo, Max: max})
	}
	if len(filters) == 0 {
		return nil
	}
	return store.And{Filters: filters}
}

func runShow(opts *ShowOptions, ref string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer st.Close()
	ctx := context.Background()

	if ref == "" {
		records, err := st.Query(ctx, listFilter(opts))
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "list scores", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(records)
		}
		if len(records) == 0 {
			fmt.Fprintln(formatter.Writer, "No stored scores")
			return nil
		}
		for _, rec := range records {
			fmt.Fprintf(formatter.Writer, "%s  %-20s %3d bpm  %3d bars  %s\n",
				rec.Fingerprint[:12], rec.Name, rec.TempoBPM, rec.TotalBars, rec.CompileID)
		}
		return nil
	}

	score, rec, err := st.ScoreByFingerprint(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		score, rec, err = st.LatestByName(ctx, ref)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("load %s", ref), err)
	}

	summary := &ScoreSummary{Record: rec}
	if opts.Full {
		summary.Score = score
	}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "%s\n", rec.Name)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", rec.Fingerprint)
	fmt.Fprintf(formatter.Writer, "  compile id:  %s\n", rec.CompileID)
	fmt.Fprintf(formatter.Writer, "  key:         %s\n", rec.Key)
	fmt.Fprintf(formatter.Writer, "  tempo:       %d bpm\n", rec.TempoBPM)
	fmt.Fprintf(formatter.Writer, "  bars:        %d\n", rec.TotalBars)
	fmt.Fprintf(formatter.Writer, "  notes:       %d\n", len(score.Notes))
	if opts.Full {
		for _, n := range score.Notes {
			fmt.Fprintf(formatter.Writer, "  %6d +%-5d ch%-2d pitch %3d vel %3d\n",
				n.StartTicks, n.DurationTicks, n.Channel, n.Pitch, n.Velocity)
		}
	}
	return nil
}
