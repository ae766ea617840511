package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/compiler"
	"github.com/tfaughnan/barline/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Patterns       []string
	Output         string // canonical IR JSON file
	DB             string // score store path
	HumanizeSeed   int64
	TimingJitter   int
	VelocityJitter int
}

// CompileReport is the JSON payload for a successful compile.
type CompileReport struct {
	Name        string            `json:"name"`
	Fingerprint string            `json:"fingerprint"`
	TotalBars   int               `json:"total_bars"`
	TotalEvents int               `json:"total_events"`
	Layers      []string          `json:"layers"`
	Sections    []string          `json:"sections"`
	Issues      []compiler.Issue  `json:"issues,omitempty"`
	Validation  []arrange.Issue   `json:"validation,omitempty"`
	CompileID   string            `json:"compile_id,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <arrangement.yaml>",
		Short: "Compile an arrangement to a canonical score",
		Long: `Compile an arrangement document against a pattern library.

The compiler validates the arrangement, resolves patterns and harmony,
and produces a canonical, fingerprinted score. Validation errors abort
the compile; musical warnings are reported alongside the score.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Patterns, "patterns", "p", nil, "pattern library file (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical score JSON to file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "save the compiled score to this store")
	cmd.Flags().Int64Var(&opts.HumanizeSeed, "humanize-seed", 0, "seed for humanization jitter")
	cmd.Flags().IntVar(&opts.TimingJitter, "timing-jitter", 0, "max timing jitter in ticks")
	cmd.Flags().IntVar(&opts.VelocityJitter, "velocity-jitter", 0, "max velocity jitter")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	res, report, err := compileArrangement(formatter, path, opts.Patterns, opts.compileOptions())
	if err != nil {
		return err
	}

	if opts.Output != "" {
		data, err := res.Score.CanonicalJSON()
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "marshal score", err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "write score", err)
		}
	}

	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "open store", err)
		}
		defer st.Close()
		rec, err := st.SaveScore(context.Background(), res.Score)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "save score", err)
		}
		report.CompileID = rec.CompileID
		formatter.VerboseLog("saved %s as compile %s", rec.Fingerprint, rec.CompileID)
	}

	return outputCompileSuccess(formatter, report, opts.Output)
}

func (opts *CompileOptions) compileOptions() compiler.Options {
	var copts compiler.Options
	if opts.TimingJitter > 0 || opts.VelocityJitter > 0 {
		copts.Humanize = &compiler.Humanize{
			Seed:              opts.HumanizeSeed,
			TimingJitterTicks: opts.TimingJitter,
			VelocityJitter:    opts.VelocityJitter,
		}
	}
	return copts
}

// compileArrangement is the shared load-validate-compile path used by
// compile, diff, and export.
func compileArrangement(formatter *OutputFormatter, path string, patternPaths []string, copts compiler.Options) (*compiler.Result, *CompileReport, error) {
	a, err := LoadArrangement(path)
	if err != nil {
		return nil, nil, loadErrorOut(formatter, err)
	}
	lib, err := LoadLibrary(patternPaths)
	if err != nil {
		return nil, nil, loadErrorOut(formatter, err)
	}

	formatter.VerboseLog("loaded %q: %d section(s), %d layer(s), %d pattern(s)",
		a.Name, len(a.Sections), len(a.Layers), len(lib.Patterns))

	validation := arrange.Validate(a)
	validation.Issues = append(validation.Issues, checkLibraryRefs(a, lib)...)
	if !validation.Valid() {
		_ = formatter.Error(ErrCodeCompile, fmt.Sprintf("arrangement %q failed validation", a.Name), validation.Errors())
		if formatter.Format != "json" {
			writeIssues(formatter, validation.Issues)
		}
		return nil, nil, NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(validation.Errors())))
	}

	res, err := compiler.Compile(a, lib, copts)
	if err != nil {
		_ = formatter.Error(ErrCodeCompile, err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "compile", err)
	}

	report := &CompileReport{
		Name:        res.Score.Name,
		Fingerprint: res.Score.Fingerprint,
		TotalBars:   res.Score.TotalBars,
		TotalEvents: res.TotalEvents,
		Layers:      res.LayersCompiled,
		Sections:    res.SectionsCompiled,
		Issues:      res.Issues,
		Validation:  validation.Issues,
	}
	return res, report, nil
}

func outputCompileSuccess(formatter *OutputFormatter, report *CompileReport, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %q: %d bar(s), %d note(s)\n",
		report.Name, report.TotalBars, report.TotalEvents)
	fmt.Fprintf(formatter.Writer, "  fingerprint: %s\n", report.Fingerprint)
	fmt.Fprintf(formatter.Writer, "  sections: %v\n", report.Sections)
	fmt.Fprintf(formatter.Writer, "  layers: %v\n", report.Layers)

	for _, issue := range report.Issues {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Severity, issue.Message)
	}
	for _, issue := range report.Validation {
		if issue.Severity != arrange.SeverityError {
			fmt.Fprintf(formatter.Writer, "  %s [%s]: %s\n", issue.Severity, issue.Code, issue.Message)
		}
	}

	if report.CompileID != "" {
		fmt.Fprintf(formatter.Writer, "  compile id: %s\n", report.CompileID)
	}
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical score to %s\n", outputFile)
	}
	return nil
}

func writeIssues(formatter *OutputFormatter, issues []arrange.Issue) {
	for _, issue := range issues {
		loc := ""
		if issue.Location != "" {
			loc = " at " + issue.Location
		}
		fmt.Fprintf(formatter.Writer, "  %s [%s]: %s%s\n", issue.Severity, issue.Code, issue.Message, loc)
	}
}
