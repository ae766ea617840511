package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/pattern"
)

// CodeUnknownLibraryPattern flags a pattern ref that no loaded library
// file defines. Only reported when a library is given.
const CodeUnknownLibraryPattern = "UNKNOWN_LIBRARY_PATTERN"

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Patterns []string
}

// ValidationReport is the JSON payload for validate output.
type ValidationReport struct {
	Name   string          `json:"name"`
	Valid  bool            `json:"valid"`
	Issues []arrange.Issue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <arrangement.yaml>",
		Short: "Validate an arrangement without compiling",
		Long: `Validate an arrangement document: section and layer structure,
pattern references, harmony progressions, channels, and contracts.

All checks run to completion so one mistake does not hide the next.
When a pattern library is given with --patterns, refs are also checked
against it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Patterns, "patterns", "p", nil, "pattern library file (repeatable)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	a, err := LoadArrangement(path)
	if err != nil {
		return loadErrorOut(formatter, err)
	}

	result := arrange.Validate(a)
	if len(opts.Patterns) > 0 {
		lib, err := LoadLibrary(opts.Patterns)
		if err != nil {
			return loadErrorOut(formatter, err)
		}
		result.Issues = append(result.Issues, checkLibraryRefs(a, lib)...)
	}

	report := &ValidationReport{
		Name:   a.Name,
		Valid:  result.Valid(),
		Issues: result.Issues,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		if report.Valid {
			fmt.Fprintf(formatter.Writer, "✓ Arrangement %q is valid\n", a.Name)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ Arrangement %q has %d error(s)\n", a.Name, len(result.Errors()))
		}
		writeIssues(formatter, result.Issues)
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors())))
	}
	return nil
}

// checkLibraryRefs verifies every layer pattern ref against the loaded
// library, in deterministic order.
func checkLibraryRefs(a *arrange.Arrangement, lib *pattern.Library) []arrange.Issue {
	var issues []arrange.Issue

	layerNames := make([]string, 0, len(a.Layers))
	for name := range a.Layers {
		layerNames = append(layerNames, name)
	}
	sort.Strings(layerNames)

	for _, layerName := range layerNames {
		layer := a.Layers[layerName]
		aliases := make([]string, 0, len(layer.Patterns))
		for alias := range layer.Patterns {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)

		for _, alias := range aliases {
			ref := layer.Patterns[alias]
			if _, ok := lib.Get(ref.Ref); !ok {
				issues = append(issues, arrange.Issue{
					Severity: arrange.SeverityError,
					Code:     CodeUnknownLibraryPattern,
					Message:  fmt.Sprintf("pattern %q is not in the loaded library", ref.Ref),
					Location: fmt.Sprintf("layers/%s/patterns/%s", layerName, alias),
				})
			}
		}
	}
	return issues
}
