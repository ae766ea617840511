package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/tfaughnan/barline/internal/arrange"
	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/pattern"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E001" // generic/unknown error
	ErrCodeNotFound    = "E002" // path not found
	ErrCodeParse       = "E003" // document parse or structural error
	ErrCodeSchema      = "E004" // schema version mismatch
	ErrCodeWriteFailed = "E005" // file write error
	ErrCodeCompile     = "E101" // compile configuration error
	ErrCodeStore       = "E201" // score store error
)

// LoadError is a document loading failure with a code and source path.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadArrangement reads and parses one arrangement document.
func LoadArrangement(path string) (*arrange.Arrangement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
	}
	a, err := arrange.ParseArrangement(data)
	if err != nil {
		return nil, &LoadError{Code: classifyParseError(err), Path: path, Message: err.Error()}
	}
	return a, nil
}

// LoadLibrary reads one or more pattern library files and merges them.
// Duplicate pattern names across files are an error.
func LoadLibrary(paths []string) (*pattern.Library, error) {
	if len(paths) == 0 {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "no pattern library given (use --patterns)"}
	}

	merged := &pattern.Library{Patterns: map[string]*pattern.Pattern{}}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}
		}
		lib, err := pattern.ParseLibrary(data)
		if err != nil {
			return nil, &LoadError{Code: classifyParseError(err), Path: path, Message: err.Error()}
		}
		for name, p := range lib.Patterns {
			if _, exists := merged.Patterns[name]; exists {
				return nil, &LoadError{
					Code:    ErrCodeParse,
					Path:    path,
					Message: fmt.Sprintf("pattern %q defined in more than one library file", name),
				}
			}
			merged.Patterns[name] = p
		}
	}
	return merged, nil
}

// classifyParseError maps parse failures to CLI error codes.
func classifyParseError(err error) string {
	var sve *ir.SchemaVersionError
	if errors.As(err, &sve) {
		return ErrCodeSchema
	}
	return ErrCodeParse
}

// loadErrorOut reports a load failure through the formatter and returns
// the command-level exit error.
func loadErrorOut(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, loadErr.Error(), nil)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, err.Error(), nil)
}
