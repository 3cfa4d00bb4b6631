package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCommandsParse matches every error produced while parsing a command block.
var ErrCommandsParse = errors.New("commands parse error")

// ErrStore matches every error raised while executing commands against a tree store.
var ErrStore = errors.New("tree store error")

// ErrValidation is returned by tree stores when a write is rejected
// (ambiguous path, invalid label, path that cannot be created...).
var ErrValidation = errors.New("tree store validation failed")

// ErrNoMatch is returned by tree stores when a path that must match one node matches none.
var ErrNoMatch = errors.New("path does not match any node")

// ErrSaveFailed is returned by tree stores when persisting the tree fails.
var ErrSaveFailed = errors.New("failed to save tree")

// ErrPlaybookNotFound is returned when a stored command block does not exist.
var ErrPlaybookNotFound = errors.New("playbook not found")

// TokenizerError reports malformed quoting in a command block.
type TokenizerError struct {
	Err error
}

func (e *TokenizerError) Error() string {
	return fmt.Sprintf("Commands parser error (commands should be correctly quoted strings): %v", e.Err)
}

func (e *TokenizerError) Unwrap() error        { return e.Err }
func (e *TokenizerError) Is(target error) bool { return target == ErrCommandsParse }

// UnknownCommandError reports a token in command position that is not a command.
type UnknownCommandError struct {
	Token  string
	Parsed []Command
}

func (e *UnknownCommandError) Error() string {
	if len(e.Parsed) > 0 {
		return fmt.Sprintf("Incorrect command or previous command quoting:\ninvalid token: %s\nalready parsed:\n%s",
			e.Token, FormatCommands(e.Parsed))
	}
	return fmt.Sprintf("Incorrect command: %q", e.Token)
}

func (e *UnknownCommandError) Is(target error) bool { return target == ErrCommandsParse }

// MissingArgumentError reports a command whose parameters ran out of tokens.
type MissingArgumentError struct {
	Command CommandName
	Param   string
	Parsed  []Command
}

func (e *MissingArgumentError) Error() string {
	if len(e.Parsed) > 0 {
		return fmt.Sprintf("Missing argument %q in %q statement - already parsed statements:\n%s",
			e.Param, e.Command, FormatCommands(e.Parsed))
	}
	return fmt.Sprintf("Missing argument %q in %q statement", e.Param, e.Command)
}

func (e *MissingArgumentError) Is(target error) bool { return target == ErrCommandsParse }

// ParamError reports a parameter value rejected by its validator.
type ParamError struct {
	Param    string
	Value    string
	Expected string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("Given %q value: %q doesn't match expected value: %s", e.Param, e.Value, e.Expected)
}

func (e *ParamError) Is(target error) bool { return target == ErrCommandsParse }

// InvalidParamError wraps a ParamError with the command that owns the parameter.
type InvalidParamError struct {
	Command CommandName
	Err     *ParamError
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("Error parsing parameter value of command %q:\n%s", e.Command, e.Err)
}

func (e *InvalidParamError) Unwrap() error        { return e.Err }
func (e *InvalidParamError) Is(target error) bool { return target == ErrCommandsParse }

// DiagnosticField is one attribute of a store error report.
type DiagnosticField struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Diagnostic is a single error report found under the store's error subtree.
type Diagnostic struct {
	Path   string            `json:"path"`
	Type   string            `json:"type,omitempty"`
	Fields []DiagnosticField `json:"fields"`
}

// Diagnostics is the store's own explanation of a failure.
// ErrorType is the category the reports were filtered by, if any.
type Diagnostics struct {
	ErrorType string       `json:"error_type,omitempty"`
	Reports   []Diagnostic `json:"reports,omitempty"`
}

func (d Diagnostics) String() string {
	if len(d.Reports) > 0 {
		blocks := make([]string, 0, len(d.Reports))
		for _, r := range d.Reports {
			lines := make([]string, 0, len(r.Fields))
			for _, f := range r.Fields {
				lines = append(lines, fmt.Sprintf("%s: %s", f.Path, f.Value))
			}
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
		return "Augeas has reported following problems (it's possible that some of them are unrelated to your action):\n\n" +
			strings.Join(blocks, "\n\n")
	}
	if d.ErrorType != "" {
		return fmt.Sprintf("Augeas hasn't provided any additional info for action type (%s)", d.ErrorType)
	}
	return "Augeas hasn't provided any additional info"
}

// CommandError reports a command the store failed to execute.
type CommandError struct {
	Command     Command
	Diagnostics Diagnostics
	Err         error
}

func (e *CommandError) Error() string {
	params := make([]string, 0, len(e.Command.Args()))
	for _, a := range e.Command.Args() {
		params = append(params, fmt.Sprintf("%s=%q", a.Name, a.Value))
	}
	return fmt.Sprintf("Augeas command execution error (command=%s, params=%s): %v. %s",
		e.Command.Name(), strings.Join(params, ", "), e.Err, e.Diagnostics)
}

func (e *CommandError) Unwrap() error        { return e.Err }
func (e *CommandError) Is(target error) bool { return target == ErrStore }

// SetError reports a rejected set. Its diagnostics are filtered to put_failed reports.
type SetError struct {
	CommandError
}

// InsertError reports a rejected ins.
type InsertError struct {
	CommandError
}

// SaveError reports a failed commit.
type SaveError struct {
	Diagnostics Diagnostics
	Err         error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("Augeas refused to save changes: %v. %s", e.Err, e.Diagnostics)
}

func (e *SaveError) Unwrap() error        { return e.Err }
func (e *SaveError) Is(target error) bool { return target == ErrStore }
