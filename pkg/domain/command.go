package domain

import "strings"

// CommandName identifies a command of the tree-edit language.
type CommandName string

const (
	CommandSet       CommandName = "set"
	CommandRemove    CommandName = "rm"
	CommandMatch     CommandName = "match"
	CommandLensMatch CommandName = "lensmatch"
	CommandInsert    CommandName = "ins"
	CommandTransform CommandName = "transform"
	CommandLoad      CommandName = "load"
)

// CommandNames lists every command in the order they are documented.
var CommandNames = []CommandName{
	CommandSet,
	CommandRemove,
	CommandMatch,
	CommandLensMatch,
	CommandInsert,
	CommandTransform,
	CommandLoad,
}

// Position places an inserted node relative to its anchor.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// Filter decides whether a transform includes or excludes its file.
type Filter string

const (
	FilterInclude Filter = "incl"
	FilterExclude Filter = "excl"
)

// Arg is a single named command parameter.
type Arg struct {
	Name  string
	Value string
}

// Command is a parsed, validated command. The set of implementations is closed:
// Set, Remove, Match, LensMatch, Insert, Transform and Load.
type Command interface {
	// Name returns the command keyword.
	Name() CommandName
	// Args returns the parameters in schema order.
	Args() []Arg

	command()
}

// Sequence is an ordered list of commands. Order is execution order.
type Sequence []Command

// Set writes Value at Path when the current value differs.
type Set struct {
	Path  string
	Value string
}

func (Set) Name() CommandName { return CommandSet }
func (c Set) Args() []Arg {
	return []Arg{{"path", c.Path}, {"value", c.Value}}
}
func (Set) command() {}

// Remove deletes every node matching Path.
type Remove struct {
	Path string
}

func (Remove) Name() CommandName { return CommandRemove }
func (c Remove) Args() []Arg    { return []Arg{{"path", c.Path}} }
func (Remove) command()         {}

// Match queries every node matching Path.
type Match struct {
	Path string
}

func (Match) Name() CommandName { return CommandMatch }
func (c Match) Args() []Arg    { return []Arg{{"path", c.Path}} }
func (Match) command()         {}

// LensMatch loads File through Lens and then queries Path.
type LensMatch struct {
	Path string
	Lens string
	File string
}

func (LensMatch) Name() CommandName { return CommandLensMatch }
func (c LensMatch) Args() []Arg {
	return []Arg{{"path", c.Path}, {"lens", c.Lens}, {"file", c.File}}
}
func (LensMatch) command() {}

// Insert creates a sibling labelled Label before or after Path.
type Insert struct {
	Label string
	Where Position
	Path  string
}

func (Insert) Name() CommandName { return CommandInsert }
func (c Insert) Args() []Arg {
	return []Arg{{"label", c.Label}, {"where", string(c.Where)}, {"path", c.Path}}
}
func (Insert) command() {}

// Before reports whether the new node goes in front of Path.
func (c Insert) Before() bool { return c.Where == PositionBefore }

// Transform registers File to be handled by Lens.
type Transform struct {
	Lens   string
	Filter Filter
	File   string
}

func (Transform) Name() CommandName { return CommandTransform }
func (c Transform) Args() []Arg {
	return []Arg{{"lens", c.Lens}, {"filter", string(c.Filter)}, {"file", c.File}}
}
func (Transform) command() {}

// Exclude reports whether the file is excluded from loading.
func (c Transform) Exclude() bool { return c.Filter == FilterExclude }

// Load makes the store (re)read its registered files.
type Load struct{}

func (Load) Name() CommandName { return CommandLoad }
func (Load) Args() []Arg       { return nil }
func (Load) command()          {}

// EmptyValue is how empty parameter values are rendered in command text.
const EmptyValue = `""`

// Text renders a command as its keyword followed by its parameter values,
// space separated. Empty values are rendered as "". The output is meant for
// humans and is not guaranteed to parse back.
func Text(c Command) string {
	parts := []string{string(c.Name())}
	for _, a := range c.Args() {
		if a.Value == "" {
			parts = append(parts, EmptyValue)
			continue
		}
		parts = append(parts, a.Value)
	}
	return strings.Join(parts, " ")
}

// FormatCommands renders one command per line using Text.
func FormatCommands(cmds []Command) string {
	lines := make([]string, 0, len(cmds))
	for _, c := range cmds {
		lines = append(lines, Text(c))
	}
	return strings.Join(lines, "\n")
}

// Mutates reports whether the command kind can change the tree.
func Mutates(c Command) bool {
	switch c.(type) {
	case Set, Remove, Insert:
		return true
	}
	return false
}
