package host

import (
	"fmt"

	"github.com/aretw0/augtree/internal/compiler"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/aretw0/augtree/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// Params is the argument dictionary of one host invocation: either a single
// command with its named fields, or a raw command block.
type Params struct {
	Root     string  `json:"root,omitempty" mapstructure:"root"`
	LoadPath string  `json:"loadpath,omitempty" mapstructure:"loadpath"`
	Command  string  `json:"command,omitempty" mapstructure:"command"`
	Commands *string `json:"commands,omitempty" mapstructure:"commands"`
	Path     *string `json:"path,omitempty" mapstructure:"path"`
	Value    *string `json:"value,omitempty" mapstructure:"value"`
	Where    string  `json:"where,omitempty" mapstructure:"where"`
	Label    string  `json:"label,omitempty" mapstructure:"label"`
	Lens     string  `json:"lens,omitempty" mapstructure:"lens"`
	File     string  `json:"file,omitempty" mapstructure:"file"`
	Filter   string  `json:"filter,omitempty" mapstructure:"filter"`
}

// Spec is the argument contract of a host invocation.
var Spec = schema.Spec{
	Fields: map[string]schema.Field{
		"root":     {Type: schema.String()},
		"loadpath": {Type: schema.String()},
		"command":  {Type: schema.Choice(commandNames()...)},
		"commands": {Type: schema.String()},
		"path":     {Type: schema.String(), Aliases: []string{"name", "context"}},
		"value":    {Type: schema.String()},
		"where":    {Type: schema.Choice(string(domain.PositionBefore), string(domain.PositionAfter))},
		"label":    {Type: schema.String()},
		"lens":     {Type: schema.String()},
		"file":     {Type: schema.String()},
		"filter":   {Type: schema.Choice(string(domain.FilterInclude), string(domain.FilterExclude))},
	},
	MutuallyExclusive: [][]string{
		{"commands", "command"},
		{"commands", "value"},
		{"commands", "path"},
	},
	RequiredOneOf: [][]string{{"command", "commands"}},
}

func commandNames() []string {
	names := make([]string, 0, len(domain.CommandNames))
	for _, n := range domain.CommandNames {
		names = append(names, string(n))
	}
	return names
}

// Decode validates a raw argument dictionary against Spec and decodes it.
// Every problem is reported at once as a *schema.AggregateError.
func Decode(raw map[string]any) (Params, error) {
	args, err := Spec.Normalize(raw)
	if err != nil {
		return Params{}, err
	}

	var p Params
	if err := mapstructure.Decode(args, &p); err != nil {
		return Params{}, fmt.Errorf("failed to decode parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks the per-command requirements Spec cannot express.
func (p Params) Validate() error {
	if p.Commands != nil {
		return nil
	}

	var errs []error
	require := func(ok bool, field string) {
		if !ok {
			errs = append(errs, &schema.ValidationError{
				Key:    field,
				Reason: fmt.Sprintf("required by the %q command", p.Command),
			})
		}
	}

	switch domain.CommandName(p.Command) {
	case domain.CommandSet:
		require(p.Path != nil, "path")
		require(p.Value != nil, "value")
	case domain.CommandInsert:
		require(p.Label != "", "label")
		require(p.Path != nil, "path")
	case domain.CommandRemove, domain.CommandMatch:
		require(p.Path != nil, "path")
	case domain.CommandLensMatch:
		require(p.Path != nil, "path")
		require(p.Lens != "", "lens")
		require(p.File != "", "file")
	case domain.CommandTransform:
		require(p.Lens != "", "lens")
		require(p.Filter != "", "filter")
		require(p.File != "", "file")
	case domain.CommandLoad:
	default:
		errs = append(errs, &schema.ValidationError{
			Key:    "command",
			Reason: "one of the following is required: command, commands",
		})
	}

	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

// Single reports whether the invocation names one command rather than a block.
func (p Params) Single() bool { return p.Commands == nil }

// Sequence compiles the invocation into the commands to execute.
func (p Params) Sequence() (domain.Sequence, error) {
	if p.Commands != nil {
		return compiler.Parse(*p.Commands)
	}

	fields := make(map[string]string)
	switch domain.CommandName(p.Command) {
	case domain.CommandSet:
		fields["path"] = deref(p.Path)
		fields["value"] = deref(p.Value)
	case domain.CommandInsert:
		fields["label"] = p.Label
		fields["path"] = deref(p.Path)
		fields["where"] = p.Where
		if p.Where == "" {
			fields["where"] = string(domain.PositionBefore)
		}
	case domain.CommandTransform:
		fields["lens"] = p.Lens
		fields["filter"] = p.Filter
		fields["file"] = p.File
	case domain.CommandLensMatch:
		fields["lens"] = p.Lens
		fields["file"] = p.File
		fields["path"] = LensMatchPath(p.File, deref(p.Path))
	case domain.CommandRemove, domain.CommandMatch:
		fields["path"] = deref(p.Path)
	}

	cmd, err := compiler.Build(p.Command, fields)
	if err != nil {
		return nil, err
	}
	return domain.Sequence{cmd}, nil
}

// LensMatchPath is the tree path a single lensmatch queries: path relative
// to the node file is mounted at. A leading "/" on path makes it a
// descendant search.
func LensMatchPath(file, path string) string {
	return domain.FilesRoot + file + "/" + path
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
