package compiler

import "github.com/aretw0/augtree/pkg/domain"

// Descriptor is the schema of one command: its parameters in order and the
// constructor turning validated values into the typed command.
type Descriptor struct {
	Name   domain.CommandName
	Params []ParamSpec
	build  func(values []string) domain.Command
}

var pathParam = NonEmpty("path")

var descriptors = map[domain.CommandName]Descriptor{
	domain.CommandSet: {
		Name:   domain.CommandSet,
		Params: []ParamSpec{pathParam, Anything("value")},
		build: func(v []string) domain.Command {
			return domain.Set{Path: v[0], Value: v[1]}
		},
	},
	domain.CommandRemove: {
		Name:   domain.CommandRemove,
		Params: []ParamSpec{pathParam},
		build: func(v []string) domain.Command {
			return domain.Remove{Path: v[0]}
		},
	},
	domain.CommandMatch: {
		Name:   domain.CommandMatch,
		Params: []ParamSpec{pathParam},
		build: func(v []string) domain.Command {
			return domain.Match{Path: v[0]}
		},
	},
	domain.CommandLensMatch: {
		Name:   domain.CommandLensMatch,
		Params: []ParamSpec{pathParam, NonEmpty("lens"), NonEmpty("file")},
		build: func(v []string) domain.Command {
			return domain.LensMatch{Path: v[0], Lens: v[1], File: v[2]}
		},
	},
	domain.CommandInsert: {
		Name: domain.CommandInsert,
		Params: []ParamSpec{
			NonEmpty("label"),
			OneOf("where", string(domain.PositionBefore), string(domain.PositionAfter)),
			pathParam,
		},
		build: func(v []string) domain.Command {
			return domain.Insert{Label: v[0], Where: domain.Position(v[1]), Path: v[2]}
		},
	},
	domain.CommandTransform: {
		Name: domain.CommandTransform,
		Params: []ParamSpec{
			NonEmpty("lens"),
			OneOf("filter", string(domain.FilterInclude), string(domain.FilterExclude)),
			NonEmpty("file"),
		},
		build: func(v []string) domain.Command {
			return domain.Transform{Lens: v[0], Filter: domain.Filter(v[1]), File: v[2]}
		},
	},
	domain.CommandLoad: {
		Name: domain.CommandLoad,
		build: func([]string) domain.Command {
			return domain.Load{}
		},
	},
}

// Lookup returns the descriptor of a command.
func Lookup(name string) (Descriptor, bool) {
	d, ok := descriptors[domain.CommandName(name)]
	return d, ok
}
