package compiler

import (
	"slices"
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
)

// ParamSpec names a command parameter and validates its raw token.
type ParamSpec struct {
	Name     string
	Expected string
	accept   func(string) bool
}

// Validate returns the accepted value or a *domain.ParamError.
func (p ParamSpec) Validate(value string) (string, error) {
	if !p.accept(value) {
		return "", &domain.ParamError{Param: p.Name, Value: value, Expected: p.Expected}
	}
	return value, nil
}

// Anything accepts every value, including the empty string.
func Anything(name string) ParamSpec {
	return ParamSpec{
		Name:     name,
		Expected: "any string",
		accept:   func(string) bool { return true },
	}
}

// NonEmpty rejects the empty string.
func NonEmpty(name string) ParamSpec {
	return ParamSpec{
		Name:     name,
		Expected: "non-empty string",
		accept:   func(v string) bool { return v != "" },
	}
}

// OneOf accepts only the listed literals.
func OneOf(name string, values ...string) ParamSpec {
	return ParamSpec{
		Name:     name,
		Expected: "{" + strings.Join(values, ", ") + "}",
		accept:   func(v string) bool { return slices.Contains(values, v) },
	}
}
