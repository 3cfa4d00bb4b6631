package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "str", "bool").
	Name() string
	// Convert checks value and returns it in its canonical Go form.
	Convert(value any) (any, error)
}

// StringType accepts strings and scalars, which are rendered as strings.
type StringType struct{}

func (t *StringType) Name() string { return "str" }

func (t *StringType) Convert(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return nil, fmt.Errorf("expected string, got %T", value)
	}
}

// BoolType accepts booleans and their usual string spellings.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Convert(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "yes", "on", "true", "1":
			return true, nil
		case "no", "off", "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a valid boolean", v)
	default:
		return nil, fmt.Errorf("expected bool, got %T", value)
	}
}

// ChoiceType accepts one of a fixed set of strings.
type ChoiceType struct {
	choices []string
}

func (t *ChoiceType) Name() string {
	return "str{" + strings.Join(t.choices, ",") + "}"
}

func (t *ChoiceType) Convert(value any) (any, error) {
	s, err := String().Convert(value)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(t.choices, s.(string)) {
		return nil, fmt.Errorf("value of %s must be one of: %s", s, strings.Join(t.choices, ", "))
	}
	return s, nil
}

// Choices returns the accepted values.
func (t *ChoiceType) Choices() []string { return slices.Clone(t.choices) }

// CustomType applies a user-defined conversion function.
type CustomType struct {
	name    string
	convert func(any) (any, error)
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Convert(value any) (any, error) {
	return t.convert(value)
}

// String creates a string type.
func String() Type { return &StringType{} }

// Bool creates a boolean type.
func Bool() Type { return &BoolType{} }

// Choice creates a type accepting only the given values.
func Choice(values ...string) Type {
	return &ChoiceType{choices: values}
}

// Custom creates a type with a user-defined conversion.
func Custom(name string, convert func(any) (any, error)) Type {
	return &CustomType{name: name, convert: convert}
}
