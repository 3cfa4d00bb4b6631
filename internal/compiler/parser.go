package compiler

import (
	"strings"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/kballard/go-shellquote"
)

// Parse converts a command block into a sequence of validated commands.
// Tokens are split shell-style (single and double quotes, '#' is literal) and
// consumed strictly left to right. Parsing is all-or-nothing: any error
// discards the commands parsed so far.
func Parse(raw string) (domain.Sequence, error) {
	tokens, err := shellquote.Split(raw)
	if err != nil {
		return nil, &domain.TokenizerError{Err: err}
	}

	parsed := domain.Sequence{}
	for i := 0; i < len(tokens); {
		name := tokens[i]
		i++

		desc, ok := Lookup(name)
		if !ok {
			return nil, &domain.UnknownCommandError{Token: name, Parsed: parsed}
		}

		values := make([]string, 0, len(desc.Params))
		for _, param := range desc.Params {
			if i >= len(tokens) {
				return nil, &domain.MissingArgumentError{Command: desc.Name, Param: param.Name, Parsed: parsed}
			}
			value, err := validate(desc, param, tokens[i])
			if err != nil {
				return nil, err
			}
			values = append(values, value)
			i++
		}
		parsed = append(parsed, desc.build(values))
	}
	return parsed, nil
}

// Build validates a single command given as named fields, as a host passes
// it when it does not use a command block.
func Build(name string, fields map[string]string) (domain.Command, error) {
	desc, ok := Lookup(name)
	if !ok {
		return nil, &domain.UnknownCommandError{Token: name}
	}

	values := make([]string, 0, len(desc.Params))
	for _, param := range desc.Params {
		raw, ok := fields[param.Name]
		if !ok {
			return nil, &domain.MissingArgumentError{Command: desc.Name, Param: param.Name}
		}
		value, err := validate(desc, param, raw)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return desc.build(values), nil
}

func validate(desc Descriptor, param ParamSpec, raw string) (string, error) {
	value, err := param.Validate(raw)
	if err != nil {
		return "", &domain.InvalidParamError{Command: desc.Name, Err: err.(*domain.ParamError)}
	}
	return value, nil
}

// Format renders a sequence back into a command block, one command per line,
// quoting values so that Parse(Format(seq)) yields seq again.
func Format(seq domain.Sequence) string {
	lines := make([]string, 0, len(seq))
	for _, c := range seq {
		words := []string{string(c.Name())}
		for _, a := range c.Args() {
			words = append(words, a.Value)
		}
		lines = append(lines, shellquote.Join(words...))
	}
	return strings.Join(lines, "\n")
}
