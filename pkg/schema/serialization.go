package schema

import "encoding/json"

type fieldJSON struct {
	Type     string   `json:"type"`
	Aliases  []string `json:"aliases,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Default  any      `json:"default,omitempty"`
	Required bool     `json:"required,omitempty"`
}

type specJSON struct {
	Fields            map[string]fieldJSON `json:"fields"`
	MutuallyExclusive [][]string           `json:"mutually_exclusive,omitempty"`
	RequiredTogether  [][]string           `json:"required_together,omitempty"`
	RequiredOneOf     [][]string           `json:"required_one_of,omitempty"`
}

// MarshalJSON describes the arguments for clients, with each type by name.
func (s Spec) MarshalJSON() ([]byte, error) {
	out := specJSON{
		Fields:            make(map[string]fieldJSON, len(s.Fields)),
		MutuallyExclusive: s.MutuallyExclusive,
		RequiredTogether:  s.RequiredTogether,
		RequiredOneOf:     s.RequiredOneOf,
	}
	for name, f := range s.Fields {
		fj := fieldJSON{
			Type:     f.Type.Name(),
			Aliases:  f.Aliases,
			Default:  f.Default,
			Required: f.Required,
		}
		if c, ok := f.Type.(*ChoiceType); ok {
			fj.Type = "str"
			fj.Choices = c.Choices()
		}
		out.Fields[name] = fj
	}
	return json.Marshal(out)
}
