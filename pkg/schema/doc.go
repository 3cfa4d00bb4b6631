// Package schema validates the argument dictionaries hosts pass to augtree.
//
// A Spec names every accepted field with its Type, optional aliases and
// default, plus cross-field constraints:
//
//	spec := schema.Spec{
//	    Fields: map[string]schema.Field{
//	        "command": {Type: schema.Choice("set", "rm")},
//	        "path":    {Type: schema.String(), Aliases: []string{"name"}},
//	        "value":   {Type: schema.String()},
//	    },
//	    RequiredTogether: [][]string{{"command", "path"}},
//	}
//
//	args, err := spec.Normalize(map[string]any{"command": "set", "name": "/files/a"})
//
// Normalize resolves aliases, rejects unknown fields, coerces scalar values
// and reports every failure at once as an *AggregateError of *ValidationError.
package schema
