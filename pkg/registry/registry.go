package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// All returns every node and credential description.
func All() []NodeDescription {
	return []NodeDescription{Rynko(), RynkoTrigger(), RynkoAPI()}
}

// Lookup finds a description by name.
func Lookup(name string) (NodeDescription, bool) {
	for _, n := range All() {
		if n.Name == name {
			return n, true
		}
	}
	return NodeDescription{}, false
}

// WriteJSON writes descriptions as an indented JSON array.
func WriteJSON(w io.Writer, nodes []NodeDescription) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}

// LoadNodes reads descriptions previously written by WriteJSON.
func LoadNodes(path string) ([]NodeDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nodes []NodeDescription
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("invalid node descriptions in %s: %w", path, err)
	}
	return nodes, nil
}

// ApplyDefaults returns a copy of params with the default of every visible,
// unset top-level property filled in. Properties are evaluated in
// declaration order so later display conditions see earlier defaults.
func ApplyDefaults(node NodeDescription, params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, p := range node.Properties {
		if _, set := out[p.Name]; set {
			continue
		}
		if p.Visible(out) {
			out[p.Name] = p.Default
		}
	}
	return out
}

// ValidateParameters checks params against the node's static option sets
// and required flags. It returns one message per problem, sorted.
func ValidateParameters(node NodeDescription, params map[string]interface{}) []string {
	full := ApplyDefaults(node, params)
	var problems []string

	for _, p := range node.Properties {
		if !p.Visible(full) {
			continue
		}
		v, set := full[p.Name]

		if p.Required {
			if s, ok := v.(string); !set || v == nil || (ok && s == "") {
				problems = append(problems, fmt.Sprintf("%s: required", p.Name))
				continue
			}
		}

		if p.Type == TypeOptions && len(p.Options) > 0 && set {
			s, _ := v.(string)
			if !contains(p.OptionValues(), s) {
				problems = append(problems, fmt.Sprintf("%s: %v is not one of %v", p.Name, v, p.OptionValues()))
			}
		}
	}

	sort.Strings(problems)
	return problems
}

// SchemaOptions controls JSONSchema output.
type SchemaOptions struct {
	// Enums restricts options properties to their static option values.
	Enums bool
	// Items adds the "items" array and "continueOnFail" flag carried by
	// action job variables.
	Items bool
}

// JSONSchema renders a JSON schema (as a Go value) for the node's
// parameters. Properties sharing a name are merged; an enum is only kept
// when every declaration of the name has static options.
func JSONSchema(node NodeDescription, opts SchemaOptions) map[string]interface{} {
	props := propertiesSchema(node.Properties, opts.Enums, false)

	schema := map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      node.DisplayName,
		"type":       "object",
		"properties": props,
	}

	if opts.Items {
		itemProps := make(map[string]interface{}, len(props))
		for k, v := range props {
			itemProps[k] = v
		}
		props["continueOnFail"] = map[string]interface{}{"type": "boolean"}
		props["items"] = map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":       "object",
				"properties": itemProps,
			},
		}
	}

	return schema
}

func propertiesSchema(properties []Property, enums, lenientScalars bool) map[string]interface{} {
	out := make(map[string]interface{})
	enumSets := make(map[string][]string)
	noEnum := make(map[string]bool)

	for _, p := range properties {
		if _, seen := out[p.Name]; !seen {
			out[p.Name] = propertySchema(p, enums, lenientScalars)
		}
		if p.Type == TypeOptions {
			if len(p.Options) == 0 {
				noEnum[p.Name] = true
			} else {
				for _, v := range p.OptionValues() {
					if !contains(enumSets[p.Name], v) {
						enumSets[p.Name] = append(enumSets[p.Name], v)
					}
				}
			}
		}
	}

	if enums {
		for name, values := range enumSets {
			if noEnum[name] {
				continue
			}
			out[name] = map[string]interface{}{"type": "string", "enum": toInterfaces(values)}
		}
	}
	return out
}

func propertySchema(p Property, enums, lenientScalars bool) map[string]interface{} {
	switch p.Type {
	case TypeBoolean:
		return map[string]interface{}{"type": "boolean"}
	case TypeCollection:
		return map[string]interface{}{
			"type":       "object",
			"properties": propertiesSchema(p.Collection, enums, false),
		}
	case TypeFixedCollection:
		groups := make(map[string]interface{}, len(p.Groups))
		for _, g := range p.Groups {
			entry := map[string]interface{}{
				"type":       "object",
				"properties": propertiesSchema(g.Values, enums, true),
			}
			if p.MultipleValues {
				groups[g.Name] = map[string]interface{}{"type": "array", "items": entry}
			} else {
				groups[g.Name] = entry
			}
		}
		return map[string]interface{}{"type": "object", "properties": groups}
	default:
		if lenientScalars {
			return map[string]interface{}{"type": []interface{}{"string", "number", "boolean", "null"}}
		}
		return map[string]interface{}{"type": "string"}
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
