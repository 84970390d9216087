package component

import (
	"fmt"
	"sort"
)

// Data is the serialized shape of a component. Leaves carry their scalar in
// Value, composites a map[string]Data keyed by slot name.
type Data struct {
	Tag   string `json:"tag" yaml:"tag"`
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// IsComposite reports whether d describes a composite.
func (d Data) IsComposite() bool {
	_, ok := d.Value.(map[string]Data)
	return ok
}

// Children returns the child data of a composite, nil for a leaf.
func (d Data) Children() map[string]Data {
	m, _ := d.Value.(map[string]Data)
	return m
}

// Snapshot captures the serialized shape of c without consulting a registry.
func Snapshot(c Component) Data {
	d := Data{Tag: c.Type(), Name: c.Name()}
	p, ok := c.(Parent)
	if !ok {
		d.Value = c.Value()
		return d
	}
	fields := p.Fields()
	children := make(map[string]Data, len(fields))
	for _, f := range fields {
		children[f.Name] = Snapshot(p.Child(f.Name))
	}
	d.Value = children
	return d
}

// ParseData converts a generic decoded document, as produced by encoding/json
// or yaml.v3 when decoding into any, into Data. Nodes must carry "tag" and
// "value", "name" is optional and no other key is allowed.
func ParseData(v any) (Data, error) {
	return parseData(v, "")
}

func parseData(v any, path string) (Data, error) {
	switch d := v.(type) {
	case Data:
		return normalizeData(d, path)
	case *Data:
		if d == nil {
			return Data{}, malformed(path, "nil node", nil)
		}
		return normalizeData(*d, path)
	}

	m, ok := asMap(v)
	if !ok {
		return Data{}, malformed(path, fmt.Sprintf("expected an object, got %T", v), nil)
	}
	for k := range m {
		switch k {
		case "tag", "name", "value":
		default:
			return Data{}, malformed(path, fmt.Sprintf("unexpected key %q", k), nil)
		}
	}

	tag, ok := m["tag"].(string)
	if !ok || tag == "" {
		return Data{}, malformed(path, "missing tag", nil)
	}
	var name string
	if raw, present := m["name"]; present && raw != nil {
		if name, ok = raw.(string); !ok {
			return Data{}, malformed(path, fmt.Sprintf("name must be a string, got %T", raw), nil)
		}
	}
	value, present := m["value"]
	if !present || value == nil {
		return Data{}, malformed(path, "missing value", nil)
	}

	out := Data{Tag: tag, Name: name}
	if vm, isMap := asMap(value); isMap {
		children, err := parseChildren(vm, path)
		if err != nil {
			return Data{}, err
		}
		out.Value = children
		return out, nil
	}
	out.Value = value
	return out, nil
}

func normalizeData(d Data, path string) (Data, error) {
	if d.Tag == "" {
		return Data{}, malformed(path, "missing tag", nil)
	}
	switch v := d.Value.(type) {
	case nil:
		return Data{}, malformed(path, "missing value", nil)
	case map[string]Data:
		children := make(map[string]Data, len(v))
		for _, k := range sortedKeys(v) {
			child, err := normalizeData(v[k], joinPath(path, k))
			if err != nil {
				return Data{}, err
			}
			children[k] = child
		}
		d.Value = children
	default:
		if m, ok := asMap(v); ok {
			children, err := parseChildren(m, path)
			if err != nil {
				return Data{}, err
			}
			d.Value = children
		}
	}
	return d, nil
}

func parseChildren(m map[string]any, path string) (map[string]Data, error) {
	children := make(map[string]Data, len(m))
	for _, k := range sortedKeys(m) {
		child, err := parseData(m[k], joinPath(path, k))
		if err != nil {
			return nil, err
		}
		children[k] = child
	}
	return children, nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
