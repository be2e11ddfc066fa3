// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"slices"

	"go.yaml.in/yaml/v3"
)

// Object is a JSON object inside a document. Keys keep their original
// order; new keys are appended.
type Object struct {
	node *yaml.Node
}

// Keys returns the object's keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.node.Content)/2)
	for i := 0; i+1 < len(o.node.Content); i += 2 {
		keys = append(keys, o.node.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	return o.Lookup(key) != nil
}

// Lookup returns the value node for key, or nil.
func (o *Object) Lookup(key string) *yaml.Node {
	for i := 0; i+1 < len(o.node.Content); i += 2 {
		if o.node.Content[i].Value == key {
			return o.node.Content[i+1]
		}
	}
	return nil
}

// Text returns the scalar text stored under key. Strings, numbers, and
// booleans yield their literal text; null, missing, and non-scalar values
// yield "".
func (o *Object) Text(key string) string {
	n := o.Lookup(key)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == tagNull {
		return ""
	}
	return n.Value
}

// Strings returns the scalar items of the array stored under key. A
// non-empty string value is returned as a single item; anything else yields
// nil.
func (o *Object) Strings(key string) []string {
	n := o.Lookup(key)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind == yaml.ScalarNode && item.Tag != tagNull {
				out = append(out, item.Value)
			}
		}
		return out
	case yaml.ScalarNode:
		if n.Tag == tagStr && n.Value != "" {
			return []string{n.Value}
		}
	}
	return nil
}

// SetString stores value under key as a JSON string. It reports whether
// the object changed.
func (o *Object) SetString(key, value string) bool {
	if n := o.Lookup(key); n != nil && n.Kind == yaml.ScalarNode && n.Tag == tagStr && n.Value == value {
		return false
	}
	o.set(key, stringNode(value))
	return true
}

// SetStrings stores values under key as a JSON array of strings. It reports
// whether the object changed.
func (o *Object) SetStrings(key string, values []string) bool {
	if n := o.Lookup(key); n != nil && n.Kind == yaml.SequenceNode && slices.Equal(o.Strings(key), values) && len(n.Content) == len(values) {
		return false
	}
	o.set(key, stringsNode(values))
	return true
}

// EnsureString adds key with value when key is absent. It reports whether
// the object changed.
func (o *Object) EnsureString(key, value string) bool {
	if o.Has(key) {
		return false
	}
	o.set(key, stringNode(value))
	return true
}

// EnsureStrings adds key with values when key is absent. It reports whether
// the object changed.
func (o *Object) EnsureStrings(key string, values []string) bool {
	if o.Has(key) {
		return false
	}
	o.set(key, stringsNode(values))
	return true
}

func (o *Object) set(key string, value *yaml.Node) {
	for i := 0; i+1 < len(o.node.Content); i += 2 {
		if o.node.Content[i].Value == key {
			o.node.Content[i+1] = value
			return
		}
	}
	o.node.Content = append(o.node.Content, stringNode(key), value)
}
