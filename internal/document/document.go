// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document loads and saves norma JSON documents without losing key
// order, unknown fields, or number formatting.
//
// A document is held as a yaml.Node tree. Parsing goes through
// encoding/json's tokenizer so only strict JSON is accepted; output is
// 2-space indented JSON with non-ASCII text written literally.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/refine-normas/pkg/types"
)

// ErrMalformed is returned when a document is not valid JSON or its top
// level is not an object.
var ErrMalformed = errors.New("malformed document")

const (
	tagStr   = "!!str"
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagBool  = "!!bool"
	tagNull  = "!!null"
	tagMap   = "!!map"
	tagSeq   = "!!seq"
)

// Document is a parsed norma file.
type Document struct {
	*Object
}

// Load reads and parses the JSON document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse builds a Document from JSON bytes.
func Parse(data []byte) (*Document, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	node, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformed)
	}
	return &Document{Object: &Object{node: node}}, nil
}

// Infractions returns the object records in the infracciones array, in
// order. Non-object entries are skipped. The result is empty when the
// field is missing or not an array.
func (d *Document) Infractions() []*Object {
	seq := d.Lookup(types.FieldInfractions)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*Object, 0, len(seq.Content))
	for _, n := range seq.Content {
		if n.Kind == yaml.MappingNode {
			out = append(out, &Object{node: n})
		}
	}
	return out
}

// Marshal renders the document as indented JSON followed by a newline.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the document as indented JSON followed by a newline.
func (d *Document) Encode(w io.Writer) error {
	e := &encoder{}
	if err := e.value(d.node, 0); err != nil {
		return err
	}
	e.buf.WriteByte('\n')
	_, err := w.Write(e.buf.Bytes())
	return err
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// decodeValue reads one JSON value from dec and returns it as a node.
func decodeValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			n := &yaml.Node{Kind: yaml.MappingNode, Tag: tagMap}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				setMapValue(n, key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", v)
	case string:
		return stringNode(v), nil
	case json.Number:
		tag := tagInt
		if strings.ContainsAny(v.String(), ".eE") {
			tag = tagFloat
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String()}, nil
	case bool:
		val := "false"
		if v {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagBool, Value: val}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagNull, Value: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// setMapValue appends key to the mapping, or replaces the value of an
// earlier occurrence of key in place. A repeated key keeps its first
// position and its last value.
func setMapValue(n *yaml.Node, key string, val *yaml.Node) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			n.Content[i+1] = val
			return
		}
	}
	n.Content = append(n.Content, stringNode(key), val)
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: s}
}

func stringsNode(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: tagSeq}
	for _, v := range values {
		n.Content = append(n.Content, stringNode(v))
	}
	return n
}
