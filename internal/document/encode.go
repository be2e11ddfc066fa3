// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"
)

const indentUnit = "  "

// encoder renders a node tree in the layout of Python's
// json.dump(indent=2, ensure_ascii=False), which the norma files use.
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) value(n *yaml.Node, depth int) error {
	switch n.Kind {
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			e.buf.WriteString("{}")
			return nil
		}
		e.buf.WriteString("{\n")
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				e.buf.WriteString(",\n")
			}
			e.indent(depth + 1)
			if err := e.str(n.Content[i].Value); err != nil {
				return err
			}
			e.buf.WriteString(": ")
			if err := e.value(n.Content[i+1], depth+1); err != nil {
				return err
			}
		}
		e.buf.WriteByte('\n')
		e.indent(depth)
		e.buf.WriteByte('}')
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			e.buf.WriteString("[]")
			return nil
		}
		e.buf.WriteString("[\n")
		for i, item := range n.Content {
			if i > 0 {
				e.buf.WriteString(",\n")
			}
			e.indent(depth + 1)
			if err := e.value(item, depth+1); err != nil {
				return err
			}
		}
		e.buf.WriteByte('\n')
		e.indent(depth)
		e.buf.WriteByte(']')
	case yaml.ScalarNode:
		switch n.Tag {
		case tagStr:
			return e.str(n.Value)
		case tagInt, tagFloat, tagBool, tagNull:
			e.buf.WriteString(n.Value)
		default:
			return fmt.Errorf("unsupported scalar tag %s", n.Tag)
		}
	default:
		return fmt.Errorf("unsupported node kind %v", n.Kind)
	}
	return nil
}

func (e *encoder) indent(depth int) {
	e.buf.WriteString(strings.Repeat(indentUnit, depth))
}

// str writes s as a JSON string without HTML escaping, leaving non-ASCII
// characters as they are.
func (e *encoder) str(s string) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	e.buf.Write(unescapeLineSeparators(bytes.TrimSuffix(b.Bytes(), []byte("\n"))))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes json.Encoder
// always emits back into literal runes. Escaped backslashes are skipped so
// a literal "\\u2028" in the text is left alone.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if rest := b[i+1:]; bytes.HasPrefix(rest, []byte("u2028")) || bytes.HasPrefix(rest, []byte("u2029")) {
			r := '\u2028'
			if rest[4] == '9' {
				r = '\u2029'
			}
			out = utf8.AppendRune(out, r)
			i += 5
			continue
		}
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
