// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotation extracts the trailing "*Nota: ... *" block from an
// infraction description and splits it into a note and responsibility tags.
//
// A block has the shape
//
//	<description>\n\n*Nota: <note>[ Responsable: <parties>]*
//
// and must close the description. Detection is literal substring search;
// no regular expressions are involved.
package annotation

import (
	"strings"

	"github.com/pdiddy/refine-normas/pkg/types"
)

const (
	blockPrefix       = "\n\n*Nota: "
	blockSuffix       = "*"
	responsableMarker = "Responsable: "
)

// Annotation holds the note and responsibility tags of an infraction record.
type Annotation struct {
	Note         string
	Responsables []string
}

// HasNote reports whether the note is non-empty.
func (a Annotation) HasNote() bool { return a.Note != "" }

// HasResponsables reports whether at least one tag is set.
func (a Annotation) HasResponsables() bool { return len(a.Responsables) > 0 }

// Block is the parsed content of an annotation block.
type Block struct {
	// Body is the raw text between "*Nota: " and the closing "*".
	Body string

	// Note is the body without the responsibility segment, trimmed, with one
	// trailing period removed when a responsibility segment was present.
	Note string

	// Responsible is the trimmed text after "Responsable: ". Empty when
	// HasResponsible is false.
	Responsible string

	// HasResponsible reports whether the body carried a "Responsable: " marker.
	HasResponsible bool
}

// Options configures Extract.
type Options struct {
	Policy     types.Policy
	Vocabulary Vocabulary
}

// Result is the outcome of Extract.
type Result struct {
	Description  string
	Note         string
	Responsables []string

	// Matched reports whether an annotation block was found and stripped.
	Matched bool
}

// Split locates an annotation block at the end of description. It returns
// the description before the block, trimmed, and the block body. ok is
// false when description does not end with a block.
func Split(description string) (cleaned, body string, ok bool) {
	start := strings.Index(description, blockPrefix)
	if start < 0 {
		return description, "", false
	}

	// The closing "*" may be followed by a single newline.
	end := len(description)
	if strings.HasSuffix(description, "\n") {
		end--
	}
	bodyStart := start + len(blockPrefix)
	if end-len(blockSuffix) < bodyStart || !strings.HasSuffix(description[:end], blockSuffix) {
		return description, "", false
	}

	return strings.TrimSpace(description[:start]), description[bodyStart : end-len(blockSuffix)], true
}

// ParseBody splits an annotation body into its note and responsibility
// segment. The "Responsable: " marker is only recognized on the body's last
// line.
func ParseBody(body string) Block {
	b := Block{Body: body}

	last := strings.TrimSuffix(body, "\n")
	lineStart := strings.LastIndexByte(last, '\n') + 1
	i := strings.Index(body[lineStart:], responsableMarker)
	if i < 0 {
		b.Note = strings.TrimSpace(body)
		return b
	}

	i += lineStart
	b.HasResponsible = true
	b.Responsible = strings.TrimSpace(body[i+len(responsableMarker):])
	b.Note = strings.TrimSuffix(strings.TrimSpace(body[:i]), ".")
	return b
}

// Extract strips the annotation block from description and combines the
// derived note and tags with existing according to opts.Policy.
//
// Without a block the description is returned unchanged along with the
// existing values. Under PolicyPreserve the description is cleaned even when
// both existing fields are set; the derived values are then discarded.
func Extract(description string, existing Annotation, opts Options) Result {
	res := Result{
		Description:  description,
		Note:         existing.Note,
		Responsables: existing.Responsables,
	}

	cleaned, body, ok := Split(description)
	if !ok {
		return res
	}
	res.Description = cleaned
	res.Matched = true

	block := ParseBody(body)
	var derived []string
	if block.HasResponsible {
		derived = opts.Vocabulary.Match(block.Responsible)
	}

	switch opts.Policy {
	case types.PolicyPreserve:
		if !existing.HasNote() {
			res.Note = block.Note
		}
		if !existing.HasResponsables() {
			res.Responsables = nonNil(derived)
		}
	default:
		res.Note = block.Note
		if block.HasResponsible {
			res.Responsables = nonNil(derived)
		}
	}
	return res
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
