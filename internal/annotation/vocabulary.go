// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"strings"

	"github.com/pdiddy/refine-normas/pkg/types"
)

// Vocabulary is an ordered list of responsibility tags.
type Vocabulary []string

// Default returns the single-file vocabulary.
func Default() Vocabulary {
	return Vocabulary(append([]string(nil), types.DefaultVocabulary...))
}

// Extended returns the directory vocabulary, which adds "Acompañante".
func Extended() Vocabulary {
	return Vocabulary(append([]string(nil), types.ExtendedVocabulary...))
}

// Match returns every tag contained in s as a substring, in vocabulary
// order. A tag appearing inside a longer word still matches.
func (v Vocabulary) Match(s string) []string {
	found := []string{}
	for _, tag := range v {
		if tag != "" && strings.Contains(s, tag) {
			found = append(found, tag)
		}
	}
	return found
}
