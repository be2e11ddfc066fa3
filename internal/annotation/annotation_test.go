// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/refine-normas/pkg/types"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantClean   string
		wantBody    string
		wantOK      bool
	}{
		{
			name:        "block with responsible party",
			description: "Texto base.\n\n*Nota: Aclaración importante. Responsable: Conductor*",
			wantClean:   "Texto base.",
			wantBody:    "Aclaración importante. Responsable: Conductor",
			wantOK:      true,
		},
		{
			name:        "block spanning lines",
			description: "Texto base.\n\n*Nota: Primera línea.\nSegunda línea.*",
			wantClean:   "Texto base.",
			wantBody:    "Primera línea.\nSegunda línea.",
			wantOK:      true,
		},
		{
			name:        "trailing newline after closing asterisk",
			description: "Texto base.\n\n*Nota: Solo aplica en ciudad.*\n",
			wantClean:   "Texto base.",
			wantBody:    "Solo aplica en ciudad.",
			wantOK:      true,
		},
		{
			name:        "whitespace before separator is trimmed",
			description: "  Texto base.  \n\n*Nota: x*",
			wantClean:   "Texto base.",
			wantBody:    "x",
			wantOK:      true,
		},
		{
			name:        "empty body",
			description: "Texto base.\n\n*Nota: *",
			wantClean:   "Texto base.",
			wantBody:    "",
			wantOK:      true,
		},
		{
			name:        "first marker starts the block",
			description: "A\n\n*Nota: uno*\n\n*Nota: dos*",
			wantClean:   "A",
			wantBody:    "uno*\n\n*Nota: dos",
			wantOK:      true,
		},
		{
			name:        "no annotation",
			description: "Sin anotaciones.",
			wantClean:   "Sin anotaciones.",
			wantOK:      false,
		},
		{
			name:        "single line break is not a separator",
			description: "Texto base.\n*Nota: algo*",
			wantClean:   "Texto base.\n*Nota: algo*",
			wantOK:      false,
		},
		{
			name:        "block not at the end",
			description: "Texto base.\n\n*Nota: algo* y más texto",
			wantClean:   "Texto base.\n\n*Nota: algo* y más texto",
			wantOK:      false,
		},
		{
			name:        "missing closing asterisk",
			description: "Texto base.\n\n*Nota: algo",
			wantClean:   "Texto base.\n\n*Nota: algo",
			wantOK:      false,
		},
		{
			name:        "marker without space",
			description: "Texto base.\n\n*Nota:algo*",
			wantClean:   "Texto base.\n\n*Nota:algo*",
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clean, body, ok := Split(tt.description)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantClean, clean)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseBody(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		wantNote        string
		wantResponsible string
		wantHas         bool
	}{
		{
			name:            "note and responsible",
			body:            "Aclaración importante. Responsable: Conductor",
			wantNote:        "Aclaración importante",
			wantResponsible: "Conductor",
			wantHas:         true,
		},
		{
			name:     "note only keeps its period",
			body:     "Solo aplica en ciudad.",
			wantNote: "Solo aplica en ciudad.",
		},
		{
			name:            "only one trailing period is removed",
			body:            "Ver art. 3... Responsable: Titular",
			wantNote:        "Ver art. 3..",
			wantResponsible: "Titular",
			wantHas:         true,
		},
		{
			name:            "responsible only",
			body:            "Responsable: Titular",
			wantNote:        "",
			wantResponsible: "Titular",
			wantHas:         true,
		},
		{
			name:            "marker on the last line",
			body:            "Primera línea.\nResponsable: Conductor o Propietario",
			wantNote:        "Primera línea",
			wantResponsible: "Conductor o Propietario",
			wantHas:         true,
		},
		{
			name:     "marker followed by more lines is not recognized",
			body:     "Responsable: Conductor\nmás texto",
			wantNote: "Responsable: Conductor\nmás texto",
		},
		{
			name:            "responsible text is trimmed",
			body:            "Nota.  Responsable:   Taller  ",
			wantNote:        "Nota",
			wantResponsible: "Taller",
			wantHas:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBody(tt.body)
			assert.Equal(t, tt.body, got.Body)
			assert.Equal(t, tt.wantNote, got.Note)
			assert.Equal(t, tt.wantResponsible, got.Responsible)
			assert.Equal(t, tt.wantHas, got.HasResponsible)
		})
	}
}

func TestExtract(t *testing.T) {
	overwrite := Options{Policy: types.PolicyOverwrite, Vocabulary: Default()}
	preserve := Options{Policy: types.PolicyPreserve, Vocabulary: Extended()}

	tests := []struct {
		name        string
		description string
		existing    Annotation
		opts        Options
		want        Result
	}{
		{
			name:        "note and responsible",
			description: "Texto base.\n\n*Nota: Aclaración importante. Responsable: Conductor*",
			opts:        overwrite,
			want: Result{
				Description:  "Texto base.",
				Note:         "Aclaración importante",
				Responsables: []string{"Conductor"},
				Matched:      true,
			},
		},
		{
			name:        "note without responsible",
			description: "Texto base.\n\n*Nota: Solo aplica en ciudad.*",
			opts:        preserve,
			want: Result{
				Description:  "Texto base.",
				Note:         "Solo aplica en ciudad.",
				Responsables: []string{},
				Matched:      true,
			},
		},
		{
			name:        "no block",
			description: "Sin anotaciones.",
			opts:        overwrite,
			want:        Result{Description: "Sin anotaciones."},
		},
		{
			name:        "no block keeps existing values",
			description: "Sin anotaciones.",
			existing:    Annotation{Note: "curada", Responsables: []string{"Titular"}},
			opts:        overwrite,
			want: Result{
				Description:  "Sin anotaciones.",
				Note:         "curada",
				Responsables: []string{"Titular"},
			},
		},
		{
			name:        "multiple tags in vocabulary order",
			description: "Base.\n\n*Nota: X. Responsable: Propietario o Conductor del vehículo*",
			opts:        overwrite,
			want: Result{
				Description:  "Base.",
				Note:         "X",
				Responsables: []string{"Conductor", "Propietario"},
				Matched:      true,
			},
		},
		{
			name:        "overwrite replaces existing values",
			description: "Base.\n\n*Nota: Nueva. Responsable: Titular*",
			existing:    Annotation{Note: "vieja", Responsables: []string{"Otros"}},
			opts:        overwrite,
			want: Result{
				Description:  "Base.",
				Note:         "Nueva",
				Responsables: []string{"Titular"},
				Matched:      true,
			},
		},
		{
			name:        "overwrite without responsible keeps existing tags",
			description: "Base.\n\n*Nota: Nueva.*",
			existing:    Annotation{Note: "vieja", Responsables: []string{"Otros"}},
			opts:        overwrite,
			want: Result{
				Description:  "Base.",
				Note:         "Nueva.",
				Responsables: []string{"Otros"},
				Matched:      true,
			},
		},
		{
			name:        "preserve keeps both curated values but cleans description",
			description: "Base.\n\n*Nota: Nueva. Responsable: Titular*",
			existing:    Annotation{Note: "curada", Responsables: []string{"Conductor"}},
			opts:        preserve,
			want: Result{
				Description:  "Base.",
				Note:         "curada",
				Responsables: []string{"Conductor"},
				Matched:      true,
			},
		},
		{
			name:        "preserve fills only the missing note",
			description: "Base.\n\n*Nota: Nueva. Responsable: Titular*",
			existing:    Annotation{Responsables: []string{"Conductor"}},
			opts:        preserve,
			want: Result{
				Description:  "Base.",
				Note:         "Nueva",
				Responsables: []string{"Conductor"},
				Matched:      true,
			},
		},
		{
			name:        "preserve fills only the missing tags",
			description: "Base.\n\n*Nota: Nueva. Responsable: Acompañante*",
			existing:    Annotation{Note: "curada"},
			opts:        preserve,
			want: Result{
				Description:  "Base.",
				Note:         "curada",
				Responsables: []string{"Acompañante"},
				Matched:      true,
			},
		},
		{
			name:        "default vocabulary ignores Acompañante",
			description: "Base.\n\n*Nota: N. Responsable: Acompañante*",
			opts:        overwrite,
			want: Result{
				Description:  "Base.",
				Note:         "N",
				Responsables: []string{},
				Matched:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.description, tt.existing, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	opts := Options{Policy: types.PolicyPreserve, Vocabulary: Extended()}
	desc := "Texto base.\n\n*Nota: Aclaración importante. Responsable: Conductor*"

	first := Extract(desc, Annotation{}, opts)
	second := Extract(first.Description, Annotation{Note: first.Note, Responsables: first.Responsables}, opts)

	assert.True(t, first.Matched)
	assert.False(t, second.Matched)
	assert.Equal(t, first.Description, second.Description)
	assert.Equal(t, first.Note, second.Note)
	assert.Equal(t, first.Responsables, second.Responsables)
}
