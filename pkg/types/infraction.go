// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Field names used in norma documents.
const (
	FieldUpdateDate   = "fecha_actualizacion"
	FieldInfractions  = "infracciones"
	FieldDescription  = "descripcion"
	FieldNote         = "nota"
	FieldResponsables = "responsables"
	FieldOpc          = "opc"
	FieldArticle      = "articulo"
	FieldSection      = "apartado"
)

// FileStatus is the outcome of refining one document file.
type FileStatus string

const (
	FileRefined   FileStatus = "refined"
	FileUnchanged FileStatus = "unchanged"
	FileFailed    FileStatus = "failed"
)

// AnnotationRecord is one infraction record's extraction outcome, as kept
// in the run ledger and exported from it.
type AnnotationRecord struct {
	// File is the base name of the document the record belongs to.
	File string `json:"file" yaml:"file"`

	// Index is the zero-based position of the record in infracciones.
	Index int `json:"index" yaml:"index"`

	// Article and Section identify the record within its norma when the
	// document carries articulo/apartado.
	Article string `json:"articulo,omitempty" yaml:"articulo,omitempty"`
	Section string `json:"apartado,omitempty" yaml:"apartado,omitempty"`

	// Note is the record's nota after refinement.
	Note string `json:"nota" yaml:"nota"`

	// Responsables are the record's responsibility tags after refinement.
	Responsables []string `json:"responsables" yaml:"responsables"`

	// Extracted reports whether an annotation block was found and stripped.
	Extracted bool `json:"extracted" yaml:"extracted"`
}
