// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Policy decides how values derived from an annotation block combine with
// the values already present on an infraction record.
type Policy string

const (
	// PolicyOverwrite replaces the record's note with the derived one, and its
	// responsibility tags whenever the block names a responsible party.
	PolicyOverwrite Policy = "overwrite"

	// PolicyPreserve fills only note and responsibility fields that are empty.
	PolicyPreserve Policy = "preserve"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyOverwrite || p == PolicyPreserve
}

// DefaultVocabulary lists the responsibility tags recognized by the
// single-file refiner, in output order.
var DefaultVocabulary = []string{
	"Titular", "Conductor", "Pasajero", "Usuario",
	"Propietario", "Taller", "Otros", "Arrendatario",
}

// ExtendedVocabulary is DefaultVocabulary plus the tags added for the
// directory refiner.
var ExtendedVocabulary = append(append([]string(nil), DefaultVocabulary...), "Acompañante")

const (
	// SingleFileDate is the update date forced onto a document by the
	// single-file refiner.
	SingleFileDate = "11/02/2026"

	// DirectoryDate is the update date given to documents that carry none
	// when refining a directory.
	DirectoryDate = "Codificado 11 febrero 2026"
)

// RefineConfig holds settings for one refine run.
type RefineConfig struct {
	// Policy selects overwrite or preserve semantics for nota/responsables.
	Policy Policy `json:"policy" yaml:"policy"`

	// Vocabulary lists the responsibility tags to detect, in output order.
	Vocabulary []string `json:"vocabulary" yaml:"vocabulary"`

	// EnsureOpc adds an empty "opc" field to records that lack one.
	EnsureOpc bool `json:"ensure_opc" yaml:"ensure_opc"`

	// UpdateDate is the value written to fecha_actualizacion. Empty leaves
	// the field alone.
	UpdateDate string `json:"update_date" yaml:"update_date"`

	// ForceDate overwrites an existing fecha_actualizacion. When false the
	// date is only set on documents that lack the field.
	ForceDate bool `json:"force_date" yaml:"force_date"`

	// DryRun computes changes without writing files.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// SingleFileConfig returns the defaults for refining one document: the
// extracted values win, the default vocabulary applies, and the date is
// always stamped.
func SingleFileConfig() RefineConfig {
	return RefineConfig{
		Policy:     PolicyOverwrite,
		Vocabulary: append([]string(nil), DefaultVocabulary...),
		UpdateDate: SingleFileDate,
		ForceDate:  true,
	}
}

// DirectoryConfig returns the defaults for refining a directory of
// documents: curated values are kept, the extended vocabulary applies, opc
// is backfilled, and the date is only set when missing.
func DirectoryConfig() RefineConfig {
	return RefineConfig{
		Policy:     PolicyPreserve,
		Vocabulary: append([]string(nil), ExtendedVocabulary...),
		EnsureOpc:  true,
		UpdateDate: DirectoryDate,
	}
}

// LedgerConfig holds settings for the run ledger.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables recording.
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default maximum number of report rows (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Refine RefineConfig `json:"refine" yaml:"refine"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger"`
	Log    LogConfig    `json:"log" yaml:"log"`
}
