// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine applies annotation extraction to norma documents, one
// file or a directory of files at a time, and writes them back.
package refine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/refine-normas/internal/annotation"
	"github.com/pdiddy/refine-normas/internal/document"
	"github.com/pdiddy/refine-normas/internal/logging"
	"github.com/pdiddy/refine-normas/pkg/types"
)

// Recorder receives the outcome of every refined file. The run ledger
// implements it.
type Recorder interface {
	RecordFile(ctx context.Context, res FileResult) error
}

// DocumentResult counts what RefineDocument did to one document.
type DocumentResult struct {
	// Records is the number of infraction records visited.
	Records int

	// Extracted is the number of records whose annotation block was stripped.
	Extracted int

	// Changed is the number of records modified in any way.
	Changed int

	// DateSet reports whether fecha_actualizacion was written.
	DateSet bool

	// Annotations holds every record's final note and tags.
	Annotations []types.AnnotationRecord
}

// FileResult is the outcome of refining one file.
type FileResult struct {
	DocumentResult

	Path   string
	Status types.FileStatus
}

// BatchResult holds the outcome of a directory run.
type BatchResult struct {
	Refined   int
	Unchanged int
	Failed    int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Refined + r.Unchanged + r.Failed
}

// HasFailures reports whether any file could not be parsed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Refiner rewrites documents according to a RefineConfig.
type Refiner struct {
	cfg  types.RefineConfig
	opts annotation.Options
	log  *logrus.Logger
	rec  Recorder
}

// New returns a Refiner. log may be nil to discard log output; rec may be
// nil to skip recording.
func New(cfg types.RefineConfig, log *logrus.Logger, rec Recorder) (*Refiner, error) {
	if !cfg.Policy.Valid() {
		return nil, fmt.Errorf("unknown policy %q: use %s or %s", cfg.Policy, types.PolicyOverwrite, types.PolicyPreserve)
	}
	if len(cfg.Vocabulary) == 0 {
		return nil, errors.New("empty responsibility vocabulary")
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Refiner{
		cfg: cfg,
		opts: annotation.Options{
			Policy:     cfg.Policy,
			Vocabulary: annotation.Vocabulary(cfg.Vocabulary),
		},
		log: log,
		rec: rec,
	}, nil
}

// RefineDocument updates the document's date and every infraction record
// in place. file names the document in the returned annotations.
func (r *Refiner) RefineDocument(doc *document.Document, file string) DocumentResult {
	var res DocumentResult

	if r.cfg.UpdateDate != "" {
		if r.cfg.ForceDate {
			res.DateSet = doc.SetString(types.FieldUpdateDate, r.cfg.UpdateDate)
		} else {
			res.DateSet = doc.EnsureString(types.FieldUpdateDate, r.cfg.UpdateDate)
		}
	}

	for i, rec := range doc.Infractions() {
		res.Records++
		out, changed := r.refineRecord(rec)
		if out.Matched {
			res.Extracted++
		}
		if changed {
			res.Changed++
		}
		res.Annotations = append(res.Annotations, types.AnnotationRecord{
			File:         file,
			Index:        i,
			Article:      rec.Text(types.FieldArticle),
			Section:      rec.Text(types.FieldSection),
			Note:         rec.Text(types.FieldNote),
			Responsables: rec.Strings(types.FieldResponsables),
			Extracted:    out.Matched,
		})
	}

	return res
}

func (r *Refiner) refineRecord(rec *document.Object) (annotation.Result, bool) {
	existing := annotation.Annotation{
		Note:         rec.Text(types.FieldNote),
		Responsables: rec.Strings(types.FieldResponsables),
	}
	out := annotation.Extract(rec.Text(types.FieldDescription), existing, r.opts)

	changed := false
	if out.Matched {
		changed = rec.SetString(types.FieldDescription, out.Description) || changed
		changed = rec.SetString(types.FieldNote, out.Note) || changed
		if out.Responsables != nil && (!slices.Equal(out.Responsables, existing.Responsables) || !rec.Has(types.FieldResponsables)) {
			changed = rec.SetStrings(types.FieldResponsables, out.Responsables) || changed
		}
	}

	changed = rec.EnsureString(types.FieldNote, "") || changed
	changed = rec.EnsureStrings(types.FieldResponsables, []string{}) || changed
	if r.cfg.EnsureOpc {
		changed = rec.EnsureString(types.FieldOpc, "") || changed
	}
	return out, changed
}

// RefineFile loads, refines, and rewrites one document, printing a status
// line to w. The file is only written when its content changes and the
// run is not a dry run. Parse errors wrap document.ErrMalformed.
func (r *Refiner) RefineFile(ctx context.Context, path string, w io.Writer) (FileResult, error) {
	base := filepath.Base(path)
	res := FileResult{Path: path, Status: types.FileFailed}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := document.Parse(data)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", base, err)
		return res, fmt.Errorf("parsing %s: %w", path, err)
	}

	res.DocumentResult = r.RefineDocument(doc, base)

	out, err := doc.Marshal()
	if err != nil {
		return res, fmt.Errorf("encoding %s: %w", path, err)
	}

	res.Status = types.FileUnchanged
	if !bytes.Equal(out, data) {
		res.Status = types.FileRefined
		if !r.cfg.DryRun {
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return res, fmt.Errorf("writing %s: %w", path, err)
			}
		}
	}

	suffix := ""
	if r.cfg.DryRun && res.Status == types.FileRefined {
		suffix = ", dry run"
	}
	fmt.Fprintf(w, "%-10s %s (%d records, %d extracted%s)\n",
		string(res.Status)+":", base, res.Records, res.Extracted, suffix)

	r.log.WithFields(logrus.Fields{
		"file":      base,
		"status":    res.Status,
		"records":   res.Records,
		"extracted": res.Extracted,
		"changed":   res.Changed,
	}).Debug("refined document")

	if r.rec != nil {
		if err := r.rec.RecordFile(ctx, res); err != nil {
			r.log.WithError(err).WithField("file", base).Warn("ledger record failed")
		}
	}

	return res, nil
}

// RefineDir refines every *.json file directly inside dir, in name order.
// Malformed documents are logged and counted as failed; other errors stop
// the run and are returned with the counts so far.
func (r *Refiner) RefineDir(ctx context.Context, dir string, w io.Writer) (BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchResult{}, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var result BatchResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		path := filepath.Join(dir, entry.Name())
		res, err := r.RefineFile(ctx, path, w)
		if err != nil {
			if errors.Is(err, document.ErrMalformed) {
				r.log.WithError(err).WithField("file", entry.Name()).Error("skipping malformed document")
				result.Failed++
				if r.rec != nil {
					if rerr := r.rec.RecordFile(ctx, res); rerr != nil {
						r.log.WithError(rerr).WithField("file", entry.Name()).Warn("ledger record failed")
					}
				}
				continue
			}
			return result, err
		}

		switch res.Status {
		case types.FileRefined:
			result.Refined++
		case types.FileUnchanged:
			result.Unchanged++
		}
	}

	fmt.Fprintf(w, "\nrefined: %d, unchanged: %d, failed: %d (total: %d)\n",
		result.Refined, result.Unchanged, result.Failed, result.Total())
	return result, nil
}
