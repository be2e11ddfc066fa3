// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/refine-normas/pkg/types"
)

// QueryOptions filters ledger queries.
type QueryOptions struct {
	// Responsable keeps records tagged with this responsibility tag.
	Responsable string

	// File keeps records from documents with this base name.
	File string

	// ExtractedOnly keeps records whose annotation block was stripped.
	ExtractedOnly bool

	// MaxResults limits result count. Zero uses the ledger default.
	MaxResults int
}

// latestFiles selects, for every path, the newest file row from a run that
// wrote to disk and did not fail.
const latestFiles = `f.id = (
	SELECT MAX(f2.id) FROM files f2
	JOIN runs r2 ON r2.id = f2.run_id
	WHERE f2.path = f.path AND r2.dry_run = 0 AND f2.status != 'failed'
)`

// Annotations returns the current state of recorded infraction records:
// for every file, the records from its latest successful, non-dry run.
// Results are ordered by file name and record index.
func (l *Ledger) Annotations(ctx context.Context, opts QueryOptions) ([]types.AnnotationRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = l.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT f.name, a.idx, a.articulo, a.apartado, a.nota, a.responsables, a.extracted
		FROM annotations a
		JOIN files f ON f.id = a.file_id
		WHERE ` + latestFiles)

	if opts.Responsable != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(a.responsables) WHERE value = ?)`)
		args = append(args, opts.Responsable)
	}
	if opts.File != "" {
		qb.WriteString(` AND f.name = ?`)
		args = append(args, opts.File)
	}
	if opts.ExtractedOnly {
		qb.WriteString(` AND a.extracted = 1`)
	}

	qb.WriteString(` ORDER BY f.name, a.idx LIMIT ?`)
	args = append(args, maxResults)

	rows, err := l.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var results []types.AnnotationRecord
	for rows.Next() {
		var (
			rec      types.AnnotationRecord
			article  sql.NullString
			section  sql.NullString
			tagsJSON string
		)
		if err := rows.Scan(&rec.File, &rec.Index, &article, &section, &rec.Note, &tagsJSON, &rec.Extracted); err != nil {
			return nil, fmt.Errorf("scanning annotation: %w", err)
		}
		rec.Article = article.String
		rec.Section = section.String
		if err := json.Unmarshal([]byte(tagsJSON), &rec.Responsables); err != nil {
			return nil, fmt.Errorf("decoding responsables of %s[%d]: %w", rec.File, rec.Index, err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

// TagCount is the number of current records carrying a responsibility tag.
type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// TagCounts counts current records per responsibility tag, most frequent
// first.
func (l *Ledger) TagCounts(ctx context.Context) ([]TagCount, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT j.value, COUNT(*) AS n
		FROM annotations a
		JOIN files f ON f.id = a.file_id, json_each(a.responsables) j
		WHERE `+latestFiles+`
		GROUP BY j.value
		ORDER BY n DESC, j.value`)
	if err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}
	defer rows.Close()

	var counts []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning tag count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}
