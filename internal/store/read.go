package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tfaughnan/barline/internal/ir"
)

const recordColumns = "seq, compile_id, fingerprint, name, schema, key, tempo_bpm, total_bars"

// ScoreByFingerprint loads a stored score by its content fingerprint.
// The reloaded score is re-sealed from the canonical JSON and checked
// against the stored fingerprint, so a corrupted row cannot masquerade
// as the content it claims to be.
func (s *Store) ScoreByFingerprint(ctx context.Context, fingerprint string) (*ir.ScoreIR, Record, error) {
	return s.loadScore(ctx, `WHERE fingerprint = ?`, fingerprint)
}

// LatestByName loads the most recently saved score with the given name.
// "Most recent" means highest insertion seq, never wall-clock time.
func (s *Store) LatestByName(ctx context.Context, name string) (*ir.ScoreIR, Record, error) {
	return s.loadScore(ctx, `WHERE name = ? ORDER BY seq DESC LIMIT 1`, name)
}

// List returns metadata for every stored score in insertion order, with
// fingerprint as the deterministic tie-break.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM scores
		ORDER BY seq ASC, fingerprint COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list scores: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return records, nil
}

func (s *Store) loadScore(ctx context.Context, where string, arg any) (*ir.ScoreIR, Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`, canonical_json
		FROM scores `+where, arg)

	var rec Record
	var canonical string
	err := row.Scan(&rec.Seq, &rec.CompileID, &rec.Fingerprint, &rec.Name,
		&rec.Schema, &rec.Key, &rec.TempoBPM, &rec.TotalBars, &canonical)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Record{}, ErrNotFound
	}
	if err != nil {
		return nil, Record{}, fmt.Errorf("load score: %w", err)
	}

	score, err := ir.UnmarshalScore([]byte(canonical))
	if err != nil {
		return nil, Record{}, fmt.Errorf("load score %s: %w", rec.Fingerprint, err)
	}
	if err := score.Seal(); err != nil {
		return nil, Record{}, fmt.Errorf("load score %s: %w", rec.Fingerprint, err)
	}
	if score.Fingerprint != rec.Fingerprint {
		return nil, Record{}, fmt.Errorf("load score: stored content hashes to %s, row claims %s",
			score.Fingerprint, rec.Fingerprint)
	}
	return score, rec, nil
}

func (s *Store) recordByFingerprint(ctx context.Context, fingerprint string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM scores WHERE fingerprint = ?
	`, fingerprint)
	rec, err := scanRecordRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	err := rows.Scan(&rec.Seq, &rec.CompileID, &rec.Fingerprint, &rec.Name,
		&rec.Schema, &rec.Key, &rec.TempoBPM, &rec.TotalBars)
	return rec, err
}

func scanRecordRow(row *sql.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.Seq, &rec.CompileID, &rec.Fingerprint, &rec.Name,
		&rec.Schema, &rec.Key, &rec.TempoBPM, &rec.TotalBars)
	return rec, err
}
