package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tfaughnan/barline/internal/ir"
)

// Record is the stored metadata for one score.
type Record struct {
	Seq         int64  `json:"seq"`
	CompileID   string `json:"compile_id"`
	Fingerprint string `json:"fingerprint"`
	Name        string `json:"name"`
	Schema      string `json:"schema"`
	Key         string `json:"key"`
	TempoBPM    int    `json:"tempo_bpm"`
	TotalBars   int    `json:"total_bars"`
}

// SaveScore persists a score keyed by its fingerprint. Saving a score
// whose fingerprint already exists is a no-op and returns the original
// record, compile id included, so re-running a compile never mints a
// second identity for the same content.
func (s *Store) SaveScore(ctx context.Context, score *ir.ScoreIR) (Record, error) {
	fingerprint, err := score.ComputeFingerprint()
	if err != nil {
		return Record{}, fmt.Errorf("save score: %w", err)
	}
	canonical, err := score.CanonicalJSON()
	if err != nil {
		return Record{}, fmt.Errorf("save score: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scores
		(compile_id, fingerprint, name, schema, key, tempo_bpm, total_bars, canonical_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		uuid.NewString(),
		fingerprint,
		score.Name,
		score.Schema,
		score.Key,
		score.TempoBPM,
		score.TotalBars,
		string(canonical),
	)
	if err != nil {
		return Record{}, fmt.Errorf("save score: %w", err)
	}

	rec, err := s.recordByFingerprint(ctx, fingerprint)
	if err != nil {
		return Record{}, fmt.Errorf("save score: %w", err)
	}
	return rec, nil
}
