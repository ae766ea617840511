package store

import (
	"context"
	"fmt"
	"strings"
)

// Filter narrows a Query over stored score metadata.
//
// This is a sealed interface: only types in this package implement it.
// The marker method keeps the compiler's type switch exhaustive. Filters
// compile to parameterized SQL, values are never interpolated.
type Filter interface {
	filterNode()
}

// NameIs matches scores with exactly this name.
type NameIs struct {
	Name string
}

func (NameIs) filterNode() {}

// KeyIs matches scores compiled in exactly this key, e.g. "D_minor".
type KeyIs struct {
	Key string
}

func (KeyIs) filterNode() {}

// TempoBetween matches scores whose tempo lies in [Min, Max] BPM,
// inclusive on both ends.
type TempoBetween struct {
	Min int
	Max int
}

func (TempoBetween) filterNode() {}

// And matches scores satisfying every child filter. An empty And matches
// everything.
type And struct {
	Filters []Filter
}

func (And) filterNode() {}

// Query returns metadata for every stored score matching the filter, in
// insertion order with fingerprint as the deterministic tie-break. A nil
// filter matches everything, making Query(ctx, nil) equivalent to List.
func (s *Store) Query(ctx context.Context, f Filter) ([]Record, error) {
	where, args, err := compileFilter(f)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}

	q := `SELECT ` + recordColumns + ` FROM scores`
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY seq ASC, fingerprint COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("query scores: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	return records, nil
}

// compileFilter converts a filter to a SQL fragment and its parameters.
// Returns an empty fragment for nil and empty And filters.
func compileFilter(f Filter) (string, []any, error) {
	switch flt := f.(type) {
	case nil:
		return "", nil, nil
	case NameIs:
		return "name = ?", []any{flt.Name}, nil
	case KeyIs:
		return "key = ?", []any{flt.Key}, nil
	case TempoBetween:
		if flt.Min > flt.Max {
			return "", nil, fmt.Errorf("tempo range [%d, %d] is empty", flt.Min, flt.Max)
		}
		return "tempo_bpm BETWEEN ? AND ?", []any{flt.Min, flt.Max}, nil
	case And:
		var parts []string
		var args []any
		for _, child := range flt.Filters {
			sql, childArgs, err := compileFilter(child)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, "("+sql+")")
			args = append(args, childArgs...)
		}
		return strings.Join(parts, " AND "), args, nil
	default:
		return "", nil, fmt.Errorf("unsupported filter type: %T", f)
	}
}
