package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Store persists catalog records in the SQLite catalog file so a curated
// dataset can be shipped without rebuilding the binary.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Save upserts records into catalog_plants.
func (s *Store) Save(ctx context.Context, records []Record) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_plants (id, name, latin, light_level, watering_level, difficulty, record)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  latin = excluded.latin,
		  light_level = excluded.light_level,
		  watering_level = excluded.watering_level,
		  difficulty = excluded.difficulty,
		  record = excluded.record
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			r.Name,
			r.Latin,
			r.Care.Light.Level,
			r.Care.Watering.Level,
			r.Difficulty,
			string(raw),
		); err != nil {
			return fmt.Errorf("exec upsert for %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Load reads every record, ordered by name.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, record FROM catalog_plants ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("load query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			id  string
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("load scan: %w", err)
		}
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_plants`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return n, nil
}
