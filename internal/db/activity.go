package db

import (
	"encoding/json"
	"fmt"
)

// InsertActivity stores raw activity rows for source. Rows identical to an
// existing row of the same source are skipped; the number actually inserted
// is returned.
func (d *DB) InsertActivity(source string, rows []map[string]string) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO activity (source, fields) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, fields := range rows {
		// json.Marshal sorts map keys, so equal rows encode identically
		b, err := json.Marshal(fields)
		if err != nil {
			return 0, fmt.Errorf("encoding row %d: %w", i, err)
		}
		res, err := stmt.Exec(source, string(b))
		if err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", i, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return inserted, nil
}

// ActivityBySource returns all stored rows of one source in insertion order
func (d *DB) ActivityBySource(source string) ([]ActivityRow, error) {
	rows, err := d.conn.Query(`SELECT id, source, fields FROM activity WHERE source = ? ORDER BY id`, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivityRow
	for rows.Next() {
		var r ActivityRow
		var raw string
		if err := rows.Scan(&r.ID, &r.Source, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(raw), &r.Fields); err != nil {
			return nil, fmt.Errorf("decoding activity %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SourceCounts returns stored row counts per source
func (d *DB) SourceCounts() ([]SourceCount, error) {
	rows, err := d.conn.Query(`SELECT source, COUNT(*) FROM activity GROUP BY source ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var c SourceCount
		if err := rows.Scan(&c.Source, &c.Rows); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteActivity removes every stored row of source
func (d *DB) DeleteActivity(source string) (int64, error) {
	res, err := d.conn.Exec(`DELETE FROM activity WHERE source = ?`, source)
	if err != nil {
		return 0, fmt.Errorf("deleting activity: %w", err)
	}
	return res.RowsAffected()
}
