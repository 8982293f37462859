package db

import (
	"database/sql"
	"fmt"
)

const hierarchyColumns = `account_key, display_name, secret_hash, h1, h2, h3, h4, h5, h6, h7, h8, h9`

// scanHierarchy scans a row into a HierarchyRow. The row must have all 12 columns in standard order.
func scanHierarchy(scanner interface{ Scan(dest ...any) error }) (HierarchyRow, error) {
	var r HierarchyRow
	dest := []any{&r.AccountKey, &r.DisplayName, &r.SecretHash}
	for i := range r.Levels {
		dest = append(dest, &r.Levels[i])
	}
	err := scanner.Scan(dest...)
	return r, err
}

// AllHierarchy returns every hierarchy row ordered by account key
func (d *DB) AllHierarchy() ([]HierarchyRow, error) {
	rows, err := d.conn.Query(`SELECT ` + hierarchyColumns + ` FROM hierarchy ORDER BY account_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HierarchyRow
	for rows.Next() {
		r, err := scanHierarchy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetAccount returns the hierarchy row for an exact account key, or nil if not found
func (d *DB) GetAccount(key string) (*HierarchyRow, error) {
	row := d.conn.QueryRow(`SELECT `+hierarchyColumns+` FROM hierarchy WHERE account_key = ?`, key)
	r, err := scanHierarchy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ReplaceHierarchy swaps the whole hierarchy table for rows in one transaction
func (d *DB) ReplaceHierarchy(rows []HierarchyRow) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM hierarchy`); err != nil {
		return fmt.Errorf("clearing hierarchy: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO hierarchy (` + hierarchyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		args := []any{r.AccountKey, r.DisplayName, r.SecretHash}
		for _, l := range r.Levels {
			args = append(args, l)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting account %q: %w", r.AccountKey, err)
		}
	}
	return tx.Commit()
}

// SetSecretHash stores a bcrypt hash for one account
func (d *DB) SetSecretHash(key, hash string) error {
	res, err := d.conn.Exec(`UPDATE hierarchy SET secret_hash = ? WHERE account_key = ?`, hash, key)
	if err != nil {
		return fmt.Errorf("updating secret: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account not found: %s", key)
	}
	return nil
}
