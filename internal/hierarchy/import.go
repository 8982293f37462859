package hierarchy

import (
	"fmt"
	"strings"

	"capstone/insights/internal/db"
)

// Columns names the input columns of a hierarchy file
type Columns struct {
	Account     string
	DisplayName string
	SecretHash  string
	Levels      []string
}

// DefaultColumns matches the Hierarchy_new export
func DefaultColumns() Columns {
	levels := make([]string, MaxLevels)
	for i := range levels {
		levels[i] = LevelName(i + 1)
	}
	return Columns{
		Account:     "capstone_ad_account",
		DisplayName: "capstone_name",
		SecretHash:  "secret_hash",
		Levels:      levels,
	}
}

// Required returns the columns a file must carry
func (c Columns) Required() []string {
	return []string{c.Account, c.DisplayName, c.Levels[0]}
}

// ToDBRows converts header-keyed rows to storage rows. Blank or NULL-like
// cells become nulls; a row without an account key is an error.
func ToDBRows(rows []map[string]string, cols Columns) ([]db.HierarchyRow, error) {
	out := make([]db.HierarchyRow, 0, len(rows))
	for i, r := range rows {
		key := strings.TrimSpace(r[cols.Account])
		if key == "" {
			return nil, fmt.Errorf("row %d: empty %s", i+1, cols.Account)
		}
		row := db.HierarchyRow{
			AccountKey:  key,
			DisplayName: strings.TrimSpace(r[cols.DisplayName]),
		}
		if cols.SecretHash != "" {
			row.SecretHash = cell(r[cols.SecretHash])
		}
		for j, c := range cols.Levels {
			if j >= len(row.Levels) {
				break
			}
			row.Levels[j] = cell(r[c])
		}
		out = append(out, row)
	}
	return out, nil
}

func cell(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "nan") {
		return nil
	}
	return &v
}
