package hierarchy

import "capstone/insights/internal/db"

// RowsFromDB converts stored hierarchy rows into Rows
func RowsFromDB(dbRows []db.HierarchyRow) []Row {
	rows := make([]Row, 0, len(dbRows))
	for _, r := range dbRows {
		row := Row{
			AccountKey:  r.AccountKey,
			DisplayName: r.DisplayName,
			Levels:      make([]string, len(r.Levels)),
		}
		if r.SecretHash != nil {
			row.SecretHash = *r.SecretHash
		}
		for i, l := range r.Levels {
			if l != nil {
				row.Levels[i] = *l
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// TreeFromDB loads and builds the hierarchy tree from the database
func TreeFromDB(d *db.DB) (*Tree, error) {
	dbRows, err := d.AllHierarchy()
	if err != nil {
		return nil, err
	}
	return Build(RowsFromDB(dbRows))
}
