package db

// LevelColumns is the number of h1..hN columns in the hierarchy table
const LevelColumns = 9

// HierarchyRow represents a row in the hierarchy table
type HierarchyRow struct {
	AccountKey  string                `json:"account_key"`
	DisplayName string                `json:"display_name"`
	SecretHash  *string               `json:"secret_hash"` // bcrypt, nil when unset
	Levels      [LevelColumns]*string `json:"levels"`      // h1..h9, nil is null
}

// ActivityRow represents a row in the activity table. Fields holds the raw
// source columns; schemas differ per source so they are kept as a map.
type ActivityRow struct {
	ID     int64             `json:"id"`
	Source string            `json:"source"` // "tableau", "oracle", ...
	Fields map[string]string `json:"fields"`
}

// SourceCount is the number of stored activity rows for one source
type SourceCount struct {
	Source string `json:"source"`
	Rows   int    `json:"rows"`
}
