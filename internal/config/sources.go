package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"capstone/insights/internal/activity"
)

// Built-in source names
const (
	SourceTableau = "tableau"
	SourceOracle  = "oracle"
)

type KPIConfig struct {
	Label  string `yaml:"label" validate:"required"`
	Column string `yaml:"column" validate:"required"`
}

// SourceConfig describes the columns of one activity source
type SourceConfig struct {
	ActorColumn      string              `yaml:"actor_column" validate:"required"`
	CategoryColumn   string              `yaml:"category_column" validate:"required"`
	TimestampColumn  string              `yaml:"timestamp_column" validate:"required"`
	TimestampLayouts []string            `yaml:"timestamp_layouts,omitempty"`
	Exclude          map[string][]string `yaml:"exclude,omitempty"`
	KPIs             []KPIConfig         `yaml:"kpis,omitempty" validate:"dive"`
	PathColumns      []string            `yaml:"path_columns,omitempty"`
	SearchColumns    []string            `yaml:"search_columns,omitempty"`
}

type sourcesFile struct {
	Sources map[string]SourceConfig `yaml:"sources"`
}

// Schema converts the config into the filter pipeline's column mapping
func (s SourceConfig) Schema(name string) activity.Schema {
	kpis := make([]activity.KPI, len(s.KPIs))
	for i, k := range s.KPIs {
		kpis[i] = activity.KPI{Label: k.Label, Column: k.Column}
	}
	return activity.Schema{
		Name:             name,
		ActorColumn:      s.ActorColumn,
		CategoryColumn:   s.CategoryColumn,
		TimestampColumn:  s.TimestampColumn,
		TimestampLayouts: s.TimestampLayouts,
		Exclude:          s.Exclude,
		KPIs:             kpis,
		PathColumns:      s.PathColumns,
		SearchColumns:    s.SearchColumns,
	}
}

// DefaultSources returns the Tableau and Oracle Analytics layouts
func DefaultSources() map[string]SourceConfig {
	return map[string]SourceConfig{
		SourceTableau: {
			ActorColumn:     "Tableau_DisplayName",
			CategoryColumn:  "Tableau_Roles",
			TimestampColumn: "Tableau_CreatedAt",
			KPIs: []KPIConfig{
				{Label: "Workbooks", Column: "Tableau_Workbook"},
				{Label: "Views", Column: "Tableau_Dashboard"},
				{Label: "Projects", Column: "Tableau_Project"},
			},
			PathColumns:   []string{"Tableau_Project", "Tableau_Workbook", "Tableau_Dashboard"},
			SearchColumns: []string{"Tableau_Project", "Tableau_Workbook", "Tableau_Dashboard"},
		},
		SourceOracle: {
			ActorColumn:     "Oracle_Name",
			CategoryColumn:  "Oracle_Role",
			TimestampColumn: "Oracle_StartTimestamp",
			Exclude:         map[string][]string{"Oracle_ID": {"SA-OACProd"}},
			KPIs: []KPIConfig{
				{Label: "Dashboards", Column: "Oracle_DashboardName"},
				{Label: "Pages", Column: "Oracle_DashboardPage"},
				{Label: "Subject Areas", Column: "Oracle_SubjectArea"},
				{Label: "Presentation Names", Column: "Oracle_PresentationName"},
			},
			PathColumns:   []string{"Oracle_PresentationName", "Oracle_DashboardName", "Oracle_DashboardPage"},
			SearchColumns: []string{"Oracle_SubjectArea", "Oracle_DashboardName", "Oracle_DashboardPage", "Oracle_PresentationName"},
		},
	}
}

// LoadSources returns the default sources overlaid with the entries of the
// YAML file at path. An empty path yields the defaults.
func LoadSources(path string) (map[string]SourceConfig, error) {
	sources := DefaultSources()
	if path == "" {
		return sources, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	for name, sc := range f.Sources {
		if err := validate.Struct(sc); err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}
		sources[name] = sc
	}
	return sources, nil
}

// Schemas converts every source to its schema
func Schemas(sources map[string]SourceConfig) map[string]activity.Schema {
	out := make(map[string]activity.Schema, len(sources))
	for name, sc := range sources {
		out[name] = sc.Schema(name)
	}
	return out
}

// Names returns the source names in order
func Names(sources map[string]SourceConfig) []string {
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
