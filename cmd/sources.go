package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"capstone/insights/internal/config"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured activity sources and stored row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			return err
		}
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		counts, err := d.SourceCounts()
		if err != nil {
			return err
		}
		stored := make(map[string]int, len(counts))
		for _, c := range counts {
			stored[c.Source] = c.Rows
		}

		type entry struct {
			Name       string `json:"name"`
			Actor      string `json:"actor_column"`
			Category   string `json:"category_column"`
			Timestamp  string `json:"timestamp_column"`
			Rows       int    `json:"rows"`
			Configured bool   `json:"configured"`
		}
		var entries []entry
		for _, name := range config.Names(sources) {
			sc := sources[name]
			entries = append(entries, entry{name, sc.ActorColumn, sc.CategoryColumn, sc.TimestampColumn, stored[name], true})
			delete(stored, name)
		}
		for _, c := range counts {
			if _, orphan := stored[c.Source]; orphan {
				entries = append(entries, entry{Name: c.Source, Rows: c.Rows})
			}
		}

		out := cmd.OutOrStdout()
		if sourcesJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		for _, e := range entries {
			if !e.Configured {
				fmt.Fprintf(out, "  %-12s %10s rows  (no schema configured)\n", e.Name, humanize.Comma(int64(e.Rows)))
				continue
			}
			fmt.Fprintf(out, "  %-12s %10s rows  actor=%s category=%s date=%s\n",
				e.Name, humanize.Comma(int64(e.Rows)), e.Actor, e.Category, e.Timestamp)
		}
		return nil
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(sourcesCmd)
}
