package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"capstone/insights/internal/config"
	"capstone/insights/internal/hierarchy"
	"capstone/insights/internal/tabular"
)

var (
	importSheet   string
	importSource  string
	importReplace bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load hierarchy or activity files into the database",
}

var importHierarchyCmd = &cobra.Command{
	Use:   "hierarchy <file>",
	Short: "Replace the hierarchy table from a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := tabular.ReadFile(args[0], tabular.Options{Sheet: importSheet})
		if err != nil {
			return err
		}
		cols := hierarchy.DefaultColumns()
		if err := tbl.Require(cols.Required()...); err != nil {
			return err
		}
		rows, err := hierarchy.ToDBRows(tbl.Rows, cols)
		if err != nil {
			return err
		}
		// Build once so duplicate keys and ambiguous names fail before writing
		if _, err := hierarchy.Build(hierarchy.RowsFromDB(rows)); err != nil {
			return err
		}

		d, err := CreateDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.ReplaceHierarchy(rows); err != nil {
			return err
		}
		tree, err := hierarchy.TreeFromDB(d)
		if err != nil {
			return fmt.Errorf("reading back hierarchy: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"file":  args[0],
			"rows":  tree.RowCount(),
			"roots": len(tree.Roots()),
		}).Info("hierarchy imported")
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s hierarchy rows (%s roots, %s nodes)\n",
			humanize.Comma(int64(tree.RowCount())), humanize.Comma(int64(len(tree.Roots()))), humanize.Comma(int64(tree.NodeCount())))
		return nil
	},
}

var importActivityCmd = &cobra.Command{
	Use:   "activity <file>",
	Short: "Append activity rows for one source from a CSV or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sources, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			return err
		}
		sc, ok := sources[importSource]
		if !ok {
			return fmt.Errorf("unknown source %q (configured: %v)", importSource, config.Names(sources))
		}
		tbl, err := tabular.ReadFile(args[0], tabular.Options{Sheet: importSheet})
		if err != nil {
			return err
		}
		if err := tbl.Require(sc.ActorColumn, sc.CategoryColumn, sc.TimestampColumn); err != nil {
			return err
		}

		d, err := CreateDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		if importReplace {
			removed, err := d.DeleteActivity(importSource)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"source": importSource, "rows": removed}).Info("activity cleared")
		}
		inserted, err := d.InsertActivity(importSource, tbl.Rows)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"file":     args[0],
			"source":   importSource,
			"read":     len(tbl.Rows),
			"inserted": inserted,
		}).Info("activity imported")
		fmt.Fprintf(cmd.OutOrStdout(), "Read %s rows, stored %s new %s rows\n",
			humanize.Comma(int64(len(tbl.Rows))), humanize.Comma(int64(inserted)), importSource)
		return nil
	},
}

func init() {
	importCmd.PersistentFlags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (first sheet when empty)")
	importActivityCmd.Flags().StringVar(&importSource, "source", config.SourceTableau, "Activity source the file belongs to")
	importActivityCmd.Flags().BoolVar(&importReplace, "replace", false, "Delete the source's stored rows first")
	importCmd.AddCommand(importHierarchyCmd, importActivityCmd)
	rootCmd.AddCommand(importCmd)
}
