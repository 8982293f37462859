package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"capstone/insights/internal/activity"
	"capstone/insights/internal/auth"
	"capstone/insights/internal/config"
	"capstone/insights/internal/dashboard"
)

var (
	reportAccount  string
	reportSecret   string
	reportSource   string
	reportPath     []string
	reportActor    string
	reportCategory string
	reportFrom     string
	reportTo       string
	reportSearch   string
	reportJSON     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Log in and print one filtered dashboard view",
	Long: `Log in as --account and print the dashboard for that account's subtree.
The secret is read from --secret or, when omitted, from the first line of stdin.`,
	Example: `  insights report --account jdoe --source oracle --path H2=east --path H3=team1 --from 2024-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := reportQuery()
		if err != nil {
			return err
		}
		secret, err := readSecret(cmd.InOrStdin(), reportSecret)
		if err != nil {
			return err
		}

		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()

		svc, err := newService(d, cfg, logger)
		if err != nil {
			return err
		}
		sess := auth.NewSession()
		if _, err := svc.Login(sess, reportAccount, secret); err != nil {
			return err
		}
		defer svc.Logout(sess)

		v, err := svc.View(sess, q)
		if err != nil {
			return err
		}
		return writeView(cmd.OutOrStdout(), v, reportJSON)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportAccount, "account", "", "Account key to log in as")
	reportCmd.Flags().StringVar(&reportSecret, "secret", "", "Secret for the account (read from stdin when empty)")
	reportCmd.Flags().StringVar(&reportSource, "source", config.SourceTableau, "Activity source")
	reportCmd.Flags().StringArrayVar(&reportPath, "path", nil, "Hierarchy selection as Hn=value, repeatable, shallowest first")
	reportCmd.Flags().StringVar(&reportActor, "actor", "", "Only rows of this user")
	reportCmd.Flags().StringVar(&reportCategory, "category", "", "Only rows of this role")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportSearch, "search", "", "Fuzzy search over the source's search columns")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output as JSON")
	_ = reportCmd.MarkFlagRequired("account")
	rootCmd.AddCommand(reportCmd)
}

func reportQuery() (dashboard.Query, error) {
	path, err := parseSelections(reportPath)
	if err != nil {
		return dashboard.Query{}, err
	}
	from, err := parseDate(reportFrom)
	if err != nil {
		return dashboard.Query{}, err
	}
	to, err := parseDate(reportTo)
	if err != nil {
		return dashboard.Query{}, err
	}
	return dashboard.Query{
		Source: reportSource,
		Path:   path,
		Criteria: activity.Criteria{
			Actor:    reportActor,
			Category: reportCategory,
			From:     from,
			To:       to,
			Search:   reportSearch,
		},
	}, nil
}

// viewJSON adds the pipeline counts to the serialized view
type viewJSON struct {
	*dashboard.View
	Stages  []activity.StageCount `json:"stages"`
	Undated int                   `json:"undated_rows"`
}

func writeView(w io.Writer, v *dashboard.View, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(viewJSON{View: v, Stages: v.Result.Counts, Undated: v.Result.Ignored})
	}
	printView(w, v)
	return nil
}

// readSecret returns flagValue, or the first line of in when it is empty
func readSecret(in io.Reader, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if f, ok := in.(*os.File); ok {
		if st, err := f.Stat(); err == nil && st.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprint(os.Stderr, "Secret: ")
		}
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", fmt.Errorf("no secret given")
	}
	return secret, nil
}
