package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"capstone/insights/internal/activity"
	"capstone/insights/internal/auth"
	"capstone/insights/internal/config"
	"capstone/insights/internal/dashboard"
	"capstone/insights/internal/db"
	"capstone/insights/internal/logging"
)

const dbFileName = ".insights.db"

var (
	dbPath      string
	sourcesPath string
	logLevel    string
	logFormat   string

	cfg    *config.Configuration
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "insights",
	Short:         "Hierarchy-scoped BI usage dashboards",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to "+dbFileName+" database")
	rootCmd.PersistentFlags().StringVar(&sourcesPath, "sources", "", "YAML file overriding activity source layouts")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "silent, error, warn, info or debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")
}

// setup loads the configuration and builds the logger. Flags override the
// environment.
func setup() error {
	c, err := config.Load(config.DefaultEnvFiles)
	if err != nil {
		return err
	}
	if sourcesPath != "" {
		c.SourcesFile = sourcesPath
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFormat != "" {
		c.LogFormat = logFormat
	}
	l, err := logging.New(c.LogLevel, c.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if cfg != nil && cfg.DBPath != "" {
		if _, err := os.Stat(cfg.DBPath); err == nil {
			return cfg.DBPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, dbFileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	if xdgPath, ok := xdgDBPath(); ok {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no %s found (set INSIGHTS_DB, use --db, or run from a directory containing %s)", dbFileName, dbFileName)
}

func xdgDBPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".local", "share", "insights", "insights.db"), true
}

// OpenDatabase discovers and opens the database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return db.OpenDB(path)
}

// CreateDatabase opens the discovered database, or creates one at the
// configured path (or in the working directory) when none exists yet.
func CreateDatabase() (*db.DB, error) {
	if path, err := DiscoverDB(); err == nil {
		return db.OpenDB(path)
	}
	path := dbFileName
	switch {
	case dbPath != "":
		path = dbPath
	case cfg != nil && cfg.DBPath != "":
		path = cfg.DBPath
	}
	if logger != nil {
		logger.WithField("path", path).Info("creating database")
	}
	return db.OpenDB(path)
}

func newVerifier(c *config.Configuration, l *logrus.Logger) auth.Verifier {
	if c.Auth.Mode == config.AuthShared {
		l.Warn("shared passphrase mode: anyone holding the passphrase can log in as any account")
		return auth.SharedPassphrase{Passphrase: c.Auth.SharedPassphrase}
	}
	return auth.BcryptVerifier{}
}

func loadSchemas(c *config.Configuration) (map[string]activity.Schema, error) {
	sources, err := config.LoadSources(c.SourcesFile)
	if err != nil {
		return nil, err
	}
	return config.Schemas(sources), nil
}

func newService(store dashboard.Store, c *config.Configuration, l *logrus.Logger) (*dashboard.Service, error) {
	schemas, err := loadSchemas(c)
	if err != nil {
		return nil, err
	}
	return dashboard.New(store, schemas, newVerifier(c, l), logrus.NewEntry(l)), nil
}
