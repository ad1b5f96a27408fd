// Package config holds the tunables of the ingestion core and the
// connection settings of its collaborators.
//
// Values come from Default, are overlaid by environment variables in
// FromEnv, and binaries may overlay command-line flags on top with BindFlags.
//
// Environment variables:
//   - LEDGER_DUPLICATE_WINDOW_MINUTES: dedup window in minutes (default 5)
//   - LEDGER_MAX_BATCH_LINES: maximum lines per batch (default 1000)
//   - LEDGER_LOG_LEVEL: zerolog level name (default info)
//   - LEDGER_BACKEND: event store, sqlite or bigquery (default sqlite)
//   - LEDGER_SQLITE_PATH: local event store path
//   - LEDGER_API_TOKEN: bearer token required by the HTTP API when set
//   - GCP_PROJECT: Google Cloud project for BigQuery and Cloud Storage
//   - BQ_DATASET: BigQuery dataset (default ledger)
//   - GCS_BUCKET: bucket for raw notification archives
//   - NOTION_TOKEN: Notion integration token (never logged)
//   - NOTION_EVENTS_DB_ID: Notion database receiving events
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultArbitrationFloor = 0.5
	DefaultGrammarFloor     = 0.7
	DefaultHeuristicFloor   = 0.5
	DefaultDuplicateWindow  = 5 * time.Minute
	DefaultDedupRetention   = 24 * time.Hour
	DefaultMaxBatchLines    = 1000
	DefaultBigQueryDataset  = "ledger"
	DefaultSQLitePath       = "ledger.db"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendBigQuery = "bigquery"
)

// Config is the full configuration of a ledger binary.
type Config struct {
	// ArbitrationFloor is the minimum engine confidence for arbitration.
	ArbitrationFloor float64
	// GrammarFloor is the minimum confidence of an accepted grammar extraction.
	GrammarFloor float64
	// HeuristicFloor is the minimum confidence of an accepted heuristic extraction.
	HeuristicFloor float64

	DuplicateWindow time.Duration
	DedupRetention  time.Duration
	MaxBatchLines   int

	LogLevel string
	// APIToken is a secret.
	APIToken string

	Backend         string
	SQLitePath      string
	GCPProject      string
	BigQueryDataset string
	ArchiveBucket   string

	// NotionToken is a secret.
	NotionToken      string
	NotionDatabaseID string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ArbitrationFloor: DefaultArbitrationFloor,
		GrammarFloor:     DefaultGrammarFloor,
		HeuristicFloor:   DefaultHeuristicFloor,
		DuplicateWindow:  DefaultDuplicateWindow,
		DedupRetention:   DefaultDedupRetention,
		MaxBatchLines:    DefaultMaxBatchLines,
		LogLevel:         "info",
		Backend:          BackendSQLite,
		SQLitePath:       DefaultSQLitePath,
		BigQueryDataset:  DefaultBigQueryDataset,
	}
}

// FromEnv returns Default overlaid with the process environment.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()

	if v, ok := lookup("LEDGER_DUPLICATE_WINDOW_MINUTES"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("config.FromEnv: LEDGER_DUPLICATE_WINDOW_MINUTES: %w", err)
		}
		c.DuplicateWindow = time.Duration(n) * time.Minute
	}
	if v, ok := lookup("LEDGER_MAX_BATCH_LINES"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("config.FromEnv: LEDGER_MAX_BATCH_LINES: %w", err)
		}
		c.MaxBatchLines = n
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("LEDGER_LOG_LEVEL", &c.LogLevel)
	str("LEDGER_BACKEND", &c.Backend)
	str("LEDGER_SQLITE_PATH", &c.SQLitePath)
	str("LEDGER_API_TOKEN", &c.APIToken)
	str("GCP_PROJECT", &c.GCPProject)
	str("BQ_DATASET", &c.BigQueryDataset)
	str("GCS_BUCKET", &c.ArchiveBucket)
	str("NOTION_TOKEN", &c.NotionToken)
	str("NOTION_EVENTS_DB_ID", &c.NotionDatabaseID)

	return c, c.Validate()
}

// BindFlags registers flags whose defaults are the current values of c.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.DurationVar(&c.DuplicateWindow, "dup-window", c.DuplicateWindow, "duplicate suppression window")
	fs.IntVar(&c.MaxBatchLines, "max-batch-lines", c.MaxBatchLines, "maximum lines per batch")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.Backend, "backend", c.Backend, "event store: sqlite or bigquery (or set LEDGER_BACKEND env)")
	fs.StringVar(&c.SQLitePath, "sqlite", c.SQLitePath, "SQLite database path (or set LEDGER_SQLITE_PATH env)")
	fs.StringVar(&c.GCPProject, "project", c.GCPProject, "GCP project ID (or set GCP_PROJECT env)")
	fs.StringVar(&c.BigQueryDataset, "dataset", c.BigQueryDataset, "BigQuery dataset (or set BQ_DATASET env)")
	fs.StringVar(&c.ArchiveBucket, "bucket", c.ArchiveBucket, "GCS bucket for raw archives (or set GCS_BUCKET env)")
}

// Validate checks that thresholds and limits are usable.
func (c Config) Validate() error {
	var errs []error
	for name, v := range map[string]float64{
		"arbitration floor": c.ArbitrationFloor,
		"grammar floor":     c.GrammarFloor,
		"heuristic floor":   c.HeuristicFloor,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s %.2f not in [0,1]", name, v))
		}
	}
	if c.DuplicateWindow <= 0 {
		errs = append(errs, fmt.Errorf("duplicate window %s must be positive", c.DuplicateWindow))
	}
	if c.DedupRetention < c.DuplicateWindow {
		errs = append(errs, fmt.Errorf("dedup retention %s shorter than window %s", c.DedupRetention, c.DuplicateWindow))
	}
	if c.MaxBatchLines <= 0 {
		errs = append(errs, fmt.Errorf("max batch lines %d must be positive", c.MaxBatchLines))
	}
	switch c.Backend {
	case BackendSQLite:
	case BackendBigQuery:
		if c.GCPProject == "" {
			errs = append(errs, errors.New("bigquery backend requires a GCP project"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}
	return nil
}

// Window converts a caller-supplied minute count into a duration, falling
// back to the configured window when minutes is not positive.
func (c Config) Window(minutes int) time.Duration {
	if minutes <= 0 {
		return c.DuplicateWindow
	}
	return time.Duration(minutes) * time.Minute
}
