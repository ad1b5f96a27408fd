package config

import (
	"flag"
	"strings"
	"testing"
	"time"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default() invalid: %v", err)
	}
	if c.ArbitrationFloor != 0.5 || c.GrammarFloor != 0.7 || c.HeuristicFloor != 0.5 {
		t.Errorf("floors = %v/%v/%v", c.ArbitrationFloor, c.GrammarFloor, c.HeuristicFloor)
	}
	if c.DuplicateWindow != 5*time.Minute || c.DedupRetention != 24*time.Hour {
		t.Errorf("window = %s, retention = %s", c.DuplicateWindow, c.DedupRetention)
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, c Config)
		wantErr string
	}{
		{
			name: "empty environment keeps defaults",
			env:  map[string]string{},
			check: func(t *testing.T, c Config) {
				if c.BigQueryDataset != DefaultBigQueryDataset {
					t.Errorf("BigQueryDataset = %q", c.BigQueryDataset)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"LEDGER_DUPLICATE_WINDOW_MINUTES": "10",
				"LEDGER_LOG_LEVEL":                "debug",
				"GCP_PROJECT":                     "proj",
				"GCS_BUCKET":                      "raw",
				"NOTION_EVENTS_DB_ID":             "db",
			},
			check: func(t *testing.T, c Config) {
				if c.DuplicateWindow != 10*time.Minute {
					t.Errorf("DuplicateWindow = %s", c.DuplicateWindow)
				}
				if c.LogLevel != "debug" || c.GCPProject != "proj" || c.ArchiveBucket != "raw" || c.NotionDatabaseID != "db" {
					t.Errorf("unexpected config %+v", c)
				}
			},
		},
		{
			name:    "non-numeric window",
			env:     map[string]string{"LEDGER_DUPLICATE_WINDOW_MINUTES": "five"},
			wantErr: "LEDGER_DUPLICATE_WINDOW_MINUTES",
		},
		{
			name:    "zero window fails validation",
			env:     map[string]string{"LEDGER_DUPLICATE_WINDOW_MINUTES": "0"},
			wantErr: "duplicate window",
		},
		{
			name:    "negative batch size",
			env:     map[string]string{"LEDGER_MAX_BATCH_LINES": "-1"},
			wantErr: "max batch lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := fromLookup(mapLookup(tt.env))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, c)
		})
	}
}

func TestValidate_Floors(t *testing.T) {
	c := Default()
	c.GrammarFloor = 1.5
	c.HeuristicFloor = -0.1
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"grammar floor", "heuristic floor"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidate_Backend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		project string
		wantErr string
	}{
		{name: "sqlite", backend: BackendSQLite},
		{name: "bigquery with project", backend: BackendBigQuery, project: "p"},
		{name: "bigquery without project", backend: BackendBigQuery, wantErr: "GCP project"},
		{name: "unknown", backend: "postgres", wantErr: "unknown backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			c.Backend = tt.backend
			c.GCPProject = tt.project
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBindFlags(t *testing.T) {
	c := Default()
	c.GCPProject = "from-env"

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.BindFlags(fs)
	if err := fs.Parse([]string{"-dup-window", "2m", "-dataset", "other"}); err != nil {
		t.Fatal(err)
	}

	if c.DuplicateWindow != 2*time.Minute || c.BigQueryDataset != "other" {
		t.Errorf("flags not applied: %+v", c)
	}
	if c.GCPProject != "from-env" {
		t.Errorf("unset flag overwrote env value: %q", c.GCPProject)
	}
}

func TestWindow(t *testing.T) {
	c := Default()
	if got := c.Window(0); got != 5*time.Minute {
		t.Errorf("Window(0) = %s", got)
	}
	if got := c.Window(-3); got != 5*time.Minute {
		t.Errorf("Window(-3) = %s", got)
	}
	if got := c.Window(15); got != 15*time.Minute {
		t.Errorf("Window(15) = %s", got)
	}
}
