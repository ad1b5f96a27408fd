package main

import (
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/notification-ledger/internal/migrate"
)

func TestStatusLines(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	migrations := []migrate.Migration{
		{Version: 1, Name: "create_events", Checksum: "aaa"},
		{Version: 2, Name: "create_runs", Checksum: "bbb"},
		{Version: 3, Name: "add_index", Checksum: "ccc"},
	}

	tests := []struct {
		name    string
		applied []migrate.Applied
		want    []string
	}{
		{
			name: "nothing applied",
			want: []string{"[PENDING] 0001_create_events", "[PENDING] 0002_create_runs", "[PENDING] 0003_add_index"},
		},
		{
			name: "partially applied",
			applied: []migrate.Applied{
				{Version: 1, Name: "create_events", Checksum: "aaa", AppliedAt: at},
				{Version: 2, Name: "create_runs", Checksum: "old", AppliedAt: at},
			},
			want: []string{"[OK]      0001_create_events", "[CHANGED] 0002_create_runs", "[PENDING] 0003_add_index"},
		},
		{
			name: "unknown recorded version",
			applied: []migrate.Applied{
				{Version: 1, Name: "create_events", AppliedAt: at},
				{Version: 9, Name: "dropped", AppliedAt: at},
			},
			want: []string{"[OK]      0001_create_events", "[PENDING] 0002_create_runs", "[PENDING] 0003_add_index", "[UNKNOWN] 0009_dropped"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusLines(migrations, tt.applied)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines, want %d: %q", len(got), len(tt.want), got)
			}
			for i, w := range tt.want {
				if !strings.Contains(got[i], w) {
					t.Errorf("line %d = %q, want it to contain %q", i, got[i], w)
				}
			}
		})
	}
}

func TestEmbeddedBackendsAgree(t *testing.T) {
	lite, err := migrate.Load(migrate.BackendSQLite, nil)
	if err != nil {
		t.Fatal(err)
	}
	bq, err := migrate.Load(migrate.BackendBigQuery, map[string]string{"PROJECT_ID": "p", "DATASET_ID": "d"})
	if err != nil {
		t.Fatal(err)
	}
	if len(lite) != len(bq) {
		t.Fatalf("sqlite has %d migrations, bigquery %d", len(lite), len(bq))
	}
	for i := range lite {
		if lite[i].Version != bq[i].Version || lite[i].Name != bq[i].Name {
			t.Errorf("migration %d differs: %04d_%s vs %04d_%s", i, lite[i].Version, lite[i].Name, bq[i].Version, bq[i].Name)
		}
	}
}
