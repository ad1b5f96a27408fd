package main

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/dvloznov/notification-ledger/internal/jobs"
)

func TestBuildJobs(t *testing.T) {
	files := map[string]string{"batch.txt": "line one\nline two"}
	readFile := func(name string) ([]byte, error) {
		if s, ok := files[name]; ok {
			return []byte(s), nil
		}
		return nil, fs.ErrNotExist
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, got []*jobs.IngestBatchJob)
	}{
		{name: "no args", wantErr: true},
		{name: "bad uri", args: []string{"gs://bucket"}, wantErr: true},
		{name: "missing file", args: []string{"nope.txt"}, wantErr: true},
		{
			name: "mixed",
			args: []string{"gs://b/raw/x.txt", "batch.txt", "-"},
			check: func(t *testing.T, got []*jobs.IngestBatchJob) {
				if len(got) != 3 {
					t.Fatalf("got %d jobs", len(got))
				}
				if got[0].GCSURI != "gs://b/raw/x.txt" || got[0].Text != "" {
					t.Errorf("object job = %+v", got[0])
				}
				if got[1].Text != "line one\nline two" {
					t.Errorf("file job text = %q", got[1].Text)
				}
				if got[2].Text != "from stdin" {
					t.Errorf("stdin job text = %q", got[2].Text)
				}
				for _, j := range got {
					if j.LocaleHint != "KR" || j.WindowMinutes != 7 {
						t.Errorf("job options = %q/%d", j.LocaleHint, j.WindowMinutes)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildJobs(tt.args, "KR", 7, strings.NewReader("from stdin"), readFile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, got)
			}
			if tt.name == "missing file" && !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("err = %v, want ErrNotExist", err)
			}
		})
	}
}

func TestTallyAndDescribe(t *testing.T) {
	list := []*jobs.IngestBatchJob{
		{JobID: "a", Status: jobs.JobStatusCompleted, Summary: &jobs.Summary{Accepted: 2, Stored: 1}},
		{JobID: "b", Status: jobs.JobStatusFailed, GCSURI: "gs://b/o", Error: "boom"},
		{JobID: "c", Status: jobs.JobStatusRetrying},
	}
	done, failed := tally(list)
	if done != 2 || failed != 1 {
		t.Errorf("tally = %d/%d, want 2/1", done, failed)
	}

	if got := describe(list[0]); !strings.Contains(got, "inline") || !strings.Contains(got, "accepted=2") {
		t.Errorf("describe = %q", got)
	}
	if got := describe(list[1]); !strings.Contains(got, "gs://b/o") || !strings.Contains(got, "error=boom") {
		t.Errorf("describe = %q", got)
	}
}
