package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuipasat/internal/model"
)

func sampleRecords() []Record {
	sessions := []model.SessionAggregate{
		{
			SessionID:   7,
			RunID:       "run-7",
			StartedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			EndedAt:     time.Date(2026, 1, 2, 3, 9, 5, 0, time.UTC),
			DurationMin: 5,
			StartISIMs:  3000,
			FinalISIMs:  2800,
			MinISIMs:    2800,
			Right:       1,
			Missed:      1,
			StoppedBy:   "automatic",
		},
		{SessionID: 8, RunID: "run-8"},
	}
	trials := map[int64][]model.Trial{
		7: {
			{Ordinal: 1, Stimulus: 3, Outcome: "right", ISIMs: 3000},
			{Ordinal: 2, Stimulus: 8, Outcome: "missed", ISIMs: 2900},
		},
	}
	return Records(sessions, trials)
}

func TestParseFormat(t *testing.T) {
	cases := map[string]string{"yaml": FormatYAML, "YML": FormatYAML, " json ": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Fatalf("expected error for csv")
	}
}

func TestRecordsKeepsOrderAndEmptyTrials(t *testing.T) {
	records := sampleRecords()
	if len(records) != 2 || records[0].SessionID != 7 || records[1].SessionID != 8 {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[1].Trials == nil || len(records[1].Trials) != 0 {
		t.Fatalf("expected empty trial list, got %#v", records[1].Trials)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0]["run_id"] != "run-7" {
		t.Fatalf("expected flattened run_id, got %v", decoded[0])
	}
	trials, ok := decoded[0]["trials"].([]any)
	if !ok || len(trials) != 2 {
		t.Fatalf("unexpected trials: %v", decoded[0]["trials"])
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "run_id: run-7") || !strings.Contains(out, "outcome: missed") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
	var decoded []Record
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 || decoded[0].FinalISIMs != 2800 || len(decoded[0].Trials) != 2 {
		t.Fatalf("unexpected decoded records: %+v", decoded)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "csv", nil); err == nil {
		t.Fatalf("expected error")
	}
}
