// Package model defines shared data structures.
package model

import "time"

// Config defines session settings.
type Config struct {
	ISI          int
	Duration     int
	Min          int
	Max          int
	PoolFile     string
	Seed         *uint64
	Sound        string
	SoundCommand string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Trial is one resolved stimulus within a session.
type Trial struct {
	Ordinal  int    `json:"ordinal" yaml:"ordinal"`
	Stimulus int    `json:"stimulus" yaml:"stimulus"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	ISIMs    int    `json:"isi_ms" yaml:"isi_ms"`
}

// SessionResult captures a finished PASAT session.
type SessionResult struct {
	RunID       string
	StartedAt   time.Time
	EndedAt     time.Time
	DurationMin int
	StartISIMs  int
	FinalISIMs  int
	MinISIMs    int
	Right       int
	Wrong       int
	Missed      int
	StoppedBy   string
	Trials      []Trial
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID   int64     `json:"id" yaml:"id"`
	RunID       string    `json:"run_id" yaml:"run_id"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	EndedAt     time.Time `json:"ended_at" yaml:"ended_at"`
	DurationMin int       `json:"duration_min" yaml:"duration_min"`
	StartISIMs  int       `json:"start_isi_ms" yaml:"start_isi_ms"`
	FinalISIMs  int       `json:"final_isi_ms" yaml:"final_isi_ms"`
	MinISIMs    int       `json:"min_isi_ms" yaml:"min_isi_ms"`
	Right       int       `json:"right" yaml:"right"`
	Wrong       int       `json:"wrong" yaml:"wrong"`
	Missed      int       `json:"missed" yaml:"missed"`
	StoppedBy   string    `json:"stopped_by" yaml:"stopped_by"`
}

// Total returns the number of resolved trials.
func (s SessionAggregate) Total() int {
	return s.Right + s.Wrong + s.Missed
}
