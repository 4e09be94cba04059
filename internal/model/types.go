// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	LineWidth  int
	Lines      int
	WordsFile  string
	WordFilter string
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	Journal    string
}

// ExtremeConfig defines settings for the extreme line source.
type ExtremeConfig struct {
	WordsFile string
	Lines     int
	Header    string
}

// HistoryConfig defines filters for run history output.
type HistoryConfig struct {
	Source      string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// PracticeLine is one target line of a session.
type PracticeLine struct {
	Text  string
	Index int
	Total int
}

// LineResult captures a fully typed line.
type LineResult struct {
	Text     string
	Chars    int
	Mistakes int
	Elapsed  time.Duration
}

// SessionReport captures a finished or abandoned session.
type SessionReport struct {
	ID         string
	Source     string
	StartedAt  time.Time
	EndedAt    time.Time
	TotalLines int
	Aborted    bool
	Lines      []LineResult
}

// RunAggregate summarizes a stored run for reporting.
type RunAggregate struct {
	ID         string
	Source     string
	EndedAt    time.Time
	Lines      int
	TotalLines int
	Aborted    bool
	Chars      int
	Mistakes   int
	DurationMs int64
}
