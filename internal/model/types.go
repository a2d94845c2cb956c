// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/goccy/go-json"
)

// WPMBasis selects the character count used for speed metrics.
type WPMBasis string

const (
	// WPMBasisInput counts runes of the submitted input, falling back to keystrokes.
	WPMBasisInput WPMBasis = "input"
	// WPMBasisKeystrokes counts raw keystroke events.
	WPMBasisKeystrokes WPMBasis = "keystrokes"
)

// Valid reports whether b is a known basis.
func (b WPMBasis) Valid() bool {
	return b == WPMBasisInput || b == WPMBasisKeystrokes
}

// Config defines practice settings used to generate target texts.
type Config struct {
	Lang       string
	Words      int
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// User is an account that owns sessions.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Session is one typing attempt against a fixed target text.
type Session struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	TargetText      string     `json:"target_text"`
	UserInput       *string    `json:"user_input,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	TypingStartedAt *time.Time `json:"typing_started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`

	AccuracyPercentage  *float64 `json:"accuracy_percentage,omitempty"`
	ErrorCount          *int     `json:"error_count,omitempty"`
	CorrectionCount     *int     `json:"correction_count,omitempty"`
	WordsPerMinute      *float64 `json:"words_per_minute,omitempty"`
	CharactersPerMinute *float64 `json:"characters_per_minute,omitempty"`
}

// Ended reports whether the session has an end timestamp.
func (s Session) Ended() bool {
	return s.EndedAt != nil
}

// KeystrokeEvent is one key press/release pair. Timestamps are epoch seconds.
type KeystrokeEvent struct {
	ID             int64   `json:"-"`
	SessionID      int64   `json:"-"`
	Seq            int     `json:"-"`
	Key            string  `json:"key"`
	DownTS         float64 `json:"down_ts"`
	UpTS           float64 `json:"up_ts"`
	TargetChar     *string `json:"target_char,omitempty"`
	PositionInText *int    `json:"position_in_text,omitempty"`
	IsCorrection   *string `json:"is_correction,omitempty"`
	IsError        *string `json:"is_error,omitempty"`
}

// SessionMetrics holds the scalar metrics persisted on a session.
type SessionMetrics struct {
	AccuracyPercentage  float64
	ErrorCount          int
	CorrectionCount     int
	WordsPerMinute      float64
	CharactersPerMinute float64
}

// Timing is the output of the keystroke timing analysis.
type Timing struct {
	DurationSecs        float64   `json:"duration_secs"`
	KeystrokeCount      int       `json:"keystroke_count"`
	DwellMs             []float64 `json:"-"`
	FlightMs            []float64 `json:"-"`
	AvgDwellMs          float64   `json:"avg_dwell_ms"`
	AvgFlightMs         float64   `json:"avg_flight_ms"`
	WPM                 float64   `json:"wpm"`
	CharactersPerMinute float64   `json:"characters_per_minute"`
	CorrectionCount     int       `json:"correction_count"`
}

// ErrorDetail describes one divergence between target and input.
type ErrorDetail struct {
	Position int    `json:"position"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ErrorAnalysis is the structured error report for a session.
type ErrorAnalysis struct {
	TotalErrors           int            `json:"total_errors"`
	Substitutions         []ErrorDetail  `json:"substitutions"`
	Insertions            []ErrorDetail  `json:"insertions"`
	Deletions             []ErrorDetail  `json:"deletions"`
	ErrorPositions        []int          `json:"error_positions"`
	ProblematicCharacters map[string]int `json:"problematic_characters"`
	AccuracyByPosition    []int          `json:"accuracy_by_position"`
	ErrorRate             float64        `json:"error_rate"`
}

// Summary is the computed performance record for an ended session.
type Summary struct {
	SessionID           int64          `json:"session_id"`
	DurationSecs        float64        `json:"duration_secs"`
	KeystrokeCount      int            `json:"keystroke_count"`
	WPM                 float64        `json:"wpm"`
	CharactersPerMinute float64        `json:"characters_per_minute"`
	AvgDwellMs          float64        `json:"avg_dwell_ms"`
	AvgFlightMs         float64        `json:"avg_flight_ms"`
	AccuracyPercentage  float64        `json:"accuracy_percentage"`
	ErrorCount          int            `json:"error_count"`
	CorrectionCount     int            `json:"correction_count"`
	ErrorDetails        *ErrorAnalysis `json:"error_details"`
	UserInput           *string        `json:"user_input"`
	TargetText          string         `json:"target_text"`
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char       string
	Correct    int
	Incorrect  int
	DwellSumMs float64
	DwellCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char       string
	Correct    int
	Incorrect  int
	DwellSumMs float64
	DwellCount int64
}

// BigramStats stores flight timing for a consecutive character pair.
type BigramStats struct {
	Bigram      string
	FlightSumMs float64
	Count       int64
}

// ErrorKindCount counts errors of one kind.
type ErrorKindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// SessionAggregate summarizes an ended session for reporting.
type SessionAggregate struct {
	SessionID          int64     `json:"id"`
	StartedAt          time.Time `json:"started_at"`
	EndedAt            time.Time `json:"ended_at"`
	TargetText         string    `json:"target_text"`
	WordsPerMinute     float64   `json:"words_per_minute"`
	AccuracyPercentage float64   `json:"accuracy_percentage"`
	ErrorCount         int       `json:"error_count"`
	CorrectionCount    int       `json:"correction_count"`
	DurationSecs       float64   `json:"duration_secs"`
	Computed           bool      `json:"computed"`
}

// MarshalJSON writes the derived metrics as null until the session has been
// summarized.
func (a SessionAggregate) MarshalJSON() ([]byte, error) {
	out := struct {
		SessionID          int64     `json:"id"`
		StartedAt          time.Time `json:"started_at"`
		EndedAt            time.Time `json:"ended_at"`
		TargetText         string    `json:"target_text"`
		Computed           bool      `json:"computed"`
		WordsPerMinute     *float64  `json:"words_per_minute"`
		AccuracyPercentage *float64  `json:"accuracy_percentage"`
		ErrorCount         *int      `json:"error_count"`
		CorrectionCount    *int      `json:"correction_count"`
		DurationSecs       *float64  `json:"duration_secs"`
	}{
		SessionID:  a.SessionID,
		StartedAt:  a.StartedAt,
		EndedAt:    a.EndedAt,
		TargetText: a.TargetText,
		Computed:   a.Computed,
	}
	if a.Computed {
		out.WordsPerMinute = &a.WordsPerMinute
		out.AccuracyPercentage = &a.AccuracyPercentage
		out.ErrorCount = &a.ErrorCount
		out.CorrectionCount = &a.CorrectionCount
		out.DurationSecs = &a.DurationSecs
	}
	return json.Marshal(out)
}

// CharacterAnalysis ranks one character by timing and errors.
type CharacterAnalysis struct {
	Char            string  `json:"char"`
	AvgDwellTime    float64 `json:"avg_dwell_time"`
	DwellCount      int64   `json:"dwell_count"`
	ErrorCount      int     `json:"error_count"`
	DifficultyScore float64 `json:"difficulty_score"`
}

// BigramAnalysis ranks one bigram by transition timing.
type BigramAnalysis struct {
	Bigram          string  `json:"bigram"`
	AvgFlightTime   float64 `json:"avg_flight_time"`
	Count           int64   `json:"count"`
	DifficultyScore float64 `json:"difficulty_score"`
}

// DetailedAnalysis breaks down a single session.
type DetailedAnalysis struct {
	SessionID        int64               `json:"session_id"`
	SlowCharacters   []CharacterAnalysis `json:"slow_characters"`
	DifficultBigrams []BigramAnalysis    `json:"difficult_bigrams"`
	CommonErrors     map[string]int      `json:"common_errors"`
	TypingRhythm     map[string]float64  `json:"typing_rhythm"`
	ImprovementAreas []string            `json:"improvement_areas"`
}

// Profile rolls statistics across a user's sessions.
type Profile struct {
	SessionsAnalyzed int                 `json:"sessions_analyzed"`
	AvgWPM           float64             `json:"avg_wpm"`
	AvgAccuracy      float64             `json:"avg_accuracy"`
	SlowCharacters   []CharacterAnalysis `json:"slow_characters"`
	DifficultBigrams []BigramAnalysis    `json:"difficult_bigrams"`
	CommonErrors     []ErrorKindCount    `json:"common_errors"`
}

// CharacterProblem reports the error rate of one expected character.
type CharacterProblem struct {
	Character  string  `json:"character"`
	ErrorCount int     `json:"error_count"`
	TotalTyped int     `json:"total_typed"`
	ErrorRate  float64 `json:"error_rate"`
}

// Progress reports practice trends over a time window.
type Progress struct {
	SessionsAnalyzed  int                `json:"sessions_analyzed"`
	AvgWPM            float64            `json:"avg_wpm"`
	AvgAccuracy       float64            `json:"avg_accuracy"`
	TotalPracticeTime float64            `json:"total_practice_time"`
	ImprovementTrend  string             `json:"improvement_trend"`
	RecentSessions    []SessionAggregate `json:"recent_sessions"`
}
