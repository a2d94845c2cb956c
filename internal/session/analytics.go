package session

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/stats"
	"github.com/verte-zerg/typist/internal/store"
)

const (
	defaultProblemLimit  = 10
	defaultProgressDays  = 30
	defaultProfileWindow = 20
	recentSessions       = 10
)

// CharacterProblemsReport lists characters typed wrong across all sessions.
type CharacterProblemsReport struct {
	ProblematicCharacters []model.CharacterProblem `json:"problematic_characters"`
	TotalSessionsAnalyzed int                      `json:"total_sessions_analyzed"`
}

// CharacterProblems ranks characters by error count over every ended session.
func (s *Service) CharacterProblems(ctx context.Context, userID int64, limit int) (CharacterProblemsReport, error) {
	if limit <= 0 {
		limit = defaultProblemLimit
	}
	report, err := stats.BuildReport(ctx, s.store, userID, 0)
	if err != nil {
		return CharacterProblemsReport{}, err
	}
	return CharacterProblemsReport{
		ProblematicCharacters: stats.CharacterProblems(report.Chars, limit),
		TotalSessionsAnalyzed: len(report.Sessions),
	}, nil
}

// Progress summarizes sessions ended within the last days.
func (s *Service) Progress(ctx context.Context, userID int64, days int) (model.Progress, error) {
	if days < 0 {
		return model.Progress{}, fmt.Errorf("%w: days must be positive", model.ErrValidation)
	}
	if days == 0 {
		days = defaultProgressDays
	}
	since := s.opts.Now().Add(-time.Duration(days) * 24 * time.Hour)
	sessions, err := s.store.ListSessionAggregates(ctx, userID, store.SessionFilter{Since: &since})
	if err != nil {
		return model.Progress{}, err
	}
	return stats.BuildProgress(sessions, recentSessions), nil
}

// Profile rolls up the last window ended sessions.
func (s *Service) Profile(ctx context.Context, userID int64, window int) (model.Profile, error) {
	if window <= 0 {
		window = defaultProfileWindow
	}
	report, err := stats.BuildReport(ctx, s.store, userID, window)
	if err != nil {
		return model.Profile{}, err
	}
	return report.Profile(s.opts.Top), nil
}
