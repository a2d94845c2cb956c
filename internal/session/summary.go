package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/stats"
	"github.com/verte-zerg/typist/internal/store"
)

type computed struct {
	summary model.Summary
	timing  model.Timing
	chars   []model.CharStats
	bigrams []model.BigramStats
	errs    []model.ErrorKindCount
}

// Summary computes the performance record of an ended session and persists
// its metrics. Repeated calls overwrite the same values.
func (s *Service) Summary(ctx context.Context, userID, sessionID int64) (model.Summary, error) {
	var out model.Summary
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		res, err := s.summarize(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		out = res.summary
		return nil
	})
	return out, err
}

// Analysis breaks down one ended session.
func (s *Service) Analysis(ctx context.Context, userID, sessionID int64) (model.DetailedAnalysis, error) {
	var out model.DetailedAnalysis
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		res, err := s.summarize(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		out = stats.BuildDetailedAnalysis(sessionID, res.summary, res.timing, res.chars, res.bigrams, res.errs, s.opts.Top)
		return nil
	})
	return out, err
}

func (s *Service) summarize(ctx context.Context, tx *store.Store, userID, sessionID int64) (computed, error) {
	sess, err := s.owned(ctx, tx, userID, sessionID)
	if err != nil {
		return computed{}, err
	}
	if !sess.Ended() {
		return computed{}, ErrSessionNotEnded
	}
	events, err := tx.ListKeystrokes(ctx, sessionID)
	if err != nil {
		return computed{}, err
	}

	res, err := compute(sess, events, s.opts.Basis)
	if err != nil {
		log.Error().Err(err).Int64("session_id", sessionID).Msg("summary rejected")
		return computed{}, err
	}

	metrics := model.SessionMetrics{
		AccuracyPercentage:  res.summary.AccuracyPercentage,
		ErrorCount:          res.summary.ErrorCount,
		CorrectionCount:     res.summary.CorrectionCount,
		WordsPerMinute:      res.summary.WPM,
		CharactersPerMinute: res.summary.CharactersPerMinute,
	}
	if err := tx.SaveMetrics(ctx, sessionID, res.summary.DurationSecs, metrics); err != nil {
		return computed{}, err
	}
	if err := tx.ReplaceSessionStats(ctx, sessionID, res.chars, res.bigrams, res.errs); err != nil {
		return computed{}, err
	}
	return res, nil
}

// compute is the pure part of the summary: alignment, classification, and
// timing over already loaded data.
func compute(sess model.Session, events []model.KeystrokeEvent, basis model.WPMBasis) (computed, error) {
	input := ""
	if sess.UserInput != nil {
		input = *sess.UserInput
	}
	timing, err := stats.AnalyzeTiming(events, sess.UserInput, basis)
	if err != nil {
		return computed{}, err
	}
	analysis := stats.Classify(sess.TargetText, input)

	summary := model.Summary{
		SessionID:           sess.ID,
		DurationSecs:        timing.DurationSecs,
		KeystrokeCount:      timing.KeystrokeCount,
		WPM:                 timing.WPM,
		CharactersPerMinute: timing.CharactersPerMinute,
		AvgDwellMs:          timing.AvgDwellMs,
		AvgFlightMs:         timing.AvgFlightMs,
		AccuracyPercentage:  stats.Accuracy(sess.TargetText, input),
		ErrorCount:          analysis.TotalErrors,
		CorrectionCount:     timing.CorrectionCount,
		ErrorDetails:        &analysis,
		UserInput:           sess.UserInput,
		TargetText:          sess.TargetText,
	}
	return computed{
		summary: summary,
		timing:  timing,
		chars:   stats.SessionCharStats(sess.TargetText, events, analysis),
		bigrams: stats.SessionBigramStats(events),
		errs:    stats.SessionErrorCounts(analysis, events),
	}, nil
}
