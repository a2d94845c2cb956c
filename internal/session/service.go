// Package session runs the typing session lifecycle and computes summaries.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/stats"
	"github.com/verte-zerg/typist/internal/store"
)

var (
	// ErrSessionEnded is returned when mutating a session that already ended.
	ErrSessionEnded = fmt.Errorf("%w: session already ended", model.ErrInvalidState)
	// ErrSessionNotEnded is returned when a summary is requested before the session ended.
	ErrSessionNotEnded = fmt.Errorf("%w: session has not ended", model.ErrInvalidState)
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultTop          = 10
)

// WordSource returns the word list for a language.
type WordSource func(lang string) ([]string, error)

// Options configures a Service.
type Options struct {
	Basis    model.WPMBasis
	Practice model.Config
	Words    WordSource
	Top      int
	Now      func() time.Time
}

// Service orchestrates sessions on top of the store.
type Service struct {
	store *store.Store
	gen   *generator.Generator
	opts  Options
}

// NewService builds a Service. Zero options fall back to defaults.
func NewService(st *store.Store, gen *generator.Generator, opts Options) *Service {
	if !opts.Basis.Valid() {
		opts.Basis = model.WPMBasisInput
	}
	if opts.Top <= 0 {
		opts.Top = defaultTop
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if gen == nil {
		gen = generator.New()
	}
	return &Service{store: st, gen: gen, opts: opts}
}

// Start opens a session. An empty prompt is replaced by generated text.
func (s *Service) Start(ctx context.Context, userID int64, prompt string) (model.Session, error) {
	if strings.TrimSpace(prompt) == "" {
		generated, err := s.generatePrompt(ctx, userID)
		if err != nil {
			return model.Session{}, err
		}
		prompt = generated
	}
	sess, err := s.store.CreateSession(ctx, userID, prompt, s.opts.Now())
	if err != nil {
		return model.Session{}, err
	}
	log.Debug().Int64("session_id", sess.ID).Int64("user_id", userID).Msg("session started")
	return sess, nil
}

// Restart opens a new session with the target text of an existing one.
func (s *Service) Restart(ctx context.Context, userID, sessionID int64) (model.Session, error) {
	old, err := s.owned(ctx, s.store, userID, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	sess, err := s.store.CreateSession(ctx, userID, old.TargetText, s.opts.Now())
	if err != nil {
		return model.Session{}, err
	}
	log.Debug().Int64("session_id", sess.ID).Int64("restarted_from", sessionID).Msg("session restarted")
	return sess, nil
}

// UploadKeystrokes validates and appends a batch of events. Nothing is
// stored when any event is invalid.
func (s *Service) UploadKeystrokes(ctx context.Context, userID, sessionID int64, batch []KeystrokeInput) (int, error) {
	events, err := ValidateBatch(batch)
	if err != nil {
		return 0, err
	}
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		return s.appendKeystrokes(ctx, tx, userID, sessionID, events)
	})
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// UpdateInput replaces the submitted input of an open session.
func (s *Service) UpdateInput(ctx context.Context, userID, sessionID int64, input string) (model.Session, error) {
	var out model.Session
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		sess, err := s.open(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if err := tx.SetUserInput(ctx, sessionID, input); err != nil {
			return err
		}
		sess.UserInput = &input
		out = sess
		return nil
	})
	return out, err
}

// End stamps the end time of a session. A session ends exactly once.
func (s *Service) End(ctx context.Context, userID, sessionID int64) (time.Time, error) {
	var endedAt time.Time
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		var err error
		endedAt, err = s.end(ctx, tx, userID, sessionID)
		return err
	})
	return endedAt, err
}

// Complete uploads the final events and input, ends the session, and
// returns its summary in one transaction.
func (s *Service) Complete(ctx context.Context, userID, sessionID int64, batch []KeystrokeInput, input *string) (model.Summary, error) {
	events, err := ValidateBatch(batch)
	if err != nil {
		return model.Summary{}, err
	}
	var out model.Summary
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		if err := s.appendKeystrokes(ctx, tx, userID, sessionID, events); err != nil {
			return err
		}
		if input != nil {
			if err := tx.SetUserInput(ctx, sessionID, *input); err != nil {
				return err
			}
		}
		if _, err := s.end(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		res, err := s.summarize(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		out = res.summary
		return nil
	})
	return out, err
}

// HistoryPage is one page of ended sessions, newest first.
type HistoryPage struct {
	Sessions   []model.SessionAggregate `json:"sessions"`
	TotalCount int                      `json:"total_count"`
	Offset     int                      `json:"offset"`
	Limit      int                      `json:"limit"`
}

// History lists ended sessions with their metrics.
func (s *Service) History(ctx context.Context, userID int64, limit, offset int) (HistoryPage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	offset = max(offset, 0)
	sessions, total, err := s.store.ListEndedSessions(ctx, userID, limit, offset)
	if err != nil {
		return HistoryPage{}, err
	}
	return HistoryPage{Sessions: sessions, TotalCount: total, Offset: offset, Limit: limit}, nil
}

func (s *Service) appendKeystrokes(ctx context.Context, tx *store.Store, userID, sessionID int64, events []model.KeystrokeEvent) error {
	if _, err := s.open(ctx, tx, userID, sessionID); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	if err := tx.InsertKeystrokes(ctx, sessionID, events); err != nil {
		return err
	}
	if err := tx.MarkTypingStarted(ctx, sessionID, s.opts.Now()); err != nil {
		return err
	}
	log.Debug().Int64("session_id", sessionID).Int("count", len(events)).Msg("keystrokes stored")
	return nil
}

func (s *Service) end(ctx context.Context, tx *store.Store, userID, sessionID int64) (time.Time, error) {
	if _, err := s.owned(ctx, tx, userID, sessionID); err != nil {
		return time.Time{}, err
	}
	endedAt := s.opts.Now().UTC()
	ok, err := tx.EndSession(ctx, sessionID, endedAt)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, ErrSessionEnded
	}
	log.Debug().Int64("session_id", sessionID).Msg("session ended")
	return endedAt, nil
}

// owned loads a session of userID. Foreign sessions are reported as missing.
func (s *Service) owned(ctx context.Context, st *store.Store, userID, sessionID int64) (model.Session, error) {
	sess, err := st.GetSession(ctx, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if sess == nil || sess.UserID != userID {
		return model.Session{}, fmt.Errorf("session %d: %w", sessionID, model.ErrNotFound)
	}
	return *sess, nil
}

func (s *Service) open(ctx context.Context, st *store.Store, userID, sessionID int64) (model.Session, error) {
	sess, err := s.owned(ctx, st, userID, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if sess.Ended() {
		return model.Session{}, ErrSessionEnded
	}
	return sess, nil
}

func (s *Service) generatePrompt(ctx context.Context, userID int64) (string, error) {
	cfg := s.opts.Practice
	if s.opts.Words == nil {
		return "", fmt.Errorf("%w: prompt is required", model.ErrValidation)
	}
	words, err := s.opts.Words(cfg.Lang)
	if err != nil {
		return "", err
	}
	var weak map[rune]struct{}
	if cfg.FocusWeak {
		report, err := stats.BuildReport(ctx, s.store, userID, cfg.WeakWindow)
		if err != nil {
			return "", err
		}
		weak = stats.SelectWeakChars(report.Chars, cfg.WeakTop)
	}
	text := s.gen.Text(words, cfg, weak)
	if text == "" {
		return "", fmt.Errorf("%w: could not generate a prompt", model.ErrValidation)
	}
	return text, nil
}
