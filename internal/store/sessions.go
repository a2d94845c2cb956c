package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/typist/internal/model"
)

const sessionColumns = `id, user_id, target_text, user_input, started_at, typing_started_at, ended_at,
	accuracy_percentage, error_count, correction_count, words_per_minute, characters_per_minute`

// CreateSession stores a new session for userID.
func (s *Store) CreateSession(ctx context.Context, userID int64, targetText string, startedAt time.Time) (model.Session, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO sessions (user_id, target_text, started_at) VALUES (?, ?, ?)`,
		userID, targetText, formatTime(startedAt))
	if err != nil {
		return model.Session{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		ID:         id,
		UserID:     userID,
		TargetText: targetText,
		StartedAt:  startedAt.UTC(),
	}, nil
}

// GetSession returns the session with id, or nil when none exists.
func (s *Store) GetSession(ctx context.Context, id int64) (*model.Session, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	var (
		sess            model.Session
		userInput       sql.NullString
		startedAt       string
		typingStartedAt sql.NullString
		endedAt         sql.NullString
		accuracy        sql.NullFloat64
		errorCount      sql.NullInt64
		correctionCount sql.NullInt64
		wpm             sql.NullFloat64
		cpm             sql.NullFloat64
	)
	err := row.Scan(&sess.ID, &sess.UserID, &sess.TargetText, &userInput, &startedAt, &typingStartedAt, &endedAt,
		&accuracy, &errorCount, &correctionCount, &wpm, &cpm)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if sess.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if sess.TypingStartedAt, err = parseNullTime(typingStartedAt); err != nil {
		return nil, err
	}
	if sess.EndedAt, err = parseNullTime(endedAt); err != nil {
		return nil, err
	}
	if userInput.Valid {
		sess.UserInput = &userInput.String
	}
	if accuracy.Valid {
		sess.AccuracyPercentage = &accuracy.Float64
	}
	if errorCount.Valid {
		v := int(errorCount.Int64)
		sess.ErrorCount = &v
	}
	if correctionCount.Valid {
		v := int(correctionCount.Int64)
		sess.CorrectionCount = &v
	}
	if wpm.Valid {
		sess.WordsPerMinute = &wpm.Float64
	}
	if cpm.Valid {
		sess.CharactersPerMinute = &cpm.Float64
	}
	return &sess, nil
}

// SetUserInput replaces the submitted input of an open session.
func (s *Store) SetUserInput(ctx context.Context, id int64, input string) error {
	return s.execOne(ctx, "set user input", id,
		`UPDATE sessions SET user_input = ? WHERE id = ? AND ended_at IS NULL`, input, id)
}

// MarkTypingStarted records the first keystroke upload. Later calls keep the
// original timestamp.
func (s *Store) MarkTypingStarted(ctx context.Context, id int64, at time.Time) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE sessions SET typing_started_at = ? WHERE id = ? AND typing_started_at IS NULL`,
		formatTime(at), id)
	return err
}

// EndSession sets the end timestamp. It reports false when the session was
// already ended.
func (s *Store) EndSession(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ? AND ended_at IS NULL`,
		formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SaveMetrics overwrites the derived metric columns of a session.
func (s *Store) SaveMetrics(ctx context.Context, id int64, durationSecs float64, m model.SessionMetrics) error {
	return s.execOne(ctx, "save metrics", id,
		`UPDATE sessions
		 SET duration_secs = ?, accuracy_percentage = ?, error_count = ?, correction_count = ?,
		     words_per_minute = ?, characters_per_minute = ?
		 WHERE id = ?`,
		durationSecs, m.AccuracyPercentage, m.ErrorCount, m.CorrectionCount,
		m.WordsPerMinute, m.CharactersPerMinute, id)
}

// ListEndedSessions returns a page of ended sessions for userID, newest
// first, plus the total number of ended sessions.
func (s *Store) ListEndedSessions(ctx context.Context, userID int64, limit, offset int) ([]model.SessionAggregate, int, error) {
	var total int
	if err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = ? AND ended_at IS NOT NULL`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT id, started_at, ended_at, target_text, duration_secs, words_per_minute,
			accuracy_percentage, error_count, correction_count
		FROM sessions
		WHERE user_id = ? AND ended_at IS NOT NULL
		ORDER BY ended_at DESC, id DESC
		LIMIT ? OFFSET ?`
	sessions, err := s.querySessionAggregates(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// SessionFilter narrows ListSessionAggregates.
type SessionFilter struct {
	Since *time.Time
	Last  int
}

// ListSessionAggregates returns ended sessions for userID, oldest first.
// Last keeps only the most recent N sessions.
func (s *Store) ListSessionAggregates(ctx context.Context, userID int64, filter SessionFilter) ([]model.SessionAggregate, error) {
	clauses := []string{"user_id = ?", "ended_at IS NOT NULL"}
	args := []any{userID}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	limit := -1
	if filter.Last > 0 {
		limit = filter.Last
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT * FROM (
			SELECT id, started_at, ended_at, target_text, duration_secs, words_per_minute,
				accuracy_percentage, error_count, correction_count
			FROM sessions
			WHERE %s
			ORDER BY ended_at DESC, id DESC
			LIMIT ?
		) ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	return s.querySessionAggregates(ctx, query, args...)
}

func (s *Store) querySessionAggregates(ctx context.Context, query string, args ...any) ([]model.SessionAggregate, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	sessions := []model.SessionAggregate{}
	for rows.Next() {
		var (
			agg             model.SessionAggregate
			startedAt       string
			endedAt         string
			duration        sql.NullFloat64
			wpm             sql.NullFloat64
			accuracy        sql.NullFloat64
			errorCount      sql.NullInt64
			correctionCount sql.NullInt64
		)
		if err := rows.Scan(&agg.SessionID, &startedAt, &endedAt, &agg.TargetText, &duration, &wpm,
			&accuracy, &errorCount, &correctionCount); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		agg.Computed = accuracy.Valid
		agg.DurationSecs = duration.Float64
		agg.WordsPerMinute = wpm.Float64
		agg.AccuracyPercentage = accuracy.Float64
		agg.ErrorCount = int(errorCount.Int64)
		agg.CorrectionCount = int(correctionCount.Int64)
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) execOne(ctx context.Context, op string, id int64, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: session %d: %w", op, id, model.ErrNotFound)
	}
	return nil
}
