package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/verte-zerg/typist/internal/model"
)

// InsertKeystrokes appends events to a session in upload order.
func (s *Store) InsertKeystrokes(ctx context.Context, sessionID int64, events []model.KeystrokeEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *Store) error {
		var next int
		if err := tx.q.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), -1) + 1 FROM keystroke_events WHERE session_id = ?`, sessionID).Scan(&next); err != nil {
			return err
		}
		for i, ev := range events {
			if _, err := tx.q.ExecContext(ctx,
				`INSERT INTO keystroke_events (
					session_id, seq, key, down_ts, up_ts, target_char, position_in_text, is_correction, is_error
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				sessionID, next+i, ev.Key, ev.DownTS, ev.UpTS,
				nullString(ev.TargetChar), nullInt(ev.PositionInText),
				nullString(ev.IsCorrection), nullString(ev.IsError)); err != nil {
				return fmt.Errorf("insert keystroke %d: %w", i, err)
			}
		}
		return nil
	})
}

// ListKeystrokes returns the events of a session in upload order.
func (s *Store) ListKeystrokes(ctx context.Context, sessionID int64) ([]model.KeystrokeEvent, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_id, seq, key, down_ts, up_ts, target_char, position_in_text, is_correction, is_error
		FROM keystroke_events
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	events := []model.KeystrokeEvent{}
	for rows.Next() {
		var (
			ev           model.KeystrokeEvent
			targetChar   sql.NullString
			position     sql.NullInt64
			isCorrection sql.NullString
			isError      sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.Seq, &ev.Key, &ev.DownTS, &ev.UpTS,
			&targetChar, &position, &isCorrection, &isError); err != nil {
			return nil, err
		}
		ev.TargetChar = stringPtr(targetChar)
		ev.IsCorrection = stringPtr(isCorrection)
		ev.IsError = stringPtr(isError)
		if position.Valid {
			p := int(position.Int64)
			ev.PositionInText = &p
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
