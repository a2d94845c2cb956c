package store

import (
	"context"

	"github.com/verte-zerg/typist/internal/model"
)

// ReplaceSessionStats overwrites the derived per-session statistics.
func (s *Store) ReplaceSessionStats(ctx context.Context, sessionID int64, chars []model.CharStats, bigrams []model.BigramStats, errs []model.ErrorKindCount) error {
	return s.WithTx(ctx, func(tx *Store) error {
		for _, table := range []string{"session_char_stats", "session_bigram_stats", "session_error_stats"} {
			if _, err := tx.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE session_id = ?`, sessionID); err != nil {
				return err
			}
		}
		for _, c := range chars {
			if _, err := tx.q.ExecContext(ctx,
				`INSERT INTO session_char_stats (session_id, char, correct, incorrect, dwell_sum_ms, dwell_count)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				sessionID, c.Char, c.Correct, c.Incorrect, c.DwellSumMs, c.DwellCount); err != nil {
				return err
			}
		}
		for _, b := range bigrams {
			if _, err := tx.q.ExecContext(ctx,
				`INSERT INTO session_bigram_stats (session_id, bigram, flight_sum_ms, count) VALUES (?, ?, ?, ?)`,
				sessionID, b.Bigram, b.FlightSumMs, b.Count); err != nil {
				return err
			}
		}
		for _, e := range errs {
			if _, err := tx.q.ExecContext(ctx,
				`INSERT INTO session_error_stats (session_id, kind, count) VALUES (?, ?, ?)`,
				sessionID, e.Kind, e.Count); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListCharAggregatesForSessions sums character stats over sessionIDs.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return []model.CharAggregate{}, nil
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT char, SUM(correct), SUM(incorrect), SUM(dwell_sum_ms), SUM(dwell_count)
		FROM session_char_stats
		WHERE session_id IN (`+placeholders(len(sessionIDs))+`)
		GROUP BY char
		ORDER BY char
	`, idArgs(sessionIDs)...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	aggs := []model.CharAggregate{}
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.DwellSumMs, &agg.DwellCount); err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return aggs, nil
}

// ListBigramAggregatesForSessions sums bigram flight stats over sessionIDs.
func (s *Store) ListBigramAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.BigramStats, error) {
	if len(sessionIDs) == 0 {
		return []model.BigramStats{}, nil
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT bigram, SUM(flight_sum_ms), SUM(count)
		FROM session_bigram_stats
		WHERE session_id IN (`+placeholders(len(sessionIDs))+`)
		GROUP BY bigram
		ORDER BY bigram
	`, idArgs(sessionIDs)...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	bigrams := []model.BigramStats{}
	for rows.Next() {
		var b model.BigramStats
		if err := rows.Scan(&b.Bigram, &b.FlightSumMs, &b.Count); err != nil {
			return nil, err
		}
		bigrams = append(bigrams, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bigrams, nil
}

// ListErrorCountsForSessions sums error kinds over sessionIDs.
func (s *Store) ListErrorCountsForSessions(ctx context.Context, sessionIDs []int64) ([]model.ErrorKindCount, error) {
	if len(sessionIDs) == 0 {
		return []model.ErrorKindCount{}, nil
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT kind, SUM(count)
		FROM session_error_stats
		WHERE session_id IN (`+placeholders(len(sessionIDs))+`)
		GROUP BY kind
		ORDER BY kind
	`, idArgs(sessionIDs)...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	counts := []model.ErrorKindCount{}
	for rows.Next() {
		var c model.ErrorKindCount
		if err := rows.Scan(&c.Kind, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
