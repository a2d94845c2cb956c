package stats

import (
	"context"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/store"
)

// ReportSource is the store surface BuildReport reads from.
type ReportSource interface {
	ListSessionAggregates(ctx context.Context, userID int64, filter store.SessionFilter) ([]model.SessionAggregate, error)
	ListCharAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CharAggregate, error)
	ListBigramAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.BigramStats, error)
	ListErrorCountsForSessions(ctx context.Context, sessionIDs []int64) ([]model.ErrorKindCount, error)
}

// Report contains the raw aggregates behind a profile.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	Chars            []model.CharAggregate
	Bigrams          []model.BigramStats
	Errors           []model.ErrorKindCount
}

// BuildReport loads the last window ended sessions of a user (all of them
// when window <= 0) and their aggregated statistics.
func BuildReport(ctx context.Context, src ReportSource, userID int64, window int) (Report, error) {
	sessions, err := src.ListSessionAggregates(ctx, userID, store.SessionFilter{Last: window})
	if err != nil {
		return Report{}, err
	}

	ids := sessionIDs(sessions)
	chars, err := src.ListCharAggregatesForSessions(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	bigrams, err := src.ListBigramAggregatesForSessions(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	errs, err := src.ListErrorCountsForSessions(ctx, ids)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: ids,
		Chars:            chars,
		Bigrams:          bigrams,
		Errors:           errs,
	}, nil
}

// Profile rolls the report into a typing profile.
func (r Report) Profile(top int) model.Profile {
	return BuildProfile(r.Sessions, r.Chars, r.Bigrams, r.Errors, top)
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
