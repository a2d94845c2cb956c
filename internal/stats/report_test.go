package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/store"
)

func seedReportStore(t *testing.T) (*store.Store, int64, []int64) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "typist.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	user, err := st.CreateUser(ctx, "r@example.com", "hash")
	require.NoError(t, err)

	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		sess, err := st.CreateSession(ctx, user.ID, "ab", start)
		require.NoError(t, err)
		_, err = st.EndSession(ctx, sess.ID, start.Add(30*time.Second))
		require.NoError(t, err)
		require.NoError(t, st.SaveMetrics(ctx, sess.ID, 30, model.SessionMetrics{
			AccuracyPercentage: 90,
			WordsPerMinute:     float64(40 + 10*i),
		}))
		require.NoError(t, st.ReplaceSessionStats(ctx, sess.ID,
			[]model.CharStats{
				{Char: "a", Correct: 5, DwellSumMs: 500, DwellCount: 5},
				{Char: "b", Correct: 4, Incorrect: 1, DwellSumMs: 1000, DwellCount: 5},
			},
			[]model.BigramStats{{Bigram: "ab", FlightSumMs: 120, Count: 1}},
			[]model.ErrorKindCount{{Kind: ErrorKindSubstitution, Count: 1}},
		))
		ids = append(ids, sess.ID)
	}
	return st, user.ID, ids
}

func TestBuildReportWindow(t *testing.T) {
	st, userID, ids := seedReportStore(t)

	report, err := BuildReport(context.Background(), st, userID, 2)
	require.NoError(t, err)

	require.Len(t, report.Sessions, 2)
	assert.Equal(t, ids[1], report.Sessions[0].SessionID)
	assert.Equal(t, ids[2], report.Sessions[1].SessionID)
	assert.Equal(t, []int64{ids[1], ids[2]}, report.WindowSessionIDs)
	assert.Equal(t, []model.CharAggregate{
		{Char: "a", Correct: 10, DwellSumMs: 1000, DwellCount: 10},
		{Char: "b", Correct: 8, Incorrect: 2, DwellSumMs: 2000, DwellCount: 10},
	}, report.Chars)
	assert.Equal(t, []model.ErrorKindCount{{Kind: ErrorKindSubstitution, Count: 2}}, report.Errors)

	profile := report.Profile(1)
	assert.Equal(t, 2, profile.SessionsAnalyzed)
	assert.Equal(t, 55.0, profile.AvgWPM)
	require.Len(t, profile.SlowCharacters, 1)
	assert.Equal(t, "b", profile.SlowCharacters[0].Char)
}

func TestRender(t *testing.T) {
	st, userID, _ := seedReportStore(t)
	report, err := BuildReport(context.Background(), st, userID, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report, RenderOptions{Top: 3, Width: 40}))

	out := buf.String()
	assert.Contains(t, out, "Profile (3 sessions)")
	assert.Contains(t, out, "Avg WPM       50.00")
	assert.Contains(t, out, "Trend         improving")
	assert.Contains(t, out, "Slow characters")
	assert.Contains(t, out, "Difficult bigrams")
	assert.Contains(t, out, "substitution")
	assert.Contains(t, out, "Most typed: a b")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Report{}, RenderOptions{}))
	assert.Equal(t, "No completed sessions yet.\n", buf.String())
}
