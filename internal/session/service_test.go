package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/store"
)

type fixture struct {
	svc   *Service
	store *store.Store
	ctx   context.Context
	user  int64
	other int64
	clock time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "typist.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	u, err := st.CreateUser(ctx, "u@example.com", "x")
	require.NoError(t, err)
	o, err := st.CreateUser(ctx, "o@example.com", "x")
	require.NoError(t, err)

	f := &fixture{store: st, ctx: ctx, user: u.ID, other: o.ID, clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts.Now = func() time.Time { return f.clock }
	f.svc = NewService(st, generator.NewWithSeed(1), opts)
	return f
}

func ts(v float64) *float64 { return &v }

func str(v string) *string { return &v }

func stroke(k string, down, up float64) KeystrokeInput {
	return KeystrokeInput{Key: k, DownTS: ts(down), UpTS: ts(up)}
}

func TestSummaryScenario(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "cat")
	require.NoError(t, err)

	n, err := f.svc.UploadKeystrokes(f.ctx, f.user, sess.ID, []KeystrokeInput{
		stroke("c", 0.0, 0.1),
		stroke("o", 0.2, 0.3),
		stroke("t", 0.4, 0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = f.svc.UpdateInput(f.ctx, f.user, sess.ID, "cot")
	require.NoError(t, err)

	_, err = f.svc.Summary(f.ctx, f.user, sess.ID)
	assert.True(t, errors.Is(err, model.ErrInvalidState))

	_, err = f.svc.End(f.ctx, f.user, sess.ID)
	require.NoError(t, err)

	summary, err := f.svc.Summary(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, summary.SessionID)
	assert.Equal(t, 66.67, summary.AccuracyPercentage)
	assert.Equal(t, 1, summary.ErrorCount)
	assert.Equal(t, 3, summary.KeystrokeCount)
	assert.InDelta(t, 0.5, summary.DurationSecs, 1e-9)
	assert.InDelta(t, 100, summary.AvgDwellMs, 1e-6)
	assert.InDelta(t, 100, summary.AvgFlightMs, 1e-6)
	require.NotNil(t, summary.ErrorDetails)
	assert.Equal(t, []model.ErrorDetail{{Position: 1, Expected: "a", Actual: "o"}}, summary.ErrorDetails.Substitutions)
	assert.Equal(t, "cat", summary.TargetText)

	again, err := f.svc.Summary(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, summary, again)

	stored, err := f.store.GetSession(f.ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AccuracyPercentage)
	assert.Equal(t, 66.67, *stored.AccuracyPercentage)
	require.NotNil(t, stored.ErrorCount)
	assert.Equal(t, 1, *stored.ErrorCount)

	chars, err := f.store.ListCharAggregatesForSessions(f.ctx, []int64{sess.ID})
	require.NoError(t, err)
	assert.Len(t, chars, 4)
	errs, err := f.store.ListErrorCountsForSessions(f.ctx, []int64{sess.ID})
	require.NoError(t, err)
	assert.Equal(t, []model.ErrorKindCount{{Kind: "substitution", Count: 1}}, errs)
}

func TestOwnershipIsNotFound(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "abc")
	require.NoError(t, err)
	_, err = f.svc.End(f.ctx, f.user, sess.ID)
	require.NoError(t, err)

	_, err = f.svc.Summary(f.ctx, f.other, sess.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	_, err = f.svc.Summary(f.ctx, f.user, sess.ID+1000)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	_, err = f.svc.Restart(f.ctx, f.other, sess.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestEndedSessionRejectsMutation(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "abc")
	require.NoError(t, err)

	endedAt, err := f.svc.End(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	assert.True(t, endedAt.Equal(f.clock))

	_, err = f.svc.End(f.ctx, f.user, sess.ID)
	assert.True(t, errors.Is(err, ErrSessionEnded))
	_, err = f.svc.UploadKeystrokes(f.ctx, f.user, sess.ID, []KeystrokeInput{stroke("a", 1, 2)})
	assert.True(t, errors.Is(err, model.ErrInvalidState))
	_, err = f.svc.UpdateInput(f.ctx, f.user, sess.ID, "abc")
	assert.True(t, errors.Is(err, model.ErrInvalidState))
}

func TestUploadRejectsBatchAtomically(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "abc")
	require.NoError(t, err)

	bad := []KeystrokeInput{
		{Key: "", DownTS: ts(1), UpTS: ts(2)},
		{Key: "a", DownTS: nil, UpTS: ts(2)},
		{Key: "a", DownTS: ts(2), UpTS: ts(1)},
		{Key: "a", DownTS: ts(1), UpTS: ts(2), IsError: str("typo")},
		{Key: "a", DownTS: ts(1), UpTS: ts(2), TargetChar: str("ab")},
		{Key: "a", DownTS: ts(1), UpTS: ts(2), IsCorrection: str("false")},
	}
	for i, ev := range bad {
		batch := []KeystrokeInput{stroke("a", 0.5, 0.6), ev}
		_, err := f.svc.UploadKeystrokes(f.ctx, f.user, sess.ID, batch)
		assert.True(t, errors.Is(err, model.ErrValidation), "case %d: %v", i, err)
	}

	events, err := f.store.ListKeystrokes(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	got, err := f.store.GetSession(f.ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TypingStartedAt)
}

func TestCompleteRunsWholeFlow(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "hello")
	require.NoError(t, err)

	batch := []KeystrokeInput{
		stroke("h", 0.0, 0.1), stroke("e", 0.2, 0.3), stroke("l", 0.4, 0.5), stroke("o", 0.6, 0.7),
	}
	summary, err := f.svc.Complete(f.ctx, f.user, sess.ID, batch, str("helo"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ErrorCount)
	require.NotNil(t, summary.ErrorDetails)
	assert.Equal(t, 20.0, summary.ErrorDetails.ErrorRate)
	assert.Len(t, summary.ErrorDetails.Deletions, 1)
	require.NotNil(t, summary.UserInput)
	assert.Equal(t, "helo", *summary.UserInput)

	_, err = f.svc.Complete(f.ctx, f.user, sess.ID, nil, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidState))

	analysis, err := f.svc.Analysis(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, analysis.SessionID)
	assert.Equal(t, 1, analysis.CommonErrors["deletion"])
	assert.NotEmpty(t, analysis.DifficultBigrams)
}

func TestSingleKeystrokeHasZeroDuration(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "ab")
	require.NoError(t, err)
	_, err = f.svc.UploadKeystrokes(f.ctx, f.user, sess.ID, []KeystrokeInput{stroke("a", 1, 1.1)})
	require.NoError(t, err)
	_, err = f.svc.End(f.ctx, f.user, sess.ID)
	require.NoError(t, err)

	summary, err := f.svc.Summary(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.DurationSecs)
	assert.Zero(t, summary.WPM)
	assert.Nil(t, summary.UserInput)
	assert.Equal(t, 0.0, summary.AccuracyPercentage)
}

func TestStartGeneratesPrompt(t *testing.T) {
	f := newFixture(t, Options{
		Practice: model.Config{Lang: "en", Words: 5},
		Words: func(lang string) ([]string, error) {
			return []string{"alpha", "beta"}, nil
		},
	})
	sess, err := f.svc.Start(f.ctx, f.user, "  ")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(sess.TargetText), 5)

	restarted, err := f.svc.Restart(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, restarted.ID)
	assert.Equal(t, sess.TargetText, restarted.TargetText)

	bare := newFixture(t, Options{})
	_, err = bare.svc.Start(bare.ctx, bare.user, "")
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestGeneratedPromptFavoursWeakChars(t *testing.T) {
	f := newFixture(t, Options{
		Practice: model.Config{Lang: "en", Words: 200, FocusWeak: true, WeakTop: 1, WeakFactor: 100},
		Words: func(lang string) ([]string, error) {
			return []string{"zed", "ant"}, nil
		},
	})
	practice, err := f.svc.Start(f.ctx, f.user, "z")
	require.NoError(t, err)
	_, err = f.svc.Complete(f.ctx, f.user, practice.ID, []KeystrokeInput{stroke("a", 0, 0.1)}, str("a"))
	require.NoError(t, err)

	sess, err := f.svc.Start(f.ctx, f.user, "")
	require.NoError(t, err)
	words := strings.Fields(sess.TargetText)
	require.Len(t, words, 200)
	zed := 0
	for _, w := range words {
		if w == "zed" {
			zed++
		}
	}
	assert.Greater(t, zed, 150)
}

func TestHistoryAndAnalytics(t *testing.T) {
	f := newFixture(t, Options{})
	var ids []int64
	for i, input := range []string{"abd", "abc", "abc"} {
		sess, err := f.svc.Start(f.ctx, f.user, "abc")
		require.NoError(t, err)
		base := float64(i * 10)
		_, err = f.svc.Complete(f.ctx, f.user, sess.ID, []KeystrokeInput{
			stroke("a", base, base+0.1), stroke("b", base+0.2, base+0.3), stroke("c", base+0.4, base+0.5),
		}, str(input))
		require.NoError(t, err)
		ids = append(ids, sess.ID)
		f.clock = f.clock.Add(time.Hour)
	}
	_, err := f.svc.Start(f.ctx, f.user, "open")
	require.NoError(t, err)

	page, err := f.svc.History(f.ctx, f.user, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Sessions, 2)
	assert.Equal(t, ids[2], page.Sessions[0].SessionID)
	assert.Equal(t, ids[1], page.Sessions[1].SessionID)

	page, err = f.svc.History(f.ctx, f.user, 0, -5)
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, page.Limit)
	assert.Zero(t, page.Offset)

	problems, err := f.svc.CharacterProblems(f.ctx, f.user, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, problems.TotalSessionsAnalyzed)
	require.Len(t, problems.ProblematicCharacters, 1)
	assert.Equal(t, "c", problems.ProblematicCharacters[0].Character)
	assert.Equal(t, 1, problems.ProblematicCharacters[0].ErrorCount)
	assert.Equal(t, 3, problems.ProblematicCharacters[0].TotalTyped)

	progress, err := f.svc.Progress(f.ctx, f.user, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.SessionsAnalyzed)
	require.Len(t, progress.RecentSessions, 3)
	assert.Equal(t, ids[2], progress.RecentSessions[0].SessionID)
	_, err = f.svc.Progress(f.ctx, f.user, -1)
	assert.True(t, errors.Is(err, model.ErrValidation))

	profile, err := f.svc.Profile(f.ctx, f.user, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.SessionsAnalyzed)
	assert.Equal(t, 100.0, profile.AvgAccuracy)
}

func TestOtherUsersDataStaysSeparate(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.other, "abc")
	require.NoError(t, err)
	_, err = f.svc.Complete(f.ctx, f.other, sess.ID, []KeystrokeInput{stroke("a", 0, 0.1)}, str("xbc"))
	require.NoError(t, err)

	page, err := f.svc.History(f.ctx, f.user, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
	assert.Empty(t, page.Sessions)
}

func TestValidateBatchAcceptsCorrectionFlags(t *testing.T) {
	batch := []KeystrokeInput{
		{Key: "Backspace", DownTS: ts(1), UpTS: ts(1.1), IsCorrection: str("backspace")},
		{Key: "Delete", DownTS: ts(2), UpTS: ts(2.1), IsCorrection: str("delete")},
	}
	events, err := ValidateBatch(batch)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestHistoryMarksUncomputedSessions(t *testing.T) {
	f := newFixture(t, Options{})
	sess, err := f.svc.Start(f.ctx, f.user, "abc")
	require.NoError(t, err)
	_, err = f.svc.End(f.ctx, f.user, sess.ID)
	require.NoError(t, err)

	page, err := f.svc.History(f.ctx, f.user, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Sessions, 1)
	assert.False(t, page.Sessions[0].Computed)

	_, err = f.svc.Summary(f.ctx, f.user, sess.ID)
	require.NoError(t, err)
	page, err = f.svc.History(f.ctx, f.user, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Sessions, 1)
	assert.True(t, page.Sessions[0].Computed)
}
