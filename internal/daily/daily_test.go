package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/pythongrade3/internal/game"
	"github.com/ashkam58/pythongrade3/internal/progress"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	assert.Equal(t, "2026-02-28", DateKey(time.Date(2026, 3, 1, 8, 0, 0, 0, loc)))
}

func TestPickIsStablePerDay(t *testing.T) {
	cs := make([]game.Challenge, 6)
	for i := range cs {
		cs[i] = game.Challenge{ID: i + 1}
	}
	day := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)

	i, c, err := Pick(cs, day, "salt")
	require.NoError(t, err)
	assert.Equal(t, i+1, c.ID)
	j, _, err := Pick(cs, later, "salt")
	require.NoError(t, err)
	assert.Equal(t, i, j)

	seen := map[int]bool{}
	for d := 0; d < 60; d++ {
		k, _, err := Pick(cs, day.AddDate(0, 0, d), "salt")
		require.NoError(t, err)
		seen[k] = true
	}
	assert.Greater(t, len(seen), 1)

	_, _, err = Pick(nil, day, "salt")
	assert.ErrorIs(t, err, game.ErrNoChallenge)
}

func newStore(t *testing.T) (*Store, *progress.Store) {
	t.Helper()
	db, err := progress.Open(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = progress.Migrate(context.Background(), db)
	require.NoError(t, err)
	return NewStore(db), progress.NewStore(db)
}

func TestInsertOncePerDay(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	ok, err := s.InsertResult(ctx, Result{LearnerID: "a", Date: "2026-03-01", Attempts: 2, ElapsedMs: 900})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.InsertResult(ctx, Result{LearnerID: "a", Date: "2026-03-01", Attempts: 1, ElapsedMs: 10})
	require.NoError(t, err)
	assert.False(t, ok)

	solved, err := s.AlreadySolved(ctx, "a", "2026-03-01")
	require.NoError(t, err)
	assert.True(t, solved)
	solved, err = s.AlreadySolved(ctx, "a", "2026-03-02")
	require.NoError(t, err)
	assert.False(t, solved)
}

func TestLeaderboardOrder(t *testing.T) {
	s, learners := newStore(t)
	ctx := context.Background()
	l, err := learners.CreateLearner(ctx, "ada", "password1", time.Now())
	require.NoError(t, err)

	for _, r := range []Result{
		{LearnerID: "anon-slow", Date: "2026-03-01", Attempts: 1, ElapsedMs: 5000},
		{LearnerID: l.ID, Date: "2026-03-01", Attempts: 1, ElapsedMs: 1200},
		{LearnerID: "anon-many", Date: "2026-03-01", Attempts: 4, ElapsedMs: 100},
		{LearnerID: "other-day", Date: "2026-03-02", Attempts: 1, ElapsedMs: 1},
	} {
		_, err := s.InsertResult(ctx, r)
		require.NoError(t, err)
	}

	rows, err := s.Leaderboard(ctx, "2026-03-01", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, LBRow{Name: "ada", Attempts: 1, ElapsedMs: 1200}, rows[0])
	assert.Equal(t, LBRow{Attempts: 1, ElapsedMs: 5000}, rows[1])
	assert.Equal(t, 4, rows[2].Attempts)
}
