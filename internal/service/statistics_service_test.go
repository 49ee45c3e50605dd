package service

import (
	"daily_puzzle_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solvedSession(guesses int, solveMs *int64) model.GameSession {
	return model.GameSession{Solved: true, Guesses: guesses, SolveTimeMs: solveMs}
}

func lostSession() model.GameSession {
	return model.GameSession{Solved: false}
}

func int64Ptr(v int64) *int64 { return &v }

func TestCalculateStreaks(t *testing.T) {
	// 入参按完成时间倒序排列
	tests := []struct {
		name        string
		sessions    []model.GameSession
		wantCurrent int
		wantLongest int
	}{
		{
			name:        "empty history",
			sessions:    nil,
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name:        "single win",
			sessions:    []model.GameSession{solvedSession(1, nil)},
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "single loss",
			sessions:    []model.GameSession{lostSession()},
			wantCurrent: 0,
			wantLongest: 0,
		},
		{
			name: "current streak stops at first loss",
			sessions: []model.GameSession{
				solvedSession(1, nil),
				solvedSession(2, nil),
				lostSession(),
				solvedSession(1, nil),
			},
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "longest streak is in the past",
			sessions: []model.GameSession{
				lostSession(),
				solvedSession(1, nil),
				solvedSession(1, nil),
				solvedSession(1, nil),
			},
			wantCurrent: 0,
			wantLongest: 3,
		},
		{
			name: "all wins",
			sessions: []model.GameSession{
				solvedSession(1, nil),
				solvedSession(1, nil),
				solvedSession(1, nil),
			},
			wantCurrent: 3,
			wantLongest: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := calculateStreaks(tt.sessions)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantLongest, longest)
			assert.GreaterOrEqual(t, longest, current)
		})
	}
}

func TestCalculatePerformanceNoSolvedGames(t *testing.T) {
	avgGuesses, avgSolveMs, fastestMs := calculatePerformance([]model.GameSession{
		lostSession(),
		lostSession(),
	})

	assert.Nil(t, avgGuesses)
	assert.Nil(t, avgSolveMs)
	assert.Nil(t, fastestMs)
}

func TestCalculatePerformanceAveragesAndFastest(t *testing.T) {
	sessions := []model.GameSession{
		solvedSession(1, int64Ptr(4000)),
		solvedSession(2, int64Ptr(2000)),
		lostSession(),
		solvedSession(2, int64Ptr(9000)),
	}

	avgGuesses, avgSolveMs, fastestMs := calculatePerformance(sessions)

	require.NotNil(t, avgGuesses)
	assert.InDelta(t, 1.67, *avgGuesses, 0.001) // 保留两位小数
	require.NotNil(t, avgSolveMs)
	assert.EqualValues(t, 5000, *avgSolveMs)
	require.NotNil(t, fastestMs)
	assert.EqualValues(t, 2000, *fastestMs)
}

func TestCalculatePerformanceIgnoresMissingSolveTimes(t *testing.T) {
	sessions := []model.GameSession{
		solvedSession(3, nil),
		solvedSession(1, int64Ptr(1500)),
	}

	avgGuesses, avgSolveMs, fastestMs := calculatePerformance(sessions)

	require.NotNil(t, avgGuesses)
	assert.InDelta(t, 2.0, *avgGuesses, 0.001)
	require.NotNil(t, avgSolveMs)
	assert.EqualValues(t, 1500, *avgSolveMs)
	require.NotNil(t, fastestMs)
	assert.EqualValues(t, 1500, *fastestMs)
}

func (e *testEnv) recordSession(t *testing.T, userID uint, puzzleID string, solved, gaveUp bool, guesses int, completedAt time.Time, solveMs *int64) {
	t.Helper()

	session := &model.GameSession{
		UserID:      userID,
		PuzzleID:    puzzleID,
		StartedAt:   completedAt.Add(-time.Minute),
		CompletedAt: &completedAt,
		Guesses:     guesses,
		Solved:      solved,
		GaveUp:      gaveUp,
		SolveTimeMs: solveMs,
	}
	require.NoError(t, e.stats.RecordGameSession(session))
}

func TestGetPlayerStatsUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.stats.GetPlayerStats(42)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalGames)
	assert.Equal(t, float64(0), stats.WinRate)
	assert.Nil(t, stats.AverageGuesses)
	assert.Nil(t, stats.LastPlayedAt)
}

func TestRecordGameSessionCreatesThenUpdatesStats(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)
	base := time.Now().Add(-24 * time.Hour)

	env.recordSession(t, 7, puzzle.ID, true, false, 2, base, int64Ptr(30000))

	stats, err := env.stats.GetPlayerStats(7)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, float64(100), stats.WinRate)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)

	// 第二局失败：同一行被更新而不是另起一行
	env.recordSession(t, 7, puzzle.ID, false, true, 0, base.Add(time.Hour), nil)

	stats, err = env.stats.GetPlayerStats(7)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalGames)
	assert.Equal(t, 1, stats.GamesWon)
	assert.Equal(t, float64(50), stats.WinRate)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)
	require.NotNil(t, stats.LastPlayedAt)
	assert.WithinDuration(t, base.Add(time.Hour), *stats.LastPlayedAt, time.Second)

	var rows int64
	require.NoError(t, env.db.Model(&model.PlayerStatistics{}).Where("user_id = ?", 7).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)
	base := time.Now().Add(-24 * time.Hour)

	env.recordSession(t, 9, puzzle.ID, true, false, 3, base, int64Ptr(12000))
	env.recordSession(t, 9, puzzle.ID, true, false, 1, base.Add(time.Hour), int64Ptr(8000))

	first, err := env.stats.RecalculatePlayerStats(9)
	require.NoError(t, err)
	second, err := env.stats.RecalculatePlayerStats(9)
	require.NoError(t, err)

	assert.Equal(t, first.TotalGames, second.TotalGames)
	assert.Equal(t, first.GamesWon, second.GamesWon)
	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	require.NotNil(t, second.AverageGuesses)
	assert.InDelta(t, 2.0, *second.AverageGuesses, 0.001)
	require.NotNil(t, second.FastestSolveMs)
	assert.EqualValues(t, 8000, *second.FastestSolveMs)
}

func TestGetRecentSessionsOrderAndLimit(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)
	base := time.Now().Add(-24 * time.Hour)

	for i := 0; i < 5; i++ {
		env.recordSession(t, 11, puzzle.ID, i%2 == 0, false, 1, base.Add(time.Duration(i)*time.Hour), nil)
	}

	sessions, err := env.stats.GetRecentSessions(11, 3)

	require.NoError(t, err)
	require.Len(t, sessions, 3)
	// 最近完成的在前
	assert.True(t, sessions[0].CompletedAt.After(*sessions[1].CompletedAt))
	assert.True(t, sessions[1].CompletedAt.After(*sessions[2].CompletedAt))
}
