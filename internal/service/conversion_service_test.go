package service

import (
	"daily_puzzle_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAttempt(t *testing.T, env *testEnv, puzzleID string, userID *uint, fingerprint *string, answer string, createdAt time.Time) *model.PuzzleAttempt {
	t.Helper()

	attempt := &model.PuzzleAttempt{
		PuzzleID:    puzzleID,
		UserID:      userID,
		Fingerprint: fingerprint,
		Answer:      answer,
		Correct:     false,
	}
	attempt.CreatedAt = createdAt
	if err := env.db.Create(attempt).Error; err != nil {
		t.Fatalf("failed to seed attempt: %v", err)
	}
	return attempt
}

func strPtr(s string) *string { return &s }
func uintPtr(u uint) *uint    { return &u }

func TestConvertNoAnonymousAttempts(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.conversion.ConvertAttempts("fp-none", 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConvertedCount)
	assert.Equal(t, "No anonymous attempts found to convert", result.Message)
	assert.Empty(t, result.Details)
}

func TestConvertAllWithinCapacity(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)
	base := time.Now().Add(-time.Hour)

	seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "london", base)
	seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "berlin", base.Add(time.Minute))

	result, err := env.conversion.ConvertAttempts("fp-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ConvertedCount)
	require.Len(t, result.Details, 1)
	assert.Equal(t, 2, result.Details[0].Converted)
	assert.Equal(t, 0, result.Details[0].Skipped)
	assert.Nil(t, result.Details[0].Reason)

	// 转换后归属账号，指纹清空
	count, err := env.attempts.CountByPuzzleAndUser(puzzle.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	remaining, err := env.attempts.FindAnonymousByFingerprint("fp-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestConvertRespectsAuthenticatedLimit(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)
	base := time.Now().Add(-time.Hour)

	// 账号已有3次尝试，匿名4次：只收最旧的2次，其余丢弃
	for i := 0; i < 3; i++ {
		seedAttempt(t, env, puzzle.ID, uintPtr(5), nil, "guess", base.Add(time.Duration(i)*time.Second))
	}
	oldest := seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "anon-0", base.Add(10*time.Second))
	second := seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "anon-1", base.Add(11*time.Second))
	seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "anon-2", base.Add(12*time.Second))
	seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "anon-3", base.Add(13*time.Second))

	result, err := env.conversion.ConvertAttempts("fp-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ConvertedCount)
	require.Len(t, result.Details, 1)
	assert.Equal(t, 2, result.Details[0].Converted)
	assert.Equal(t, 2, result.Details[0].Skipped)
	require.NotNil(t, result.Details[0].Reason)
	assert.Equal(t, "Would exceed authenticated user limit", *result.Details[0].Reason)

	// 合并后不超过登录上限
	count, err := env.attempts.CountByPuzzleAndUser(puzzle.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	// 最旧优先：前两条被转换
	var converted []model.PuzzleAttempt
	err = env.db.Where("puzzle_id = ? AND user_id = ? AND answer LIKE ?", puzzle.ID, 5, "anon-%").
		Order("created_at ASC").Find(&converted).Error
	require.NoError(t, err)
	require.Len(t, converted, 2)
	assert.Equal(t, oldest.ID, converted[0].ID)
	assert.Equal(t, second.ID, converted[1].ID)
	assert.Nil(t, converted[0].Fingerprint)

	// 装不下的匿名尝试被清掉
	remaining, err := env.attempts.FindAnonymousByFingerprint("fp-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestConvertZeroCapacity(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		seedAttempt(t, env, puzzle.ID, uintPtr(5), nil, "guess", base.Add(time.Duration(i)*time.Second))
	}
	seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "anon-0", base.Add(time.Minute))

	result, err := env.conversion.ConvertAttempts("fp-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConvertedCount)
	require.Len(t, result.Details, 1)
	assert.Equal(t, 0, result.Details[0].Converted)
	assert.Equal(t, 1, result.Details[0].Skipped)
	require.NotNil(t, result.Details[0].Reason)
	assert.Equal(t, "User already at or over attempt limit for this puzzle", *result.Details[0].Reason)

	count, err := env.attempts.CountByPuzzleAndUser(puzzle.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
}

func TestConvertMultiplePuzzles(t *testing.T) {
	env := newTestEnv(t)
	puzzleA := env.createPuzzle(t, "Paris", true, false)
	puzzleB := env.createPuzzle(t, "Tokyo", true, false)
	base := time.Now().Add(-time.Hour)

	seedAttempt(t, env, puzzleA.ID, nil, strPtr("fp-1"), "anon-a", base)
	seedAttempt(t, env, puzzleB.ID, nil, strPtr("fp-1"), "anon-b", base.Add(time.Second))

	result, err := env.conversion.ConvertAttempts("fp-1", 5)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ConvertedCount)
	assert.Len(t, result.Details, 2)
}

func TestConvertSecondCallIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	puzzle := env.createPuzzle(t, "Paris", true, false)

	seedAttempt(t, env, puzzle.ID, nil, strPtr("fp-1"), "anon-0", time.Now().Add(-time.Hour))

	first, err := env.conversion.ConvertAttempts("fp-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ConvertedCount)

	second, err := env.conversion.ConvertAttempts("fp-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ConvertedCount)
	assert.Equal(t, "No anonymous attempts found to convert", second.Message)

	count, err := env.attempts.CountByPuzzleAndUser(puzzle.ID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
