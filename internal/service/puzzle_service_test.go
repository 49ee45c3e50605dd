package service

import (
	"context"
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/util"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func (e *testEnv) createDatedPuzzle(t *testing.T, question string, date time.Time, published bool) *model.Puzzle {
	t.Helper()

	puzzle := &model.Puzzle{
		Question:   question,
		Answer:     "Paris",
		Category:   "geography",
		Published:  published,
		PuzzleDate: &date,
	}
	if err := e.puzzles.Create(puzzle); err != nil {
		t.Fatalf("failed to create puzzle: %v", err)
	}
	return puzzle
}

func TestGetPuzzleOfTheDayNoPuzzle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, nil)

	_, err := svc.GetPuzzleOfTheDay(context.Background())

	assert.ErrorIs(t, err, util.ErrNoPuzzleToday)
}

func TestGetPuzzleOfTheDayWithoutRedis(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, nil)
	puzzle := env.createDatedPuzzle(t, "What is the capital of France?", time.Now(), true)

	view, err := svc.GetPuzzleOfTheDay(context.Background())

	require.NoError(t, err)
	assert.Equal(t, puzzle.ID, view.ID)
	assert.Equal(t, puzzle.Question, view.Question)
}

func TestGetPuzzleOfTheDaySkipsUnpublished(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, nil)
	env.createDatedPuzzle(t, "draft", time.Now(), false)

	_, err := svc.GetPuzzleOfTheDay(context.Background())

	assert.ErrorIs(t, err, util.ErrNoPuzzleToday)
}

func TestGetPuzzleOfTheDayServesFromCache(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, newTestRedis(t))
	puzzle := env.createDatedPuzzle(t, "original question", time.Now(), true)

	first, err := svc.GetPuzzleOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "original question", first.Question)

	// 绕开服务直接改库：命中缓存时不会看到新值
	require.NoError(t, env.db.Model(&model.Puzzle{}).Where("id = ?", puzzle.ID).
		Update("question", "changed question").Error)

	cached, err := svc.GetPuzzleOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "original question", cached.Question)
}

func TestUpdatePuzzleInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, newTestRedis(t))
	puzzle := env.createDatedPuzzle(t, "original question", time.Now(), true)

	_, err := svc.GetPuzzleOfTheDay(context.Background())
	require.NoError(t, err)

	puzzle.Question = "updated question"
	require.NoError(t, svc.UpdatePuzzle(puzzle))

	view, err := svc.GetPuzzleOfTheDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "updated question", view.Question)
}

func TestArchivedPuzzleNotServed(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, nil)
	puzzle := env.createDatedPuzzle(t, "today", time.Now(), true)

	require.NoError(t, svc.ArchivePuzzle(puzzle.ID))

	_, err := svc.GetPuzzleOfTheDay(context.Background())
	assert.ErrorIs(t, err, util.ErrNoPuzzleToday)
}

func TestProcessScheduledPublishes(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPuzzleService(env.puzzles, nil)

	due := env.createDatedPuzzle(t, "due puzzle", time.Now().Add(-time.Hour), false)
	future := env.createDatedPuzzle(t, "future puzzle", time.Now().Add(48*time.Hour), false)

	require.NoError(t, svc.ProcessScheduledPublishes())

	reloaded, err := env.puzzles.FindByID(due.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Published)

	stillDraft, err := env.puzzles.FindByID(future.ID)
	require.NoError(t, err)
	assert.False(t, stillDraft.Published)
}
