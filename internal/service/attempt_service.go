package service

import (
	"daily_puzzle_backend/internal/config"
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/repository"
	"daily_puzzle_backend/internal/util"
	"daily_puzzle_backend/pkg/logger"
	"daily_puzzle_backend/pkg/monitoring"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptStatus 配额状态 提交和放弃流程都以它为准，不各自数一遍
type AttemptStatus struct {
	AttemptCount     int `json:"attemptCount"`
	RemainingGuesses int `json:"remainingGuesses"`
	MaxGuesses       int `json:"maxGuesses"`
}

// SubmitResult 提交结果
// SessionRecorded 只反映对局簿记是否成功，簿记失败不影响提交本身。
type SubmitResult struct {
	IsCorrect        bool   `json:"isCorrect"`
	PuzzleID         string `json:"puzzleId"`
	SubmittedAnswer  string `json:"submittedAnswer"`
	RemainingGuesses int    `json:"remainingGuesses"`
	MaxGuesses       int    `json:"maxGuesses"`
	SessionRecorded  bool   `json:"-"`
}

type GiveUpResult struct {
	Success  bool   `json:"success"`
	PuzzleID string `json:"puzzleId"`
	GaveUp   bool   `json:"gaveUp"`
	Message  string `json:"message"`
}

type AttemptService struct {
	AttemptRepo *repository.AttemptRepository
	PuzzleRepo  *repository.PuzzleRepository
	Stats       *StatisticsService
	Cfg         *config.Config
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, puzzleRepo *repository.PuzzleRepository, stats *StatisticsService, cfg *config.Config) *AttemptService {
	return &AttemptService{
		AttemptRepo: attemptRepo,
		PuzzleRepo:  puzzleRepo,
		Stats:       stats,
		Cfg:         cfg,
	}
}

// MaxGuessesFor 身份类别对应的猜测上限
func (s *AttemptService) MaxGuessesFor(identity PlayerIdentity) int {
	if identity.Authenticated {
		return s.Cfg.GuessLimits.Authenticated
	}
	return s.Cfg.GuessLimits.Anonymous
}

// Status 某身份在某谜题上的配额状态 无副作用，可重复调用
func (s *AttemptService) Status(puzzleID string, identity PlayerIdentity) (*AttemptStatus, error) {
	if _, err := s.PuzzleRepo.FindByID(puzzleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPuzzleNotFound
		}
		return nil, err
	}

	count, err := s.countAttempts(puzzleID, identity)
	if err != nil {
		return nil, err
	}

	maxGuesses := s.MaxGuessesFor(identity)
	remaining := maxGuesses - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &AttemptStatus{
		AttemptCount:     int(count),
		RemainingGuesses: remaining,
		MaxGuesses:       maxGuesses,
	}, nil
}

// SubmitAnswer 判定答案并记录尝试
// 配额检查与插入之间没有串行化，同一身份并发提交可能小幅超额；
// 配额是公平性软限制而不是安全边界，这里沿用乐观判定。
func (s *AttemptService) SubmitAnswer(puzzleID, submittedAnswer string, hintsUsed int, identity PlayerIdentity) (*SubmitResult, error) {
	normalized := normalizeAnswer(submittedAnswer)
	if normalized == "" {
		return nil, util.ErrEmptyAnswer
	}

	puzzle, err := s.PuzzleRepo.FindByID(puzzleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPuzzleNotFound
		}
		return nil, err
	}
	if !puzzle.Playable() {
		return nil, util.ErrPuzzleNotFound
	}

	count, err := s.countAttempts(puzzleID, identity)
	if err != nil {
		return nil, err
	}

	maxGuesses := s.MaxGuessesFor(identity)
	if int(count) >= maxGuesses {
		return nil, &util.QuotaExceededError{MaxGuesses: maxGuesses}
	}

	correct := normalized == normalizeAnswer(puzzle.Answer)

	attempt := &model.PuzzleAttempt{
		PuzzleID:  puzzleID,
		Answer:    normalized,
		Correct:   correct,
		IPAddress: identity.IPAddress,
		UserAgent: identity.UserAgent,
	}
	if identity.Authenticated {
		userID := identity.UserID
		attempt.UserID = &userID
	} else {
		fingerprint := identity.Fingerprint
		attempt.Fingerprint = &fingerprint
	}

	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	monitoring.ObserveAttempt(identity.Authenticated, correct)

	// 剩余次数直接在已读计数上递减，避免插入后再查产生的竞态
	remaining := maxGuesses - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	result := &SubmitResult{
		IsCorrect:        correct,
		PuzzleID:         puzzleID,
		SubmittedAnswer:  normalized,
		RemainingGuesses: remaining,
		MaxGuesses:       maxGuesses,
	}

	// 对局簿记只针对登录用户，失败不回滚提交：尝试记录才是事实来源
	if identity.Authenticated && (correct || remaining <= 0) {
		recorded, err := s.recordCompletedSession(puzzleID, identity.UserID, correct, hintsUsed)
		if err != nil {
			logger.Log.Error("failed to record game session",
				zap.String("puzzleId", puzzleID),
				zap.Uint("userId", identity.UserID),
				zap.Error(err))
		}
		result.SessionRecorded = recorded
	}

	return result, nil
}

// GiveUp 登录用户放弃谜题，以未解出结束一次对局
func (s *AttemptService) GiveUp(puzzleID string, identity PlayerIdentity) (*GiveUpResult, error) {
	if !identity.Authenticated {
		return nil, util.ErrAuthRequired
	}

	if _, err := s.PuzzleRepo.FindByID(puzzleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPuzzleNotFound
		}
		return nil, err
	}

	solved, err := s.AttemptRepo.HasCorrectByUser(puzzleID, identity.UserID)
	if err != nil {
		return nil, err
	}
	if solved {
		return nil, util.ErrAlreadySolved
	}

	// 用尽次数等原因已经收过一条对局的，放弃只作确认，不再记第二条
	completed, err := s.Stats.SessionRepo.HasCompletedByUserAndPuzzle(identity.UserID, puzzleID)
	if err != nil {
		return nil, err
	}
	if completed {
		return &GiveUpResult{
			Success:  true,
			PuzzleID: puzzleID,
			GaveUp:   true,
			Message:  "You have given up on this puzzle",
		}, nil
	}

	attempts, err := s.AttemptRepo.FindByPuzzleAndUser(puzzleID, identity.UserID)
	if err != nil {
		return nil, err
	}

	// 一次都没猜就放弃也是合法的对局
	now := time.Now()
	startedAt := now
	if len(attempts) > 0 {
		startedAt = attempts[0].CreatedAt
	}

	session := &model.GameSession{
		UserID:      identity.UserID,
		PuzzleID:    puzzleID,
		StartedAt:   startedAt,
		CompletedAt: &now,
		Guesses:     len(attempts),
		Solved:      false,
		GaveUp:      true,
	}

	// 玩家的意图（不玩了）已经满足，簿记失败只记日志
	if err := s.Stats.RecordGameSession(session); err != nil {
		logger.Log.Error("failed to record give-up session",
			zap.String("puzzleId", puzzleID),
			zap.Uint("userId", identity.UserID),
			zap.Error(err))
	} else {
		monitoring.ObserveSession(false, true)
	}

	return &GiveUpResult{
		Success:  true,
		PuzzleID: puzzleID,
		GaveUp:   true,
		Message:  "You have given up on this puzzle",
	}, nil
}

func (s *AttemptService) countAttempts(puzzleID string, identity PlayerIdentity) (int64, error) {
	if identity.Authenticated {
		return s.AttemptRepo.CountByPuzzleAndUser(puzzleID, identity.UserID)
	}
	return s.AttemptRepo.CountByPuzzleAndFingerprint(puzzleID, identity.Fingerprint)
}

// recordCompletedSession 提交使对局进入完成态时，汇总全部尝试写入一条 GameSession
// 每个 (账号, 谜题) 只记一次：答对后补交或用尽次数后的重复触发直接跳过，不再写入。
func (s *AttemptService) recordCompletedSession(puzzleID string, userID uint, solved bool, hintsUsed int) (bool, error) {
	exists, err := s.Stats.SessionRepo.HasCompletedByUserAndPuzzle(userID, puzzleID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	attempts, err := s.AttemptRepo.FindByPuzzleAndUser(puzzleID, userID)
	if err != nil {
		return false, err
	}
	if len(attempts) == 0 {
		return false, nil
	}

	now := time.Now()
	startedAt := attempts[0].CreatedAt

	session := &model.GameSession{
		UserID:      userID,
		PuzzleID:    puzzleID,
		StartedAt:   startedAt,
		CompletedAt: &now,
		Guesses:     len(attempts),
		Solved:      solved,
		GaveUp:      false,
		HintsUsed:   hintsUsed,
	}
	if solved {
		solveTimeMs := now.Sub(startedAt).Milliseconds()
		session.SolveTimeMs = &solveTimeMs
	}

	if err := s.Stats.RecordGameSession(session); err != nil {
		return false, err
	}
	monitoring.ObserveSession(solved, false)
	return true, nil
}

// normalizeAnswer 去首尾空白并小写化 判定与入库用的都是归一化文本
func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
