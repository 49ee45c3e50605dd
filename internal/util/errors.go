package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPuzzleNotFound      = errors.New("puzzle not found or not available")
	ErrEmptyAnswer         = errors.New("answer must not be empty")
	ErrAuthRequired        = errors.New("authentication required")
	ErrAlreadySolved       = errors.New("puzzle already solved")
	ErrIdentityUnavailable = errors.New("unable to determine client address for anonymous identity")
	ErrNoPuzzleToday       = errors.New("no puzzle scheduled for today")
)

// QuotaExceededError 剩余次数为0时返回，带上限用于提示文案
type QuotaExceededError struct {
	MaxGuesses int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("maximum of %d guesses reached for this puzzle", e.MaxGuesses)
}
