package controller

import (
	"daily_puzzle_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

// respondServiceError 把服务层错误映射为统一响应
// 引擎只返回单一失败信号，状态码的归属在这一层决定。
func respondServiceError(ctx *gin.Context, err error) {
	var quotaErr *util.QuotaExceededError

	switch {
	case errors.As(err, &quotaErr):
		util.BadRequest(ctx, quotaErr.Error())
	case errors.Is(err, util.ErrEmptyAnswer):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrAlreadySolved):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrPuzzleNotFound), errors.Is(err, util.ErrNoPuzzleToday):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrAuthRequired):
		util.Unauthorized(ctx)
	default:
		// ErrIdentityUnavailable 属于环境/配置故障，走500
		util.LogInternalError(ctx, err)
	}
}
