package controller

import (
	"daily_puzzle_backend/internal/service"
	"daily_puzzle_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StatisticsController struct {
	StatsService *service.StatisticsService
}

func NewStatisticsController(statsService *service.StatisticsService) *StatisticsController {
	return &StatisticsController{StatsService: statsService}
}

// GetPlayerStats 当前用户的统计
func (c *StatisticsController) GetPlayerStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.GetPlayerStats(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Recalculate 强制重算当前用户的统计（调试/修复用）
func (c *StatisticsController) Recalculate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.StatsService.RecalculatePlayerStats(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// GetRecentSessions 当前用户最近的对局
func (c *StatisticsController) GetRecentSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		util.BadRequest(ctx, "limit cannot exceed 50")
		return
	}

	sessions, err := c.StatsService.GetRecentSessions(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}
