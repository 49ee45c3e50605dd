package controller

import (
	"daily_puzzle_backend/internal/service"
	"daily_puzzle_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ConversionController struct {
	ConversionService *service.ConversionService
}

func NewConversionController(conversionService *service.ConversionService) *ConversionController {
	return &ConversionController{ConversionService: conversionService}
}

type ConvertAttemptsRequest struct {
	UserFingerprint string `json:"userFingerprint" binding:"required"`
}

// ConvertAttempts 登录后把匿名尝试并入当前账号
func (c *ConversionController) ConvertAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ConvertAttemptsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "userFingerprint is required")
		return
	}

	result, err := c.ConversionService.ConvertAttempts(req.UserFingerprint, claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
