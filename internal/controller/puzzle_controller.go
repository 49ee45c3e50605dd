package controller

import (
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/service"
	"daily_puzzle_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type PuzzleController struct {
	PuzzleService   *service.PuzzleService
	AttemptService  *service.AttemptService
	IdentityService *service.IdentityService
}

func NewPuzzleController(puzzleService *service.PuzzleService, attemptService *service.AttemptService, identityService *service.IdentityService) *PuzzleController {
	return &PuzzleController{
		PuzzleService:   puzzleService,
		AttemptService:  attemptService,
		IdentityService: identityService,
	}
}

// SubmitAnswerRequest 答案提交请求
type SubmitAnswerRequest struct {
	Answer    string `json:"answer" binding:"required"`
	HintsUsed int    `json:"hintsUsed"`
}

// PuzzleRequest 创建/更新谜题请求（管理端）
type PuzzleRequest struct {
	Question   string     `json:"question" binding:"required"`
	Answer     string     `json:"answer" binding:"required"`
	Hints      []string   `json:"hints"`
	Category   string     `json:"category"`
	Published  bool       `json:"published"`
	PuzzleDate *time.Time `json:"puzzleDate"`
}

// resolveIdentity 从请求里归结玩家身份（登录或匿名指纹）
func (c *PuzzleController) resolveIdentity(ctx *gin.Context, puzzleID string) (service.PlayerIdentity, error) {
	claims := util.GetUserFromContext(ctx)
	return c.IdentityService.Resolve(claims, ctx.ClientIP(), ctx.GetHeader("User-Agent"), puzzleID)
}

// GetPuzzleOfTheDay 今日谜题
func (c *PuzzleController) GetPuzzleOfTheDay(ctx *gin.Context) {
	puzzle, err := c.PuzzleService.GetPuzzleOfTheDay(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, puzzle)
}

// GetAttemptStatus 当前身份在指定谜题上的配额状态
func (c *PuzzleController) GetAttemptStatus(ctx *gin.Context) {
	puzzleID := ctx.Param("id")

	identity, err := c.resolveIdentity(ctx, puzzleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	status, err := c.AttemptService.Status(puzzleID, identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// SubmitAnswer 提交答案
func (c *PuzzleController) SubmitAnswer(ctx *gin.Context) {
	puzzleID := ctx.Param("id")

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "answer is required")
		return
	}

	identity, err := c.resolveIdentity(ctx, puzzleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	result, err := c.AttemptService.SubmitAnswer(puzzleID, req.Answer, req.HintsUsed, identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GiveUp 放弃谜题（仅登录用户）
func (c *PuzzleController) GiveUp(ctx *gin.Context) {
	puzzleID := ctx.Param("id")

	identity, err := c.resolveIdentity(ctx, puzzleID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	result, err := c.AttemptService.GiveUp(puzzleID, identity)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListPuzzles 谜题列表（管理端）
func (c *PuzzleController) ListPuzzles(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	includeArchived := ctx.Query("includeArchived") == "true"

	puzzles, total, err := c.PuzzleService.ListPuzzles(page, pageSize, includeArchived)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"list":  puzzles,
		"total": total,
		"page":  page,
		"limit": pageSize,
	})
}

// GetPuzzle 单个谜题（管理端）
func (c *PuzzleController) GetPuzzle(ctx *gin.Context) {
	puzzle, err := c.PuzzleService.GetPuzzleByID(ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, puzzle)
}

// CreatePuzzle 创建谜题（管理端）
func (c *PuzzleController) CreatePuzzle(ctx *gin.Context) {
	var req PuzzleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	puzzle := &model.Puzzle{
		Question:   req.Question,
		Answer:     req.Answer,
		Hints:      req.Hints,
		Category:   req.Category,
		Published:  req.Published,
		PuzzleDate: req.PuzzleDate,
	}
	if err := c.PuzzleService.CreatePuzzle(puzzle); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, puzzle)
}

// UpdatePuzzle 更新谜题（管理端）
func (c *PuzzleController) UpdatePuzzle(ctx *gin.Context) {
	var req PuzzleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	puzzle, err := c.PuzzleService.GetPuzzleByID(ctx.Param("id"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	puzzle.Question = req.Question
	puzzle.Answer = req.Answer
	puzzle.Hints = req.Hints
	puzzle.Category = req.Category
	puzzle.Published = req.Published
	puzzle.PuzzleDate = req.PuzzleDate

	if err := c.PuzzleService.UpdatePuzzle(puzzle); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, puzzle)
}

// ArchivePuzzle 归档（软删除）谜题（管理端）
func (c *PuzzleController) ArchivePuzzle(ctx *gin.Context) {
	if err := c.PuzzleService.ArchivePuzzle(ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"archived": true})
}

// DeletePuzzle 删除谜题（管理端）
func (c *PuzzleController) DeletePuzzle(ctx *gin.Context) {
	if err := c.PuzzleService.DeletePuzzle(ctx.Param("id")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
