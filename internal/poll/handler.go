package poll

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
	"github.com/SlpAus/polls-backend/internal/user"
	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// Handler 持有poll模块的所有Gin处理函数。
type Handler struct {
	svc *Service
}

// NewHandler 创建poll模块的HTTP处理器。
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreatePollRequest 定义了创建投票时请求体的JSON结构。
type CreatePollRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// CreateQuestionRequest 定义了创建问题时请求体的JSON结构。
type CreateQuestionRequest struct {
	PollID uint   `json:"poll" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// CreateChoiceRequest 定义了创建选项时请求体的JSON结构。
type CreateChoiceRequest struct {
	QuestionID uint   `json:"question" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

// ListPolls 处理 GET /api/polls，返回缓存的列表视图。
func (h *Handler) ListPolls(c *gin.Context) {
	payload, err := h.svc.ListPolls(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "获取投票列表失败"})
		return
	}
	c.Data(http.StatusOK, jsonContentType, payload)
}

// GetPoll 处理 GET /api/polls/:id，返回缓存的详情视图。
func (h *Handler) GetPoll(c *gin.Context) {
	pollID, ok := parseIDParam(c)
	if !ok {
		return
	}
	payload, err := h.svc.GetPollDetail(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的投票"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "获取投票详情失败"})
		return
	}
	c.Data(http.StatusOK, jsonContentType, payload)
}

// CreatePoll 处理 POST /api/polls。需要登录，受create_poll动作限流。
func (h *Handler) CreatePoll(c *gin.Context) {
	userID, ok := user.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "需要登录后才能执行此操作"})
		return
	}

	var body CreatePollRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "请求格式错误: " + err.Error()})
		return
	}

	p, err := h.svc.CreatePoll(c.Request.Context(), userID, CreatePollInput{
		Title:       body.Title,
		Description: body.Description,
		ExpiresAt:   body.ExpiresAt,
	})
	if err != nil {
		writeLimiterError(c, err, "创建投票失败")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Results 处理 GET /api/polls/:id/results，返回缓存的结果视图。需要登录。
func (h *Handler) Results(c *gin.Context) {
	pollID, ok := parseIDParam(c)
	if !ok {
		return
	}
	payload, err := h.svc.Results(c.Request.Context(), pollID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的投票"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "计算投票结果失败"})
		return
	}
	c.Data(http.StatusOK, jsonContentType, payload)
}

// ListQuestions 处理 GET /api/questions。
func (h *Handler) ListQuestions(c *gin.Context) {
	questions, err := h.svc.repo.ListQuestions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "获取问题列表失败"})
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion 处理 GET /api/questions/:id。
func (h *Handler) GetQuestion(c *gin.Context) {
	questionID, ok := parseIDParam(c)
	if !ok {
		return
	}
	q, err := h.svc.repo.GetQuestion(questionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的问题"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "获取问题失败"})
		return
	}
	c.JSON(http.StatusOK, q)
}

// CreateQuestion 处理 POST /api/questions。仅限管理员。
func (h *Handler) CreateQuestion(c *gin.Context) {
	var body CreateQuestionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "请求格式错误: " + err.Error()})
		return
	}
	q, err := h.svc.CreateQuestion(body.PollID, body.Text)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的投票"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "创建问题失败"})
		return
	}
	c.JSON(http.StatusCreated, q)
}

// ListChoices 处理 GET /api/choices。
func (h *Handler) ListChoices(c *gin.Context) {
	choices, err := h.svc.repo.ListChoices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "获取选项列表失败"})
		return
	}
	c.JSON(http.StatusOK, choices)
}

// GetChoice 处理 GET /api/choices/:id。
func (h *Handler) GetChoice(c *gin.Context) {
	choiceID, ok := parseIDParam(c)
	if !ok {
		return
	}
	ch, err := h.svc.repo.GetChoice(choiceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的选项"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "获取选项失败"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

// CreateChoice 处理 POST /api/choices。仅限管理员。
func (h *Handler) CreateChoice(c *gin.Context) {
	var body CreateChoiceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "请求格式错误: " + err.Error()})
		return
	}
	ch, err := h.svc.CreateChoice(body.QuestionID, body.Text)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的问题"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "创建选项失败"})
		return
	}
	c.JSON(http.StatusCreated, ch)
}

// parseIDParam 解析路径参数:id，非法时直接写入400响应。
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("非法的ID: %s", c.Param("id"))})
		return 0, false
	}
	return uint(id), true
}

// writeLimiterError 将限流相关的错误映射为HTTP响应。
func writeLimiterError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ratelimit.ErrLimitExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"detail": "请求过于频繁，请稍后再试"})
	case errors.Is(err, ratelimit.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "服务暂时不可用，请稍后再试"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fallback})
	}
}
