package vote

import (
	"errors"
	"net/http"

	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
	"github.com/SlpAus/polls-backend/internal/poll"
	"github.com/SlpAus/polls-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 持有vote模块的Gin处理函数。
type Handler struct {
	svc *Service
}

// NewHandler 创建vote模块的HTTP处理器。
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// VoteRequestBody 定义了前端提交投票时请求体的JSON结构。
type VoteRequestBody struct {
	QuestionID uint `json:"question" binding:"required"`
	ChoiceID   uint `json:"choice" binding:"required"`
}

// SubmitVote 处理 POST /api/vote。需要登录，受vote动作限流。
// 被拒绝的提交会区分"无效"、"重复"、"限流"与"不存在"，让客户端能决定下一步动作。
func (h *Handler) SubmitVote(c *gin.Context) {
	userID, ok := user.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "需要登录后才能投票"})
		return
	}

	var body VoteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "请求格式错误: " + err.Error()})
		return
	}

	v, err := h.svc.Submit(c.Request.Context(), userID, body.QuestionID, body.ChoiceID)
	if err != nil {
		switch {
		case errors.Is(err, ratelimit.ErrLimitExceeded):
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "投票过于频繁，请稍后再试"})
		case errors.Is(err, ratelimit.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "服务暂时不可用，请稍后再试"})
		case errors.Is(err, ErrChoiceMismatch):
			// 字段级校验错误
			c.JSON(http.StatusBadRequest, gin.H{"choice": "选项不属于指定的问题"})
		case errors.Is(err, ErrAlreadyVoted):
			// 非字段级校验错误，重试不会成功
			c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": "已经对这个问题投过票"})
		case errors.Is(err, poll.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "找不到指定的问题或选项"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "处理投票失败"})
		}
		return
	}

	c.JSON(http.StatusCreated, v)
}
