package routes

import (
	"net/http"

	"github.com/SlpAus/polls-backend/internal/platform/database"
	"github.com/SlpAus/polls-backend/internal/poll"
	"github.com/SlpAus/polls-backend/internal/user"
	"github.com/SlpAus/polls-backend/internal/vote"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由。
// 读端点对匿名开放；投票、创建投票与查看结果需要登录；
// 问题与选项的写入仅限管理员。
func SetupRoutes(router *gin.Engine, pollHandler *poll.Handler, voteHandler *vote.Handler, userSvc *user.Service, checker *database.RedisHealthChecker) {
	// 所有请求先经过用户Cookie中间件
	router.Use(user.EnsureUserCookieMiddleware(), user.LoadUserMiddleware())

	// 健康检查端点
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if checker != nil && !checker.Healthy() {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})

	// 创建一个 /api 的路由组
	api := router.Group("/api")
	{
		// 投票(poll)相关的路由组 /api/polls
		pollRoutes := api.Group("/polls")
		{
			pollRoutes.GET("", pollHandler.ListPolls)
			pollRoutes.GET("/:id", pollHandler.GetPoll)
			pollRoutes.POST("", user.RequireUser(userSvc), pollHandler.CreatePoll)
			pollRoutes.GET("/:id/results", user.RequireUser(userSvc), pollHandler.Results)
		}

		// 问题相关的路由组 /api/questions
		questionRoutes := api.Group("/questions")
		{
			questionRoutes.GET("", pollHandler.ListQuestions)
			questionRoutes.GET("/:id", pollHandler.GetQuestion)
			questionRoutes.POST("", user.RequireAdmin(userSvc), pollHandler.CreateQuestion)
		}

		// 选项相关的路由组 /api/choices
		choiceRoutes := api.Group("/choices")
		{
			choiceRoutes.GET("", pollHandler.ListChoices)
			choiceRoutes.GET("/:id", pollHandler.GetChoice)
			choiceRoutes.POST("", user.RequireAdmin(userSvc), pollHandler.CreateChoice)
		}

		// 投票提交的路由 /api/vote
		api.POST("/vote", user.RequireUser(userSvc), voteHandler.SubmitVote)
	}
}
