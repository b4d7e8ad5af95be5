package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CookieName   = "user-id"
	CookieMaxAge = 365 * 24 * 60 * 60
	UserIDKey    = "userID"
)

// EnsureUserCookieMiddleware 确保用户的浏览器中有一个格式正确的user-id cookie。
// 如果没有或格式不正确，它会生成一个新的临时ID并设置cookie。
func EnsureUserCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := c.Cookie(CookieName)

		// 如果Cookie不存在，或存在但格式不正确，则分发一个新的
		if err != nil || !IsValidUUID(userID) {
			if err != nil && err != http.ErrNoCookie {
				fmt.Printf("检测到无效的用户Cookie: %s, err: %v\n", userID, err)
			}
			provisionalUserID, err := CreateProvisionalUser()
			if err != nil {
				fmt.Printf("创建临时用户ID时发生错误: %v\n", err)
			} else {
				c.SetCookie(CookieName, provisionalUserID, CookieMaxAge, "/", "", false, true)
				c.Set(UserIDKey, provisionalUserID)
			}
		}

		c.Next()
	}
}

// LoadUserMiddleware 读取cookie并将其值放入Gin上下文中。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(UserIDKey); !exists {
			userID, _ := c.Cookie(CookieName)
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// CurrentUserID 从Gin上下文中取出合法的主体ID。
// 匿名请求（无cookie或格式非法）返回 ("", false)。
func CurrentUserID(c *gin.Context) (string, bool) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := val.(string)
	if !ok || !IsValidUUID(userID) {
		return "", false
	}
	return userID, true
}

// RequireUser 拒绝匿名请求，并保证主体已经被持久化。
// 受保护的写操作（投票、创建投票、查看结果）都挂载此中间件。
func RequireUser(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "需要登录后才能执行此操作"})
			return
		}
		if err := svc.EnsureActivated(userID); err != nil {
			fmt.Printf("持久化用户 %s 失败: %v\n", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "内部错误"})
			return
		}
		c.Next()
	}
}

// RequireAdmin 只放行管理员主体，用于问题与选项的写操作。
func RequireAdmin(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "需要登录后才能执行此操作"})
			return
		}
		isAdmin, err := svc.IsAdmin(userID)
		if err != nil {
			fmt.Printf("查询用户 %s 权限失败: %v\n", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "内部错误"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "没有执行此操作的权限"})
			return
		}
		c.Next()
	}
}
