package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
	"github.com/d60-Lab/drink-tracker/pkg/logger"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

const currentUserKey = "current_user"

// Auth 解析 Bearer token 并加载当前用户
func Auth(tokens *auth.TokenIssuer, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}
		userID, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			response.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}
		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			response.InternalError(c, err)
			c.Abort()
			return
		}
		if user == nil {
			logger.Debug("token for deleted user", zap.Uint("user", userID))
			response.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin 必须挂在 Auth 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.IsAdmin {
			response.Forbidden(c, "Admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 取 Auth 写入的用户，未认证时为 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
