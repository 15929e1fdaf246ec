package middleware

import (
	"fmt"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/drink-tracker/pkg/logger"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

// Recovery 捕获 panic：sentrygin 上报后重新抛出，由外层统一记录并返回 500
func Recovery() []gin.HandlerFunc {
	outer := gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", GetRequestID(c)),
			zap.Any("panic", recovered),
		)
		response.InternalError(c, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
	inner := sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second})
	return []gin.HandlerFunc{outer, inner}
}
