package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/drink-tracker/internal/api/middleware"
	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/auth"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

// Handler HTTP 处理器
type Handler struct {
	userService         service.UserService
	relService          service.RelationshipService
	drinkService        service.DrinkService
	notificationService service.NotificationService
	tokens              *auth.TokenIssuer
}

func NewHandler(
	userService service.UserService,
	relService service.RelationshipService,
	drinkService service.DrinkService,
	notificationService service.NotificationService,
	tokens *auth.TokenIssuer,
) *Handler {
	return &Handler{
		userService:         userService,
		relService:          relService,
		drinkService:        drinkService,
		notificationService: notificationService,
		tokens:              tokens,
	}
}

// fail 业务错误返回 400 + 固定文案，其余 500
func fail(c *gin.Context, err error) {
	var ce *service.ClientError
	if errors.As(err, &ce) {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, ce.Reason)
			return
		}
		response.BadRequest(c, ce.Reason)
		return
	}
	response.InternalError(c, err)
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, service.ErrIDNotFound.Reason)
		return 0, false
	}
	return uint(id), true
}

func currentUser(c *gin.Context) *model.User { return middleware.CurrentUser(c) }

// Health 存活检查
// @Summary 健康检查
// @Tags system
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
