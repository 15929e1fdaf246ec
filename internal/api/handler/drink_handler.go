package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

type addDrinkRequest struct {
	Glasses int `json:"glasses" binding:"required,min=1"`
}

// drinkSimple 自己的饮酒记录列表视图
type drinkSimple struct {
	ID       uint      `json:"id"`
	Glasses  int       `json:"glasses"`
	Datetime time.Time `json:"datetime"`
}

// ListDrinks 我的饮酒记录
// @Summary 我的饮酒记录
// @Tags drinking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=[]drinkSimple}
// @Router /drinking/ [get]
func (h *Handler) ListDrinks(c *gin.Context) {
	drinks, err := h.drinkService.ListMyDrinks(c.Request.Context(), currentUser(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	out := make([]drinkSimple, len(drinks))
	for i, d := range drinks {
		out[i] = drinkSimple{ID: d.ID, Glasses: d.Glasses, Datetime: d.Datetime}
	}
	response.Success(c, out)
}

// AddDrink 记录一次饮酒并通知粉丝
// @Summary 记录饮酒
// @Tags drinking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body addDrinkRequest true "杯数"
// @Success 200 {object} response.Response{data=model.Drink}
// @Failure 400 {object} response.Response
// @Router /drinking/ [post]
func (h *Handler) AddDrink(c *gin.Context) {
	var req addDrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, service.ErrInvalidGlasses.Reason)
		return
	}
	drink, err := h.drinkService.AddDrink(c.Request.Context(), currentUser(c), req.Glasses)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, drink)
}

// Notifications 关注的人的饮酒通知
// @Summary 通知流
// @Tags drinking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=[]service.NotificationView}
// @Router /drinking/notifications [get]
func (h *Handler) Notifications(c *gin.Context) {
	list, err := h.notificationService.GetNotifications(c.Request.Context(), currentUser(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, list)
}

// MarkNotificationsReceived 全部标记为已收到
// @Summary 标记通知已收到
// @Tags drinking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /drinking/notifications/received [post]
func (h *Handler) MarkNotificationsReceived(c *gin.Context) {
	n, err := h.notificationService.MarkAllReceived(c.Request.Context(), currentUser(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": n})
}

// UnseenNotifications 未读数
// @Summary 未收到的通知数
// @Tags drinking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64}
// @Router /drinking/notifications/unseen [get]
func (h *Handler) UnseenNotifications(c *gin.Context) {
	n, err := h.notificationService.CountUnseen(c.Request.Context(), currentUser(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"unseen": n})
}
