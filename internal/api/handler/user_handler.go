package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

type listUsersQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit"`
}

type searchQuery struct {
	Q     string `form:"q"`
	Skip  int    `form:"skip" binding:"min=0"`
	Limit int    `form:"limit" binding:"min=0,max=100"`
}

type modifyUserRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// userDetail 带关注列表的用户
type userDetail struct {
	model.User
	Following []model.User `json:"following"`
}

func toDetail(u *model.User) userDetail {
	following := u.Following
	if following == nil {
		following = []model.User{}
	}
	return userDetail{User: *u, Following: following}
}

// ListUsers 分页列出用户
// @Summary 用户列表
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码（从 1 开始）" default(1)
// @Param limit query int false "每页数量" default(100)
// @Success 200 {object} response.Response{data=service.UserPage}
// @Failure 400 {object} response.Response
// @Router /users/ [get]
func (h *Handler) ListUsers(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	page, err := h.userService.ListUsers(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	if page.Results == nil {
		page.Results = []model.User{}
	}
	response.Success(c, page)
}

// Me 当前用户
// @Summary 当前用户（含关注列表）
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response{data=userDetail}
// @Router /users/me [get]
func (h *Handler) Me(c *gin.Context) {
	u, err := h.relService.WithFollowing(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, toDetail(u))
}

// SearchUsers 用户名前缀搜索
// @Summary 搜索用户
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param q query string false "用户名前缀"
// @Param skip query int false "偏移" default(0)
// @Param limit query int false "数量" default(10)
// @Success 200 {object} response.Response{data=[]model.User}
// @Router /users/search [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	users, err := h.userService.SearchUsers(c.Request.Context(), currentUser(c), q.Q, q.Skip, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	response.Success(c, users)
}

// GetUserByUsername 按用户名查询
// @Summary 按用户名查询用户
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /users/username/{username} [get]
func (h *Handler) GetUserByUsername(c *gin.Context) {
	u, err := h.userService.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.BadRequest(c, service.ErrUsernameNotFound.Reason)
		return
	}
	response.Success(c, u)
}

// GetUser 按 ID 查询
// @Summary 按 ID 查询用户
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	u, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.BadRequest(c, service.ErrIDNotFound.Reason)
		return
	}
	response.Success(c, u)
}

// ModifyUser 修改管理员标记（管理员）
// @Summary 修改管理员标记
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body modifyUserRequest true "is_admin"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id} [patch]
func (h *Handler) ModifyUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req modifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.ModifyAdminFlag(c.Request.Context(), id, *req.IsAdmin)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, u)
}

// DeleteUser 删除用户（管理员），幂等
// @Summary 删除用户
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=bool}
// @Failure 403 {object} response.Response
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	deleted, err := h.userService.DeleteUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, deleted)
}
