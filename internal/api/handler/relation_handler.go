package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

type followRequest struct {
	Username string `json:"username" binding:"required,username"`
}

type followersQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0,max=100"`
}

// FollowByID 按 ID 关注
// @Summary 关注用户（按 ID）
// @Tags 关系链
// @Security BearerAuth
// @Produce json
// @Param id path int true "被关注用户ID"
// @Success 200 {object} response.Response{data=bool}
// @Failure 400 {object} response.Response
// @Router /users/{id}/follow [post]
func (h *Handler) FollowByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.relService.FollowByID(c.Request.Context(), currentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// UnfollowByID 按 ID 取消关注
// @Summary 取消关注（按 ID）
// @Tags 关系链
// @Security BearerAuth
// @Produce json
// @Param id path int true "被关注用户ID"
// @Success 200 {object} response.Response{data=bool}
// @Failure 400 {object} response.Response
// @Router /users/{id}/follow [delete]
func (h *Handler) UnfollowByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.relService.UnfollowByID(c.Request.Context(), currentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// Follow 按用户名关注，返回刷新后的当前用户
// @Summary 关注用户（按用户名）
// @Tags 关系链
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body followRequest true "被关注用户名"
// @Success 200 {object} response.Response{data=userDetail}
// @Failure 400 {object} response.Response
// @Router /users/me/following [post]
func (h *Handler) Follow(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.relService.FollowByUsername(c.Request.Context(), currentUser(c), req.Username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, toDetail(u))
}

// Unfollow 按用户名取消关注
// @Summary 取消关注（按用户名）
// @Tags 关系链
// @Security BearerAuth
// @Produce json
// @Param username path string true "被关注用户名"
// @Success 200 {object} response.Response{data=userDetail}
// @Failure 400 {object} response.Response
// @Router /users/me/following/{username} [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	u, err := h.relService.UnfollowByUsername(c.Request.Context(), currentUser(c), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, toDetail(u))
}

// ListFollowers 查询当前用户的粉丝
// @Summary 粉丝列表
// @Tags 关系链
// @Security BearerAuth
// @Produce json
// @Param skip query int false "偏移" default(0)
// @Param limit query int false "数量" default(10)
// @Success 200 {object} response.Response{data=[]model.User}
// @Router /users/me/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	var q followersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	list, err := h.relService.GetFollowers(c.Request.Context(), currentUser(c), q.Skip, q.Limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if list == nil {
		list = []model.User{}
	}
	response.Success(c, list)
}
