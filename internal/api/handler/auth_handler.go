package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/drink-tracker/internal/service"
	"github.com/d60-Lab/drink-tracker/pkg/response"
)

type registerRequest struct {
	Username  string `json:"username" binding:"required,username"`
	FirstName string `json:"first_name" binding:"max=64"`
	LastName  string `json:"last_name" binding:"max=64"`
	Password  string `json:"password" binding:"required,min=6,password"`
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register 注册
// @Summary 注册用户
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.CreateUser(c.Request.Context(), service.UserCreate{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}, false)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, u)
}

// Token 登录换取 access token
// @Summary 获取 token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body tokenRequest true "用户名密码"
// @Success 200 {object} response.Response{data=tokenResponse}
// @Failure 401 {object} response.Response
// @Router /auth/token [post]
func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, exp, err := h.tokens.Issue(u.ID, u.Username)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, tokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: exp})
}
