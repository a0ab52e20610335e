package controller

import (
	"errors"
	"gmc_backend/internal/model"
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username             string `json:"username" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	MobileNumber         string `json:"mobileNumber" binding:"required"`
	FullName             string `json:"fullName" binding:"required"`
	Grade                string `json:"grade" binding:"required"`
	DOB                  string `json:"dob" binding:"required"` // 2006-01-02
	School               string `json:"school" binding:"required"`
	Email                string `json:"email"`
	Branch               string `json:"branch"`
	AlternatePhoneNumber string `json:"alternatePhoneNumber"`
}

// Register godoc
// @Summary 注册新用户
// @Description 注册参赛账号，用户名和手机号不能重复，成功后直接返回令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名或手机号已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/users [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	dob, err := time.Parse(util.DateFormat, req.DOB)
	if err != nil {
		util.BadRequest(ctx, "dob must be in YYYY-MM-DD format")
		return
	}
	if !model.ValidGrade(req.Grade) || req.Grade == model.DefaultGrade {
		util.BadRequest(ctx, "unknown grade "+req.Grade)
		return
	}

	user := &model.User{
		Username:             req.Username,
		Password:             req.Password,
		MobileNumber:         req.MobileNumber,
		FullName:             req.FullName,
		Grade:                req.Grade,
		DOB:                  dob,
		School:               req.School,
		Email:                req.Email,
		Branch:               req.Branch,
		AlternatePhoneNumber: req.AlternatePhoneNumber,
	}

	token, err := c.AuthService.Register(user)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUsernameTaken), errors.Is(err, util.ErrMobileNumberTaken):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"token": token, "user": user})
}

// swagger:model LoginRequest
type LoginRequest struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 手机号加密码登录，凭证不对时不区分是哪一项错误
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.MobileNumber, req.Password)
	if err != nil {
		util.Error(ctx, 401, util.ErrInvalidCredentials.Error())
		return
	}

	util.Success(ctx, gin.H{"token": token})
}

// Verify godoc
// @Summary 校验当前令牌
// @Description 从 Bearer 令牌解析出当前用户
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/auth/verify [get]
func (c *AuthController) Verify(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, user)
}
