package controller

import (
	"errors"
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type OTPController struct {
	OTPService *service.OTPService
}

func NewOTPController(otpService *service.OTPService) *OTPController {
	return &OTPController{OTPService: otpService}
}

type SendOTPRequest struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
}

// SendOTP godoc
// @Summary 发送验证码
// @Description 给手机号下发 6 位验证码，一分钟内同一号码只发一次
// @Tags 验证码
// @Accept  json
// @Produce  json
// @Param   body body SendOTPRequest true "手机号"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "发送过于频繁"
// @Router /api/otp/send [post]
func (c *OTPController) SendOTP(ctx *gin.Context) {
	var req SendOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.OTPService.SendOTP(ctx.Request.Context(), req.MobileNumber); err != nil {
		if errors.Is(err, util.ErrOTPThrottled) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "otp sent"})
}

type VerifyOTPRequest struct {
	MobileNumber string `json:"mobileNumber" binding:"required"`
	Code         string `json:"code" binding:"required"`
}

// VerifyOTP godoc
// @Summary 校验验证码
// @Description 校验成功即消费，同一验证码不能用第二次
// @Tags 验证码
// @Accept  json
// @Produce  json
// @Param   body body VerifyOTPRequest true "手机号和验证码"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "验证码不对或已过期"
// @Router /api/otp/verify [post]
func (c *OTPController) VerifyOTP(ctx *gin.Context) {
	var req VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.OTPService.VerifyOTP(ctx.Request.Context(), req.MobileNumber, req.Code); err != nil {
		if errors.Is(err, util.ErrOTPNotFound) || errors.Is(err, util.ErrOTPMismatch) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"verified": true})
}
