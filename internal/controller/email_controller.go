package controller

import (
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EmailController struct {
	MailService *service.MailService
}

func NewEmailController(mailService *service.MailService) *EmailController {
	return &EmailController{MailService: mailService}
}

// SendEmail godoc
// @Summary 发送邮件
// @Description 给一批收件人发邮件，可附带已上传的成绩报告
// @Tags 邮件
// @Accept  json
// @Produce  json
// @Param   body body service.SendEmailReq true "邮件内容"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "缺少必填字段"
// @Failure 500 {object} util.Response "发送失败"
// @Router /api/send-email [post]
func (c *EmailController) SendEmail(ctx *gin.Context) {
	var req service.SendEmailReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.MailService.Send(req); err != nil {
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"message": "Email sent successfully to all recipients"})
}
