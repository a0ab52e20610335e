package controller

import (
	"fmt"
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportController struct {
	StorageService *service.StorageService
}

func NewReportController(storageService *service.StorageService) *ReportController {
	return &ReportController{StorageService: storageService}
}

// UploadReport godoc
// @Summary 上传成绩报告
// @Description 只接受 PDF，存入配置的存储后端并返回访问地址
// @Tags 报告
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "报告 PDF"
// @Success 201 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "不是 PDF 文件"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/reports/upload [post]
func (c *ReportController) UploadReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimePDF}); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if _, err := src.Seek(0, 0); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	filename := fmt.Sprintf("reports/%d/%s%s", claims.UserID, uuid.New().String(), filepath.Ext(fileHeader.Filename))
	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, src, fileHeader.Size, util.MimePDF)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"url": url, "filename": filename})
}
