package controller

import (
	"errors"
	"gmc_backend/internal/model"
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"
	"gmc_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	SubmissionService *service.SubmissionService
}

func NewTestController(submissionService *service.SubmissionService) *TestController {
	return &TestController{SubmissionService: submissionService}
}

// Eligibility godoc
// @Summary 测试资格查询
// @Description 当前用户是否还能参加指定测试（每个测试只能提交一次）
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   testType path string true "测试类型 level1/level2/level3"
// @Success 200 {object} util.Response{data=object}
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/tests/{testType}/eligibility [get]
func (c *TestController) Eligibility(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	testType := ctx.Param("testType")
	if !model.ValidTestType(testType) {
		util.BadRequest(ctx, util.ErrInvalidTestType.Error())
		return
	}

	eligible, err := c.SubmissionService.CheckEligibility(claims.UserID, model.TestType(testType))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"eligible": eligible})
}

// Submit godoc
// @Summary 提交测试
// @Description 每个用户每个测试只能提交一次，重复提交返回 409
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   testType path string true "测试类型 level1/level2/level3"
// @Param   body body service.SubmitReq true "作答与得分"
// @Success 201 {object} util.Response{data=service.SubmitResult}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 409 {object} util.Response "该测试已提交过"
// @Router /api/tests/{testType}/submit [post]
func (c *TestController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	testType := ctx.Param("testType")
	if !model.ValidTestType(testType) {
		util.BadRequest(ctx, util.ErrInvalidTestType.Error())
		return
	}

	var req service.SubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SubmissionService.Submit(claims.UserID, model.TestType(testType), req)
	if err != nil {
		switch {
		case util.IsValidationError(err):
			monitoring.SubmissionCounter.WithLabelValues(testType, "invalid").Inc()
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrTestAlreadySubmitted):
			monitoring.SubmissionCounter.WithLabelValues(testType, "duplicate").Inc()
			util.Conflict(ctx, err.Error())
		default:
			monitoring.SubmissionCounter.WithLabelValues(testType, "error").Inc()
			util.LogInternalError(ctx, err)
		}
		return
	}

	monitoring.SubmissionCounter.WithLabelValues(testType, "completed").Inc()
	util.Created(ctx, result)
}

// ListUserTests godoc
// @Summary 用户测试记录
// @Description 当前用户的全部提交记录，作答里的题目已解析为题干和题型
// @Tags 测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=[]service.UserTestView}
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/users/{id}/tests [get]
func (c *TestController) ListUserTests(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	// 只能查自己的记录
	id := util.MustParseUint(ctx.Param("id"))
	if id != claims.UserID {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.SubmissionService.ListUserTests(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, views)
}
