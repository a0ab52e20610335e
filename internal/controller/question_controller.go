package controller

import (
	"errors"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// List godoc
// @Summary 题目列表
// @Description 按年级、阶段、题型、难度过滤，不传条件时返回全部
// @Tags 题库
// @Produce  json
// @Param   grade query string false "年级"
// @Param   testType query string false "阶段 sample/live"
// @Param   type query string false "题型"
// @Param   difficulty query string false "难度"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	// 历史接口用 testType 传阶段，新客户端用 testPhase，两个都认
	phase := ctx.Query("testType")
	if phase == "" {
		phase = ctx.Query("testPhase")
	}

	filter := repository.QuestionFilter{
		Grade:      ctx.Query("grade"),
		TestPhase:  phase,
		Type:       ctx.Query("type"),
		Difficulty: ctx.Query("difficulty"),
	}

	questions, err := c.QuestionService.List(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// GetByID godoc
// @Summary 单个题目
// @Tags 题库
// @Produce  json
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetByID(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	q, err := c.QuestionService.GetByID(id)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// Create godoc
// @Summary 新建题目
// @Description 按题型校验必填字段，错误信息指明具体缺失项
// @Tags 题库
// @Accept  json
// @Produce  json
// @Param   body body service.QuestionReq true "题目内容"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "校验失败"
// @Router /api/questions [post]
func (c *QuestionController) Create(ctx *gin.Context) {
	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Create(req)
	if err != nil {
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// Update godoc
// @Summary 更新题目
// @Description 全量更新并重新校验整个题目
// @Tags 题库
// @Accept  json
// @Produce  json
// @Param   id path int true "题目ID"
// @Param   body body service.QuestionReq true "题目内容"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "校验失败"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [put]
func (c *QuestionController) Update(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Update(id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx, err.Error())
		case util.IsValidationError(err):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// Delete godoc
// @Summary 删除题目
// @Tags 题库
// @Produce  json
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) Delete(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))

	if err := c.QuestionService.Delete(id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{})
}

// Stats godoc
// @Summary 题库统计
// @Tags 题库
// @Produce  json
// @Success 200 {object} util.Response{data=repository.QuestionStats}
// @Router /api/questions/stats [get]
func (c *QuestionController) Stats(ctx *gin.Context) {
	stats, err := c.QuestionService.Stats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// SampleTest godoc
// @Summary 体验题集
// @Description 指定年级的体验题，没有时回退到 default 年级，最多 10 道
// @Tags 题库
// @Produce  json
// @Param   grade path string true "年级"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/sample-test/{grade} [get]
func (c *QuestionController) SampleTest(ctx *gin.Context) {
	c.questionSet(ctx, model.PhaseSample, util.SampleSetLimit)
}

// LiveTest godoc
// @Summary 正式题集
// @Description 指定年级的正式题，没有时回退到 default 年级，最多 20 道
// @Tags 题库
// @Produce  json
// @Param   grade path string true "年级"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/live-test/{grade} [get]
func (c *QuestionController) LiveTest(ctx *gin.Context) {
	c.questionSet(ctx, model.PhaseLive, util.LiveSetLimit)
}

func (c *QuestionController) questionSet(ctx *gin.Context, phase model.TestPhase, limit int) {
	grade := ctx.Param("grade")
	if !model.ValidGrade(grade) {
		util.BadRequest(ctx, "unknown grade "+grade)
		return
	}

	questions, err := c.QuestionService.GetQuestionSet(grade, phase, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}
