package repository

import (
	"gmc_backend/internal/model"
	"sort"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// QuestionFilter 题目列表过滤条件，零值字段不参与过滤
type QuestionFilter struct {
	Grade      string
	TestPhase  string
	Type       string
	Difficulty string
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var qs []model.Question
	if len(ids) == 0 {
		return qs, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) List(filter QuestionFilter) ([]model.Question, error) {
	var qs []model.Question
	query := r.DB.Model(&model.Question{})
	if filter.Grade != "" {
		query = query.Where("grade = ?", filter.Grade)
	}
	if filter.TestPhase != "" {
		query = query.Where("test_phase = ?", filter.TestPhase)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if err := query.Order("created_at desc").Find(&qs).Error; err != nil {
		return nil, err
	}
	// 年级按数字序排，同年级保持最新在前
	sort.SliceStable(qs, func(i, j int) bool {
		return model.GradeRank(qs[i].Grade) < model.GradeRank(qs[j].Grade)
	})
	return qs, nil
}

// FindSet 取某年级某阶段的一组题，最多 limit 道
func (r *QuestionRepository) FindSet(grade string, phase model.TestPhase, limit int) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("grade = ? AND test_phase = ?", grade, phase).
		Order("created_at desc").
		Limit(limit).
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) (int64, error) {
	res := r.DB.Delete(&model.Question{}, id)
	return res.RowsAffected, res.Error
}

// QuestionStats 题库聚合统计
type QuestionStats struct {
	Total           int64 `json:"total"`
	SampleCount     int64 `json:"sampleCount"`
	LiveCount       int64 `json:"liveCount"`
	GradeCount      int64 `json:"gradeCount"`
	TypeCount       int64 `json:"typeCount"`
	DifficultyCount int64 `json:"difficultyCount"`
}

func (r *QuestionRepository) Stats() (*QuestionStats, error) {
	var stats QuestionStats

	if err := r.DB.Model(&model.Question{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Question{}).Where("test_phase = ?", model.PhaseSample).Count(&stats.SampleCount).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Question{}).Where("test_phase = ?", model.PhaseLive).Count(&stats.LiveCount).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Question{}).Distinct("grade").Count(&stats.GradeCount).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Question{}).Distinct("type").Count(&stats.TypeCount).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Question{}).Distinct("difficulty").Count(&stats.DifficultyCount).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
