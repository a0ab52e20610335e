package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

type QuestionOptionReq struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type DragItemReq struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type MatchPairReq struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// QuestionReq 创建/更新题目的请求体，Type 决定哪些字段必填
type QuestionReq struct {
	TestPhase     string              `json:"testPhase" binding:"required"`
	Grade         string              `json:"grade" binding:"required"`
	Type          string              `json:"type" binding:"required"`
	Text          string              `json:"text"`
	Difficulty    string              `json:"difficulty"`
	Tags          []string            `json:"tags"`
	Options       []QuestionOptionReq `json:"options"`
	CorrectAnswer string              `json:"correctAnswer"`
	Items         []DragItemReq       `json:"items"`
	CorrectOrder  []string            `json:"correctOrder"`
	Pairs         []MatchPairReq      `json:"pairs"`
}

// validate 按题型逐一检查必填字段，错误信息指明具体缺失项
func (req *QuestionReq) validate() error {
	if model.TestPhase(req.TestPhase) != model.PhaseSample && model.TestPhase(req.TestPhase) != model.PhaseLive {
		return util.NewValidationError(fmt.Sprintf("testPhase must be %q or %q", model.PhaseSample, model.PhaseLive))
	}
	if !model.ValidGrade(req.Grade) {
		return util.NewValidationError(fmt.Sprintf("unknown grade %q", req.Grade))
	}
	if req.Text == "" {
		return util.NewValidationError("question text is required")
	}
	if req.Difficulty != "" {
		switch model.Difficulty(req.Difficulty) {
		case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		default:
			return util.NewValidationError(fmt.Sprintf("unknown difficulty %q", req.Difficulty))
		}
	}

	switch model.QuestionType(req.Type) {
	case model.MultipleChoice:
		if len(req.Options) < 2 {
			return util.NewValidationError("multiple-choice questions require at least 2 options")
		}
		optionIDs := make(map[string]bool, len(req.Options))
		for _, opt := range req.Options {
			if opt.ID == "" || opt.Text == "" {
				return util.NewValidationError("each option requires a non-empty id and text")
			}
			optionIDs[opt.ID] = true
		}
		if req.CorrectAnswer == "" {
			return util.NewValidationError("multiple-choice questions require a correctAnswer")
		}
		if !optionIDs[req.CorrectAnswer] {
			return util.NewValidationError("correctAnswer must reference one of the option ids")
		}
	case model.ShortAnswer:
		if req.CorrectAnswer == "" {
			return util.NewValidationError("short-answer questions require a correctAnswer")
		}
	case model.DragAndDrop:
		if len(req.Items) < 2 {
			return util.NewValidationError("drag-and-drop questions require at least 2 items")
		}
		itemIDs := make(map[string]bool, len(req.Items))
		for _, item := range req.Items {
			if item.ID == "" || item.Text == "" {
				return util.NewValidationError("each item requires a non-empty id and text")
			}
			itemIDs[item.ID] = true
		}
		if len(req.CorrectOrder) != len(req.Items) {
			return util.NewValidationError("correctOrder must be a permutation of the item ids")
		}
		seen := make(map[string]bool, len(req.CorrectOrder))
		for _, id := range req.CorrectOrder {
			if !itemIDs[id] || seen[id] {
				return util.NewValidationError("correctOrder must be a permutation of the item ids")
			}
			seen[id] = true
		}
	case model.MatchPairs:
		if len(req.Pairs) < 2 {
			return util.NewValidationError("match-pairs questions require at least 2 pairs")
		}
		for _, p := range req.Pairs {
			if p.ID == "" || p.Left == "" || p.Right == "" {
				return util.NewValidationError("each pair requires a non-empty id, left and right")
			}
		}
	default:
		return util.NewValidationError(fmt.Sprintf("unknown question type %q", req.Type))
	}

	return nil
}

// toModel 根据题型只保留对应的变体字段，更新换题型时不会残留旧字段
func (req *QuestionReq) toModel(q *model.Question) error {
	q.TestPhase = model.TestPhase(req.TestPhase)
	q.Grade = req.Grade
	q.Type = model.QuestionType(req.Type)
	q.Text = req.Text
	q.Difficulty = model.Difficulty(req.Difficulty)
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyMedium
	}

	q.Tags = nil
	q.Options = nil
	q.CorrectAnswer = ""
	q.Items = nil
	q.CorrectOrder = nil
	q.Pairs = nil

	if len(req.Tags) > 0 {
		raw, err := json.Marshal(req.Tags)
		if err != nil {
			return err
		}
		q.Tags = raw
	}

	switch q.Type {
	case model.MultipleChoice:
		raw, err := json.Marshal(req.Options)
		if err != nil {
			return err
		}
		q.Options = raw
		q.CorrectAnswer = req.CorrectAnswer
	case model.ShortAnswer:
		q.CorrectAnswer = req.CorrectAnswer
	case model.DragAndDrop:
		items, err := json.Marshal(req.Items)
		if err != nil {
			return err
		}
		order, err := json.Marshal(req.CorrectOrder)
		if err != nil {
			return err
		}
		q.Items = items
		q.CorrectOrder = order
	case model.MatchPairs:
		raw, err := json.Marshal(req.Pairs)
		if err != nil {
			return err
		}
		q.Pairs = raw
	}

	return nil
}

func (s *QuestionService) Create(req QuestionReq) (*model.Question, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	q := &model.Question{}
	if err := req.toModel(q); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) GetByID(id uint) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) Update(id uint, req QuestionReq) (*model.Question, error) {
	q, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	// 更新时重新做全量校验
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := req.toModel(q); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Delete(id uint) error {
	affected, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return util.ErrQuestionNotFound
	}
	return nil
}

func (s *QuestionService) List(filter repository.QuestionFilter) ([]model.Question, error) {
	return s.Repo.List(filter)
}

// GetQuestionSet 取某年级的体验题或正式题，体验题最多 10 道，正式题最多 20 道；
// 该年级没有题时回退到 default 年级
func (s *QuestionService) GetQuestionSet(grade string, phase model.TestPhase, limit int) ([]model.Question, error) {
	maxSize := util.SampleSetLimit
	if phase == model.PhaseLive {
		maxSize = util.LiveSetLimit
	}
	if limit <= 0 || limit > maxSize {
		limit = maxSize
	}

	qs, err := s.Repo.FindSet(grade, phase, limit)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 && grade != model.DefaultGrade {
		return s.Repo.FindSet(model.DefaultGrade, phase, limit)
	}
	return qs, nil
}

func (s *QuestionService) Stats() (*repository.QuestionStats, error) {
	return s.Repo.Stats()
}
