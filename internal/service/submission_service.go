package service

import (
	"encoding/json"
	"errors"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/util"
	"gmc_backend/pkg/logger"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmissionService struct {
	TestRepo     *repository.TestResponseRepository
	QuestionRepo *repository.QuestionRepository
	UserRepo     *repository.UserRepository
}

func NewSubmissionService(testRepo *repository.TestResponseRepository, questionRepo *repository.QuestionRepository, userRepo *repository.UserRepository) *SubmissionService {
	return &SubmissionService{
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		UserRepo:     userRepo,
	}
}

type ResponseReq struct {
	QuestionID uint            `json:"questionId" binding:"required"`
	Answer     json.RawMessage `json:"answer"`
	IsCorrect  *bool           `json:"isCorrect"`
	TimeTaken  int             `json:"timeTaken"`
}

type SubmitReq struct {
	Grade          string        `json:"grade" binding:"required"`
	Responses      []ResponseReq `json:"responses"`
	Score          *int          `json:"score" binding:"required"`
	TotalQuestions *int          `json:"totalQuestions" binding:"required"`
}

type SubmitResult struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	Percentage     int `json:"percentage"`
}

// CheckEligibility 该用户该测试是否还未提交过
func (s *SubmissionService) CheckEligibility(userID uint, testType model.TestType) (bool, error) {
	exists, err := s.TestRepo.ExistsByUserAndType(userID, testType)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Submit 提交一次测试：
// 校验入参 → 复查资格 → 丢弃引用不存在题目的作答 → 写台账 → 追加用户快照。
// 台账写入和用户快照更新是两次独立写，没有跨表事务；台账为准。
func (s *SubmissionService) Submit(userID uint, testType model.TestType, req SubmitReq) (*SubmitResult, error) {
	if req.Responses == nil {
		return nil, util.NewValidationError("responses must be an array")
	}
	if req.Score == nil || req.TotalQuestions == nil {
		return nil, util.NewValidationError("score and totalQuestions are required")
	}
	score, total := *req.Score, *req.TotalQuestions
	if total < 1 {
		return nil, util.NewValidationError("totalQuestions must be a positive integer")
	}
	if score < 0 {
		return nil, util.NewValidationError("score must not be negative")
	}

	eligible, err := s.CheckEligibility(userID, testType)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, util.ErrTestAlreadySubmitted
	}

	filtered, err := s.resolveResponses(req.Responses)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(filtered)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tr := &model.TestResponse{
		UserID:         userID,
		TestType:       testType,
		Grade:          req.Grade,
		Responses:      raw,
		Score:          score,
		TotalQuestions: total,
		CompletedAt:    now,
	}

	if err := s.TestRepo.Create(tr); err != nil {
		// 两个并发提交都可能通过上面的资格检查，唯一约束挡下第二个；
		// 对调用方来说这和预检失败是同一回事
		if repository.IsDuplicateKeyError(err) {
			return nil, util.ErrTestAlreadySubmitted
		}
		return nil, err
	}

	err = s.UserRepo.AppendCompletedTest(userID, model.CompletedTest{
		TestType:    testType,
		CompletedAt: now,
		Score:       score,
	})
	if err != nil {
		// 台账已写入，快照更新失败不回滚
		logger.Log.Error("failed to append completed test to user record",
			zap.Uint("userID", userID),
			zap.String("testType", string(testType)),
			zap.Error(err))
		return nil, err
	}

	return &SubmitResult{
		Score:          score,
		TotalQuestions: total,
		Percentage:     int(math.Round(100 * float64(score) / float64(total))),
	}, nil
}

// resolveResponses 丢弃题目 id 解析不到的作答，保留其余（部分数据好过整单失败）
func (s *SubmissionService) resolveResponses(responses []ResponseReq) ([]model.QuestionResponse, error) {
	ids := make([]uint, 0, len(responses))
	for _, r := range responses {
		ids = append(ids, r.QuestionID)
	}

	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	filtered := make([]model.QuestionResponse, 0, len(responses))
	for _, r := range responses {
		if !known[r.QuestionID] {
			logger.Log.Warn("dropping response for unknown question",
				zap.Uint("questionID", r.QuestionID))
			continue
		}
		filtered = append(filtered, model.QuestionResponse{
			QuestionID: r.QuestionID,
			Answer:     r.Answer,
			IsCorrect:  r.IsCorrect,
			TimeTaken:  r.TimeTaken,
		})
	}
	return filtered, nil
}

// UserTestView 用户历史测试记录，作答里的题目 id 已解析为题干和题型
type UserTestView struct {
	ID             string             `json:"id"`
	TestType       model.TestType     `json:"testType"`
	Grade          string             `json:"grade"`
	Score          int                `json:"score"`
	TotalQuestions int                `json:"totalQuestions"`
	CompletedAt    time.Time          `json:"completedAt"`
	Responses      []EnrichedResponse `json:"responses"`
}

type EnrichedResponse struct {
	QuestionID   uint            `json:"questionId"`
	QuestionText string          `json:"questionText,omitempty"`
	QuestionType string          `json:"questionType,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	IsCorrect    *bool           `json:"isCorrect,omitempty"`
	TimeTaken    int             `json:"timeTaken"`
}

// ListUserTests 用户全部台账记录，最近的在前
func (s *SubmissionService) ListUserTests(userID uint) ([]UserTestView, error) {
	records, err := s.TestRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	// 汇总所有记录引用的题目，一次性查出
	idSet := make(map[uint]bool)
	parsed := make([][]model.QuestionResponse, len(records))
	for i, rec := range records {
		var responses []model.QuestionResponse
		if len(rec.Responses) > 0 {
			if err := json.Unmarshal(rec.Responses, &responses); err != nil {
				return nil, err
			}
		}
		parsed[i] = responses
		for _, r := range responses {
			idSet[r.QuestionID] = true
		}
	}

	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	views := make([]UserTestView, len(records))
	for i, rec := range records {
		enriched := make([]EnrichedResponse, 0, len(parsed[i]))
		for _, r := range parsed[i] {
			er := EnrichedResponse{
				QuestionID: r.QuestionID,
				Answer:     r.Answer,
				IsCorrect:  r.IsCorrect,
				TimeTaken:  r.TimeTaken,
			}
			if q, ok := byID[r.QuestionID]; ok {
				er.QuestionText = q.Text
				er.QuestionType = string(q.Type)
			}
			enriched = append(enriched, er)
		}
		views[i] = UserTestView{
			ID:             rec.ID,
			TestType:       rec.TestType,
			Grade:          rec.Grade,
			Score:          rec.Score,
			TotalQuestions: rec.TotalQuestions,
			CompletedAt:    rec.CompletedAt,
			Responses:      enriched,
		}
	}
	return views, nil
}

// GetLedgerEntry 单条台账记录
func (s *SubmissionService) GetLedgerEntry(userID uint, testType model.TestType) (*model.TestResponse, error) {
	tr, err := s.TestRepo.FindByUserAndType(userID, testType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTestNotFound
	}
	return tr, err
}
