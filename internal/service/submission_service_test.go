package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/util"

	"gorm.io/gorm"
)

func newSubmissionService(db *gorm.DB) *SubmissionService {
	return NewSubmissionService(
		repository.NewTestResponseRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewUserRepository(db),
	)
}

func intPtr(v int) *int { return &v }

func TestSubmitFlow(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(db)

	user := seedUser(t, db, "alice", "9000000001")
	q1 := seedQuestion(t, db, "Grade5", model.PhaseLive)
	q2 := seedQuestion(t, db, "Grade5", model.PhaseLive)

	eligible, err := svc.CheckEligibility(user.ID, model.TestLevel1)
	if err != nil {
		t.Fatalf("CheckEligibility: %v", err)
	}
	if !eligible {
		t.Fatal("fresh user should be eligible")
	}

	correct := true
	req := SubmitReq{
		Grade: "Grade5",
		Responses: []ResponseReq{
			{QuestionID: q1.ID, Answer: json.RawMessage(`"b"`), IsCorrect: &correct, TimeTaken: 12},
			{QuestionID: q2.ID, Answer: json.RawMessage(`"a"`), TimeTaken: 20},
		},
		Score:          intPtr(7),
		TotalQuestions: intPtr(10),
	}

	result, err := svc.Submit(user.ID, model.TestLevel1, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Percentage != 70 {
		t.Errorf("percentage = %d, want 70", result.Percentage)
	}

	eligible, err = svc.CheckEligibility(user.ID, model.TestLevel1)
	if err != nil {
		t.Fatalf("CheckEligibility: %v", err)
	}
	if eligible {
		t.Error("user should not be eligible after submitting")
	}

	// 同类型不能再次提交，别的类型不受影响
	if _, err := svc.Submit(user.ID, model.TestLevel1, req); !errors.Is(err, util.ErrTestAlreadySubmitted) {
		t.Errorf("second submit: expected ErrTestAlreadySubmitted, got %v", err)
	}
	if eligible, _ := svc.CheckEligibility(user.ID, model.TestLevel2); !eligible {
		t.Error("level2 eligibility should be unaffected")
	}

	// 用户快照被追加
	stored, err := repository.NewUserRepository(db).FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	var completed []model.CompletedTest
	if err := json.Unmarshal(stored.CompletedTests, &completed); err != nil {
		t.Fatalf("unmarshal completed tests: %v", err)
	}
	if len(completed) != 1 || completed[0].TestType != model.TestLevel1 || completed[0].Score != 7 {
		t.Errorf("unexpected completed tests snapshot: %+v", completed)
	}
}

func TestSubmitValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(db)
	user := seedUser(t, db, "alice", "9000000001")

	tests := []struct {
		name string
		req  SubmitReq
	}{
		{
			name: "nil responses",
			req:  SubmitReq{Grade: "Grade5", Score: intPtr(1), TotalQuestions: intPtr(1)},
		},
		{
			name: "zero total",
			req:  SubmitReq{Grade: "Grade5", Responses: []ResponseReq{}, Score: intPtr(0), TotalQuestions: intPtr(0)},
		},
		{
			name: "negative score",
			req:  SubmitReq{Grade: "Grade5", Responses: []ResponseReq{}, Score: intPtr(-1), TotalQuestions: intPtr(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(user.ID, model.TestLevel1, tt.req)
			if !util.IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	// 校验失败不应占用提交资格
	if eligible, _ := svc.CheckEligibility(user.ID, model.TestLevel1); !eligible {
		t.Error("failed submissions must not consume eligibility")
	}
}

func TestSubmitDropsUnknownQuestions(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(db)

	user := seedUser(t, db, "alice", "9000000001")
	q := seedQuestion(t, db, "Grade5", model.PhaseLive)

	req := SubmitReq{
		Grade: "Grade5",
		Responses: []ResponseReq{
			{QuestionID: q.ID, Answer: json.RawMessage(`"b"`)},
			{QuestionID: 424242, Answer: json.RawMessage(`"a"`)},
		},
		Score:          intPtr(1),
		TotalQuestions: intPtr(2),
	}
	if _, err := svc.Submit(user.ID, model.TestLevel2, req); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	entry, err := svc.GetLedgerEntry(user.ID, model.TestLevel2)
	if err != nil {
		t.Fatalf("GetLedgerEntry: %v", err)
	}
	var saved []model.QuestionResponse
	if err := json.Unmarshal(entry.Responses, &saved); err != nil {
		t.Fatalf("unmarshal responses: %v", err)
	}
	if len(saved) != 1 || saved[0].QuestionID != q.ID {
		t.Errorf("expected only the known question to be kept, got %+v", saved)
	}
}

func TestDuplicateLedgerWriteDetected(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewTestResponseRepository(db)
	user := seedUser(t, db, "alice", "9000000001")

	first := &model.TestResponse{
		UserID:         user.ID,
		TestType:       model.TestLevel1,
		Grade:          "Grade5",
		Responses:      json.RawMessage(`[]`),
		Score:          5,
		TotalQuestions: 10,
		CompletedAt:    time.Now(),
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// 资格预检和写入之间的并发窗口靠唯一索引兜底
	second := &model.TestResponse{
		UserID:         user.ID,
		TestType:       model.TestLevel1,
		Grade:          "Grade5",
		Responses:      json.RawMessage(`[]`),
		Score:          6,
		TotalQuestions: 10,
		CompletedAt:    time.Now(),
	}
	err := repo.Create(second)
	if err == nil {
		t.Fatal("expected unique index to reject the second ledger write")
	}
	if !repository.IsDuplicateKeyError(err) {
		t.Errorf("IsDuplicateKeyError(%v) = false, want true", err)
	}
}

func TestListUserTests(t *testing.T) {
	db := newTestDB(t)
	svc := newSubmissionService(db)
	repo := repository.NewTestResponseRepository(db)

	user := seedUser(t, db, "alice", "9000000001")
	q := seedQuestion(t, db, "Grade5", model.PhaseLive)

	olderResponses, _ := json.Marshal([]model.QuestionResponse{
		{QuestionID: q.ID, Answer: json.RawMessage(`"b"`), TimeTaken: 15},
	})
	older := &model.TestResponse{
		UserID:         user.ID,
		TestType:       model.TestLevel1,
		Grade:          "Grade5",
		Responses:      olderResponses,
		Score:          8,
		TotalQuestions: 10,
		CompletedAt:    time.Now().Add(-time.Hour),
	}
	newerResponses, _ := json.Marshal([]model.QuestionResponse{
		{QuestionID: 424242, Answer: json.RawMessage(`"a"`)},
	})
	newer := &model.TestResponse{
		UserID:         user.ID,
		TestType:       model.TestLevel2,
		Grade:          "Grade5",
		Responses:      newerResponses,
		Score:          9,
		TotalQuestions: 10,
		CompletedAt:    time.Now(),
	}
	if err := repo.Create(older); err != nil {
		t.Fatalf("Create older: %v", err)
	}
	if err := repo.Create(newer); err != nil {
		t.Fatalf("Create newer: %v", err)
	}

	views, err := svc.ListUserTests(user.ID)
	if err != nil {
		t.Fatalf("ListUserTests: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 records, got %d", len(views))
	}

	// 最近完成的在前
	if views[0].TestType != model.TestLevel2 || views[1].TestType != model.TestLevel1 {
		t.Errorf("unexpected order: %s, %s", views[0].TestType, views[1].TestType)
	}

	// 已知题目解析出题干，未知题目保留原始作答但不带题干
	enriched := views[1].Responses[0]
	if enriched.QuestionText != q.Text || enriched.QuestionType != string(q.Type) {
		t.Errorf("expected enrichment from question %d, got %+v", q.ID, enriched)
	}
	unknown := views[0].Responses[0]
	if unknown.QuestionText != "" {
		t.Errorf("unknown question should not be enriched, got %+v", unknown)
	}

	if _, err := svc.GetLedgerEntry(user.ID, model.TestLevel3); !errors.Is(err, util.ErrTestNotFound) {
		t.Errorf("expected ErrTestNotFound, got %v", err)
	}
}
