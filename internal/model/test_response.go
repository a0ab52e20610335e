package model

import (
	"encoding/json"
	"time"
)

type TestType string

const (
	TestLevel1 TestType = "level1"
	TestLevel2 TestType = "level2"
	TestLevel3 TestType = "level3"
)

// ValidTestType 检查路径参数里的测试类型
func ValidTestType(t string) bool {
	switch TestType(t) {
	case TestLevel1, TestLevel2, TestLevel3:
		return true
	}
	return false
}

// TestResponse 一次测试提交的台账记录，(user_id, test_type) 唯一，创建后不再修改
// swagger:model TestResponse
type TestResponse struct {
	UUIDBase
	UserID         uint            `gorm:"not null;uniqueIndex:idx_user_test_type" json:"userId"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TestType       TestType        `gorm:"size:20;not null;uniqueIndex:idx_user_test_type" json:"testType"`
	Grade          string          `gorm:"size:20;not null" json:"grade"`
	Responses      json.RawMessage `gorm:"type:json" json:"responses"` // JSON: []QuestionResponse
	Score          int             `gorm:"not null" json:"score"`
	TotalQuestions int             `gorm:"not null" json:"totalQuestions"`
	CompletedAt    time.Time       `gorm:"not null" json:"completedAt"`
}

func (TestResponse) TableName() string {
	return "test_responses"
}

type QuestionResponse struct {
	QuestionID uint            `json:"questionId"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	IsCorrect  *bool           `json:"isCorrect,omitempty"`
	TimeTaken  int             `json:"timeTaken"` // 秒
}
