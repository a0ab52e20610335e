package model

import (
	"encoding/json"
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username             string    `gorm:"size:100;unique;not null" json:"username"`
	MobileNumber         string    `gorm:"size:20;unique;not null" json:"mobileNumber"`
	Email                string    `gorm:"size:100" json:"email,omitempty"` // 历史字段，可选且不唯一
	Password             string    `gorm:"size:100;not null" json:"-"`
	FullName             string    `gorm:"size:100;not null" json:"fullName"`
	Grade                string    `gorm:"size:20;not null" json:"grade"`
	DOB                  time.Time `gorm:"not null" json:"dob"`
	School               string    `gorm:"size:255;not null" json:"school"`
	Branch               string    `gorm:"size:255" json:"branch,omitempty"`
	AlternatePhoneNumber string    `gorm:"size:20" json:"alternatePhoneNumber,omitempty"`

	// 已完成测试的冗余快照，仅由提交流程追加；权威数据在 test_responses
	CompletedTests json.RawMessage `gorm:"type:json" json:"completedTests,omitempty"` // JSON: []CompletedTest
}

func (User) TableName() string {
	return "users"
}

type CompletedTest struct {
	TestType    TestType  `json:"testType"`
	CompletedAt time.Time `json:"completedAt"`
	Score       int       `json:"score"`
}

// IsProfileComplete 报名所需的资料是否齐全
func (u *User) IsProfileComplete() bool {
	return u.FullName != "" && u.Grade != "" && !u.DOB.IsZero() && u.School != ""
}
