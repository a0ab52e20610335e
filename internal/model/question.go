package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	ShortAnswer    QuestionType = "short-answer"
	DragAndDrop    QuestionType = "drag-and-drop"
	MatchPairs     QuestionType = "match-pairs"
)

type TestPhase string

const (
	PhaseSample TestPhase = "sample"
	PhaseLive   TestPhase = "live"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultGrade 在指定年级没有题目时作为兜底题库
const DefaultGrade = "default"

var allowedGrades = map[string]bool{
	"Grade1": true, "Grade2": true, "Grade3": true, "Grade4": true,
	"Grade5": true, "Grade6": true, "Grade7": true, "Grade8": true,
	"Grade9": true, "Grade10": true, "Grade11": true, "Grade12": true,
	DefaultGrade: true,
}

func ValidGrade(grade string) bool {
	return allowedGrades[grade]
}

// GradeRank 年级的数字序，default 兜底题库排最前；
// 字符串排序会把 Grade10 排在 Grade2 前面，列表排序都应该用这个
func GradeRank(grade string) int {
	if grade == DefaultGrade {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimPrefix(grade, "Grade"))
	return n
}

// Question 题库中的一道题，Type 决定哪些 JSON 字段必填
// swagger:model Question
type Question struct {
	BaseModel
	TestPhase  TestPhase       `gorm:"size:20;not null;index" json:"testPhase"`
	Grade      string          `gorm:"size:20;not null;index" json:"grade"`
	Type       QuestionType    `gorm:"size:30;not null" json:"type"`
	Text       string          `gorm:"type:text;not null" json:"text"`
	Difficulty Difficulty      `gorm:"size:10;default:'medium'" json:"difficulty"`
	Tags       json.RawMessage `gorm:"type:json" json:"tags,omitempty"` // JSON: []string

	// multiple-choice
	Options       json.RawMessage `gorm:"type:json" json:"options,omitempty"` // JSON: []QuestionOption
	CorrectAnswer string          `gorm:"type:text" json:"correctAnswer,omitempty"`

	// drag-and-drop
	Items        json.RawMessage `gorm:"type:json" json:"items,omitempty"`        // JSON: []DragItem
	CorrectOrder json.RawMessage `gorm:"type:json" json:"correctOrder,omitempty"` // JSON: []string（item id 的排列）

	// match-pairs
	Pairs json.RawMessage `gorm:"type:json" json:"pairs,omitempty"` // JSON: []MatchPair
}

func (Question) TableName() string {
	return "questions"
}

type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type DragItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type MatchPair struct {
	ID    string `json:"id"`
	Left  string `json:"left"`
	Right string `json:"right"`
}
