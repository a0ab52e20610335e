package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gmc_backend/internal/config"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

// newTestDB 每个测试用一个独立的内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Question{}, &model.TestResponse{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-not-for-release-use",
			ExpireTime: time.Hour,
		},
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, mobile string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		MobileNumber: mobile,
		Password:     "irrelevant",
		FullName:     "Test Student",
		Grade:        "Grade5",
		DOB:          time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
		School:       "Test School",
	}
	if err := repository.NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedQuestion(t *testing.T, db *gorm.DB, grade string, phase model.TestPhase) *model.Question {
	t.Helper()
	svc := NewQuestionService(repository.NewQuestionRepository(db))
	q, err := svc.Create(QuestionReq{
		TestPhase: string(phase),
		Grade:     grade,
		Type:      string(model.MultipleChoice),
		Text:      "What is 2 + 2?",
		Options: []QuestionOptionReq{
			{ID: "a", Text: "3"},
			{ID: "b", Text: "4"},
		},
		CorrectAnswer: "b",
	})
	if err != nil {
		t.Fatalf("seed question: %v", err)
	}
	return q
}
