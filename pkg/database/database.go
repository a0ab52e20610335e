package database

import (
	"encoding/json"
	"fmt"
	"gmc_backend/internal/config"
	"gmc_backend/internal/model"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 建表并在空题库时插入默认年级的体验题
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.TestResponse{},
	)
	if err != nil {
		return err
	}

	var count int64
	db.Model(&model.Question{}).Where("grade = ?", model.DefaultGrade).Count(&count)
	if count == 0 {
		for _, q := range defaultSampleQuestions() {
			db.Create(q)
		}
	}

	return nil
}

func defaultSampleQuestions() []*model.Question {
	mustJSON := func(v interface{}) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}

	return []*model.Question{
		{
			TestPhase: model.PhaseSample,
			Grade:     model.DefaultGrade,
			Type:      model.MultipleChoice,
			Text:      "What is 7 × 8?",
			Options: mustJSON([]model.QuestionOption{
				{ID: "a", Text: "54"},
				{ID: "b", Text: "56"},
				{ID: "c", Text: "64"},
				{ID: "d", Text: "48"},
			}),
			CorrectAnswer: "b",
			Difficulty:    model.DifficultyEasy,
			Tags:          mustJSON([]string{"multiplication"}),
		},
		{
			TestPhase:     model.PhaseSample,
			Grade:         model.DefaultGrade,
			Type:          model.ShortAnswer,
			Text:          "Write the next number in the sequence: 2, 4, 8, 16, ...",
			CorrectAnswer: "32",
			Difficulty:    model.DifficultyMedium,
			Tags:          mustJSON([]string{"sequences"}),
		},
		{
			TestPhase: model.PhaseSample,
			Grade:     model.DefaultGrade,
			Type:      model.DragAndDrop,
			Text:      "Arrange the numbers in ascending order.",
			Items: mustJSON([]model.DragItem{
				{ID: "i1", Text: "0.5"},
				{ID: "i2", Text: "1/3"},
				{ID: "i3", Text: "0.75"},
			}),
			CorrectOrder: mustJSON([]string{"i2", "i1", "i3"}),
			Difficulty:   model.DifficultyMedium,
			Tags:         mustJSON([]string{"ordering", "fractions"}),
		},
	}
}
