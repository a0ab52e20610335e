package repository

import (
	"gmc_backend/internal/model"

	"gorm.io/gorm"
)

type TestResponseRepository struct {
	DB *gorm.DB
}

func NewTestResponseRepository(db *gorm.DB) *TestResponseRepository {
	return &TestResponseRepository{DB: db}
}

func (r *TestResponseRepository) Create(tr *model.TestResponse) error {
	return r.DB.Create(tr).Error
}

func (r *TestResponseRepository) FindByUserAndType(userID uint, testType model.TestType) (*model.TestResponse, error) {
	var tr model.TestResponse
	err := r.DB.Where("user_id = ? AND test_type = ?", userID, testType).First(&tr).Error
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func (r *TestResponseRepository) ExistsByUserAndType(userID uint, testType model.TestType) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TestResponse{}).
		Where("user_id = ? AND test_type = ?", userID, testType).
		Count(&count).Error
	return count > 0, err
}

func (r *TestResponseRepository) ListByUser(userID uint) ([]model.TestResponse, error) {
	var trs []model.TestResponse
	err := r.DB.Where("user_id = ?", userID).
		Order("completed_at desc").
		Find(&trs).Error
	return trs, err
}
