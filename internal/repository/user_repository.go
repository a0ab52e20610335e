package repository

import (
	"encoding/json"
	"gmc_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByMobileNumber(mobile string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("mobile_number = ?", mobile).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// AppendCompletedTest 向用户的已完成测试快照追加一条记录
// 快照仅用于展示，台账 test_responses 才是权威数据；
// 读取和写回之间没有行锁，不同测试类型的并发提交可能丢掉其中一条追加，
// 丢失的条目以台账为准可随时重建，这里不加锁
func (r *UserRepository) AppendCompletedTest(userID uint, entry model.CompletedTest) error {
	user, err := r.FindByID(userID)
	if err != nil {
		return err
	}

	var completed []model.CompletedTest
	if len(user.CompletedTests) > 0 {
		if err := json.Unmarshal(user.CompletedTests, &completed); err != nil {
			return err
		}
	}
	completed = append(completed, entry)

	raw, err := json.Marshal(completed)
	if err != nil {
		return err
	}

	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("completed_tests", json.RawMessage(raw)).
		Error
}
