package service

import (
	"errors"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

// ProfileView 用户资料及报名所需字段是否齐全
type ProfileView struct {
	*model.User
	Completed bool `json:"completed"`
}

func (s *UserService) GetProfile(userID uint) (*ProfileView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Completed: user.IsProfileComplete()}, nil
}

// UpdateProfileReq 资料编辑，不经过这里改密码或改身份字段
type UpdateProfileReq struct {
	FullName             string `json:"fullName"`
	Grade                string `json:"grade"`
	DOB                  string `json:"dob"` // 2006-01-02
	School               string `json:"school"`
	Branch               string `json:"branch"`
	AlternatePhoneNumber string `json:"alternatePhoneNumber"`
	Email                string `json:"email"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileReq) (*ProfileView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Grade != "" {
		if !model.ValidGrade(req.Grade) || req.Grade == model.DefaultGrade {
			return nil, util.NewValidationError("unknown grade " + req.Grade)
		}
		user.Grade = req.Grade
	}
	if req.DOB != "" {
		dob, err := time.Parse(util.DateFormat, req.DOB)
		if err != nil {
			return nil, util.NewValidationError("dob must be in YYYY-MM-DD format")
		}
		user.DOB = dob
	}
	if req.School != "" {
		user.School = req.School
	}
	if req.Branch != "" {
		user.Branch = req.Branch
	}
	if req.AlternatePhoneNumber != "" {
		user.AlternatePhoneNumber = req.AlternatePhoneNumber
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Completed: user.IsProfileComplete()}, nil
}
