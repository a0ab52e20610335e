package service

import (
	"errors"
	"gmc_backend/internal/config"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost 注册口令的哈希强度
const bcryptCost = 12

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// Register 注册新用户并签发令牌
// 用户名和手机号都要求唯一，冲突时错误信息区分是哪一个
func (s *AuthService) Register(user *model.User) (string, error) {
	if _, err := s.UserRepo.FindByUsername(user.Username); err == nil {
		return "", util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	if _, err := s.UserRepo.FindByMobileNumber(user.MobileNumber); err == nil {
		return "", util.ErrMobileNumberTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcryptCost)
	if err != nil {
		return "", err
	}
	user.Password = string(hashedPassword)

	if err := s.UserRepo.Create(user); err != nil {
		// 预检和插入之间存在并发注册窗口，唯一约束兜底
		if repository.IsDuplicateKeyError(err) {
			if _, lookupErr := s.UserRepo.FindByUsername(user.Username); lookupErr == nil {
				return "", util.ErrUsernameTaken
			}
			return "", util.ErrMobileNumberTaken
		}
		return "", err
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// Login 按手机号登录，无论哪一项不匹配都返回同一个错误
func (s *AuthService) Login(mobileNumber, password string) (string, error) {
	user, err := s.UserRepo.FindByMobileNumber(mobileNumber)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
