package service

import (
	"errors"
	"testing"
	"time"

	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo, testConfig()), userRepo
}

func registrationUser(username, mobile string) *model.User {
	return &model.User{
		Username:     username,
		MobileNumber: mobile,
		Password:     "secret-password",
		FullName:     "Test Student",
		Grade:        "Grade5",
		DOB:          time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
		School:       "Test School",
	}
}

func TestRegisterIssuesValidToken(t *testing.T) {
	svc, userRepo := newAuthService(t)

	user := registrationUser("alice", "9000000001")
	token, err := svc.Register(user)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user id = %d, want %d", claims.UserID, user.ID)
	}
	if claims.Username != "alice" {
		t.Errorf("token username = %q, want alice", claims.Username)
	}

	stored, err := userRepo.FindByUsername("alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if stored.Password == "secret-password" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret-password")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.Register(registrationUser("alice", "9000000001")); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(registrationUser("alice", "9000000002"))
	if !errors.Is(err, util.ErrUsernameTaken) {
		t.Errorf("same username: expected ErrUsernameTaken, got %v", err)
	}

	_, err = svc.Register(registrationUser("bob", "9000000001"))
	if !errors.Is(err, util.ErrMobileNumberTaken) {
		t.Errorf("same mobile: expected ErrMobileNumberTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.Register(registrationUser("alice", "9000000001")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.Login("9000000001", "secret-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := util.ParseJWT(token, svc.Cfg.JWT.Secret); err != nil {
		t.Errorf("login token does not parse: %v", err)
	}

	// 密码错和手机号不存在返回同一个错误
	if _, err := svc.Login("9000000001", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("9999999999", "secret-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("unknown mobile: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc, _ := newAuthService(t)

	user := registrationUser("alice", "9000000001")
	token, err := svc.Register(user)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := util.ParseJWT(token, "some-other-secret-entirely-wrong"); err == nil {
		t.Error("token signed with a different secret was accepted")
	}
	if _, err := util.ParseJWT(token+"x", svc.Cfg.JWT.Secret); err == nil {
		t.Error("tampered token was accepted")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.ExpireTime = -time.Minute

	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), cfg)

	token, err := svc.Register(registrationUser("alice", "9000000001"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := util.ParseJWT(token, cfg.JWT.Secret); err == nil {
		t.Error("expired token was accepted")
	}
}
