package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gmc_backend/internal/config"
	"gmc_backend/internal/middleware"
	"gmc_backend/internal/model"
	"gmc_backend/internal/repository"
	"gmc_backend/internal/service"
	"gmc_backend/internal/util"
	"gmc_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:ctrltest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Question{}, &model.TestResponse{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-not-for-release-use",
			ExpireTime: time.Hour,
		},
	}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	testRepo := repository.NewTestResponseRepository(db)

	authService := service.NewAuthService(userRepo, cfg)
	userService := service.NewUserService(userRepo)
	questionService := service.NewQuestionService(questionRepo)
	submissionService := service.NewSubmissionService(testRepo, questionRepo, userRepo)

	authController := NewAuthController(authService, userService)
	questionController := NewQuestionController(questionService)
	testController := NewTestController(submissionService)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/users", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/questions", questionController.List)
	api.GET("/questions/:id", questionController.GetByID)
	api.POST("/questions", questionController.Create)
	api.PUT("/questions/:id", questionController.Update)
	api.DELETE("/questions/:id", questionController.Delete)
	api.GET("/sample-test/:grade", questionController.SampleTest)

	authed := router.Group("/api")
	authed.Use(middleware.AuthMiddleware(cfg, userRepo))
	authed.GET("/tests/:testType/eligibility", testController.Eligibility)
	authed.POST("/tests/:testType/submit", testController.Submit)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, util.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp util.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func registerBody(username, mobile string) map[string]string {
	return map[string]string{
		"username":     username,
		"password":     "secret-password",
		"mobileNumber": mobile,
		"fullName":     "Test Student",
		"grade":        "Grade5",
		"dob":          "2014-06-01",
		"school":       "Test School",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/users", "", registerBody("alice", "9000000001"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
	if !resp.Success {
		t.Errorf("expected success envelope, got %+v", resp)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok || data["token"] == "" {
		t.Errorf("expected token in response data, got %+v", resp.Data)
	}

	// 重复用户名
	w, resp = doJSON(t, router, http.MethodPost, "/api/users", "", registerBody("alice", "9000000002"))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate username: status = %d, want 409", w.Code)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("expected error envelope, got %+v", resp)
	}

	// 非法年级
	bad := registerBody("bob", "9000000003")
	bad["grade"] = "Grade13"
	w, _ = doJSON(t, router, http.MethodPost, "/api/users", "", bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad grade: status = %d, want 400", w.Code)
	}

	// default 不是可报名年级
	bad["grade"] = model.DefaultGrade
	bad["mobileNumber"] = "9000000004"
	w, _ = doJSON(t, router, http.MethodPost, "/api/users", "", bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("default grade: status = %d, want 400", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	router := setupTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/users", "", registerBody("alice", "9000000001"))

	w, resp := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"mobileNumber": "9000000001",
		"password":     "secret-password",
	})
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("login failed: status %d, body %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"mobileNumber": "9000000001",
		"password":     "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", w.Code)
	}
}

func TestSubmitEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	_, resp := doJSON(t, router, http.MethodPost, "/api/users", "", registerBody("alice", "9000000001"))
	token := resp.Data.(map[string]interface{})["token"].(string)

	// 无令牌
	w, _ := doJSON(t, router, http.MethodGet, "/api/tests/level1/eligibility", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/tests/level1/eligibility", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("eligibility: status = %d, body %s", w.Code, w.Body.String())
	}
	if eligible := resp.Data.(map[string]interface{})["eligible"]; eligible != true {
		t.Errorf("expected eligible true, got %v", eligible)
	}

	// 非法测试类型
	w, _ = doJSON(t, router, http.MethodGet, "/api/tests/level9/eligibility", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad test type: status = %d, want 400", w.Code)
	}

	submit := map[string]interface{}{
		"grade":          "Grade5",
		"responses":      []interface{}{},
		"score":          7,
		"totalQuestions": 10,
	}
	w, resp = doJSON(t, router, http.MethodPost, "/api/tests/level1/submit", token, submit)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: status = %d, body %s", w.Code, w.Body.String())
	}
	if pct := resp.Data.(map[string]interface{})["percentage"]; pct != float64(70) {
		t.Errorf("percentage = %v, want 70", pct)
	}

	// 重复提交
	w, resp = doJSON(t, router, http.MethodPost, "/api/tests/level1/submit", token, submit)
	if w.Code != http.StatusConflict {
		t.Errorf("resubmit: status = %d, want 409", w.Code)
	}
	if resp.Success {
		t.Errorf("expected error envelope on resubmit, got %+v", resp)
	}

	w, resp = doJSON(t, router, http.MethodGet, "/api/tests/level1/eligibility", token, nil)
	if eligible := resp.Data.(map[string]interface{})["eligible"]; eligible != false {
		t.Errorf("expected eligible false after submit, got %v", eligible)
	}
}
