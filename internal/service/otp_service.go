package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"gmc_backend/internal/config"
	"gmc_backend/internal/util"
	"gmc_backend/pkg/logger"
	"math/big"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	otpTTL      = 5 * time.Minute
	otpThrottle = time.Minute
)

// OTPSender 向第三方短信网关下发验证码
type OTPSender interface {
	Send(ctx context.Context, mobileNumber, code string) error
}

type OTPService struct {
	Redis  *redis.Client
	Sender OTPSender
}

func NewOTPService(rdb *redis.Client, sender OTPSender) *OTPService {
	return &OTPService{Redis: rdb, Sender: sender}
}

// SendOTP 生成并下发 6 位验证码，同一号码一分钟内只发一次
func (s *OTPService) SendOTP(ctx context.Context, mobileNumber string) error {
	throttleKey := "otp:throttle:" + mobileNumber
	ok, err := s.Redis.SetNX(ctx, throttleKey, "1", otpThrottle).Result()
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrOTPThrottled
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	if err := s.Redis.Set(ctx, "otp:"+mobileNumber, code, otpTTL).Err(); err != nil {
		return err
	}

	return s.Sender.Send(ctx, mobileNumber, code)
}

// VerifyOTP 校验并消费验证码，成功后同一验证码不能再次使用
func (s *OTPService) VerifyOTP(ctx context.Context, mobileNumber, code string) error {
	key := "otp:" + mobileNumber
	stored, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return util.ErrOTPNotFound
	}
	if err != nil {
		return err
	}
	if stored != code {
		return util.ErrOTPMismatch
	}

	s.Redis.Del(ctx, key)
	return nil
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GatewaySender 通过 HTTP 网关下发短信；未配置网关地址时只打日志（开发环境）
type GatewaySender struct {
	Cfg    config.OTPConfig
	Client *http.Client
}

func NewGatewaySender(cfg config.OTPConfig) *GatewaySender {
	return &GatewaySender{
		Cfg:    cfg,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GatewaySender) Send(ctx context.Context, mobileNumber, code string) error {
	if g.Cfg.GatewayURL == "" {
		logger.Log.Info("otp gateway not configured, skipping dispatch",
			zap.String("mobileNumber", mobileNumber))
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":        mobileNumber,
		"sender_id": g.Cfg.SenderID,
		"message":   fmt.Sprintf("Your Global Maths Challenge verification code is %s. Valid for 5 minutes.", code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.Cfg.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("otp gateway returned status %d", resp.StatusCode)
	}
	return nil
}
