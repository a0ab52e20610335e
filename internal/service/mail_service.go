package service

import (
	"gmc_backend/internal/config"
	"gmc_backend/internal/util"

	"gopkg.in/gomail.v2"
)

type MailService struct {
	Cfg config.MailConfig
}

func NewMailService(cfg config.MailConfig) *MailService {
	return &MailService{Cfg: cfg}
}

type SendEmailReq struct {
	Subject     string   `json:"subject" binding:"required"`
	Text        string   `json:"text" binding:"required"`
	HTML        string   `json:"html" binding:"required"`
	Recipients  []string `json:"recipients" binding:"required"`
	Attachments []string `json:"attachments"` // 本地存储中的文件路径，如成绩报告 PDF
}

// Send 给所有收件人发一封邮件，正文同时带纯文本和 HTML
func (s *MailService) Send(req SendEmailReq) error {
	if len(req.Recipients) == 0 {
		return util.NewValidationError("no valid recipients provided")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.Cfg.From)
	m.SetHeader("To", req.Recipients...)
	m.SetHeader("Subject", req.Subject)
	m.SetBody("text/plain", req.Text)
	m.AddAlternative("text/html", req.HTML)

	for _, path := range req.Attachments {
		m.Attach(path)
	}

	d := gomail.NewDialer(s.Cfg.Host, s.Cfg.Port, s.Cfg.Username, s.Cfg.Password)
	return d.DialAndSend(m)
}
