package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"assettrack/internal/domain"
)

// SMTP delivers OTP codes over plain SMTP with AUTH PLAIN. Transport details
// stay behind the service.Sender interface; the auth core only sees an error.
type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (s *SMTP) SendOtp(ctx context.Context, to, code string, purpose domain.OtpPurpose) error {
	subject := "Your verification code"
	if purpose == domain.OtpPurposeLogin {
		subject = "Your login code"
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\nYour one-time code is %s. It expires in 10 minutes.\r\n",
		s.From, to, subject, code)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, []byte(msg))
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
