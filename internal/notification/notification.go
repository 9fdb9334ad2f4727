package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
)

// Notifier delivers one-time codes to an identity out of band.
type Notifier interface {
	Send(ctx context.Context, identityKey, code string) error
}

// LoggerNotifier writes codes to the structured logger. Development only.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the code to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, identityKey, code string) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("verification code issued", "identity", identityKey, "code", code)
	return nil
}

// SMTPNotifier delivers codes by email over authenticated SMTP.
type SMTPNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPNotifier constructs an email notifier.
func NewSMTPNotifier(host, port, username, password, from string) *SMTPNotifier {
	if from == "" {
		from = username
	}
	return &SMTPNotifier{host: host, port: port, username: username, password: password, from: from}
}

// Send emails the code to the identity's address.
func (n *SMTPNotifier) Send(_ context.Context, identityKey, code string) error {
	msg := strings.Join([]string{
		"From: " + n.from,
		"To: " + identityKey,
		"Subject: Your KeyHaven verification code",
		"",
		fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
		"If you did not request this code, you can ignore this message.",
	}, "\r\n")

	addr := net.JoinHostPort(n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)
	if err := smtp.SendMail(addr, auth, n.from, []string{identityKey}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
