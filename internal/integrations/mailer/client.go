package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

const (
	subjectApproved = "Your booking was approved!"
	subjectDenied   = "Your booking was denied!"
)

// sender отправка готовых писем (реализуется *mail.Client)
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client SMTP-клиент уведомлений о бронированиях
type Client struct {
	sender sender
	from   string
	logger Logger
}

// NewClient создает SMTP-клиента с PLAIN-аутентификацией
func NewClient(cfg Config, logger Logger) (*Client, error) {
	c, err := mail.NewClient(
		cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}

	return &Client{sender: c, from: cfg.From, logger: logger}, nil
}

// NotifyApproved отправляет письмо о подтверждении бронирования
func (c *Client) NotifyApproved(ctx context.Context, n Notification) error {
	body := fmt.Sprintf("Hello %s,\n\nyour booking of %s from %s to %s was approved.\n",
		n.UserName, n.ServiceName, daterange.Format(n.DateFrom), daterange.Format(n.DateTo))
	return c.send(ctx, n.Email, subjectApproved, body)
}

// NotifyDenied отправляет письмо об отклонении бронирования
func (c *Client) NotifyDenied(ctx context.Context, n Notification) error {
	body := fmt.Sprintf("Hello %s,\n\nyour booking of %s from %s to %s was denied. The reserved credits were returned to your wallet.\n",
		n.UserName, n.ServiceName, daterange.Format(n.DateFrom), daterange.Format(n.DateTo))
	return c.send(ctx, n.Email, subjectDenied, body)
}

func (c *Client) send(ctx context.Context, to, subject, body string) error {
	msg, err := c.message(to, subject, body)
	if err != nil {
		return err
	}

	if err := c.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: to=%s: %v", ErrSend, to, err)
	}

	c.logger.Info("mailer: %q dispatched to %s", subject, to)
	return nil
}

func (c *Client) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return nil, fmt.Errorf("%w: from %q: %v", ErrMessage, c.from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%w: to %q: %v", ErrMessage, to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
