package accounts

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SMTPConfig holds SMTP delivery options
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPNotifier delivers messages over SMTP using STARTTLS.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger Logger
}

var _ Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPNotifier{
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (n *SMTPNotifier) WithLogger(l Logger) *SMTPNotifier {
	n.logger = l
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	from := n.cfg.From
	if n.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", n.cfg.FromName, n.cfg.From)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", recipient))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := n.send(ctx, recipient, msg.String()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver email").
			WithMetadata(map[string]any{"recipient": recipient})
	}

	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, recipient, message string) error {
	host := n.cfg.Host

	dialer := &net.Dialer{
		Timeout:   n.cfg.Timeout,
		KeepAlive: 30 * time.Second,
	}

	netConn, err := dialer.DialContext(ctx, "tcp", n.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server %s: %w", n.cfg.Addr(), err)
	}

	deadline := time.Now().Add(n.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	netConn.SetDeadline(deadline)

	conn, err := smtp.NewClient(netConn, host)
	if err != nil {
		netConn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer conn.Close()

	if err = conn.Hello("localhost"); err != nil {
		return fmt.Errorf("failed to send HELO: %w", err)
	}

	if ok, _ := conn.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{ServerName: host}
		if err = conn.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if n.cfg.Username != "" && n.cfg.Password != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, host)
		if err = conn.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = conn.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = conn.Rcpt(recipient); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return conn.Quit()
}
