// internal/workers/notification_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/ammerola/storefront-inventory/internal/pkg/config"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationProcessor handles email notifications
type NotificationProcessor struct {
	cfg         config.NotificationConfig
	environment string
	send        SendMailFunc
	logger      *slog.Logger
}

// NewNotificationProcessor creates a new notification processor. Outside
// production, or without an SMTP host, mail is logged instead of sent.
func NewNotificationProcessor(cfg config.NotificationConfig, environment string, send SendMailFunc, logger *slog.Logger) *NotificationProcessor {
	if send == nil {
		send = smtp.SendMail
	}
	return &NotificationProcessor{
		cfg:         cfg,
		environment: environment,
		send:        send,
		logger:      logger.With(slog.String("processor", "notification")),
	}
}

// SendLowStockAlert handles TypeLowStockAlert.
func (p *NotificationProcessor) SendLowStockAlert(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.Recipients) == 0 || len(payload.Lines) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Low stock: %d variant(s) at or below threshold", len(payload.Lines))
	body := renderLowStockBody(payload)

	if p.environment != "production" || p.cfg.SMTPHost == "" {
		p.logger.InfoContext(ctx, "email would be sent",
			slog.Any("to", payload.Recipients),
			slog.String("subject", subject),
			slog.String("body", body))
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		p.cfg.FromAddress, strings.Join(payload.Recipients, ", "), subject, body,
	))

	var auth smtp.Auth
	if p.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", p.cfg.SMTPUsername, p.cfg.SMTPPassword, p.cfg.SMTPHost)
	}

	addr := net.JoinHostPort(p.cfg.SMTPHost, p.cfg.SMTPPort)
	if err := p.send(addr, auth, p.cfg.FromAddress, payload.Recipients, msg); err != nil {
		return fmt.Errorf("failed to send low-stock alert: %w", err)
	}

	p.logger.InfoContext(ctx, "low-stock alert sent",
		slog.Int("recipients", len(payload.Recipients)),
		slog.Int("variants", len(payload.Lines)))
	return nil
}

func renderLowStockBody(p LowStockAlertPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Low-stock report generated %s\n\n", p.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "%-28s %8s %10s\n", "SKU", "ON HAND", "THRESHOLD")
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "%-28s %8d %10d\n", l.SKU, l.InventoryCount, l.Threshold)
	}
	return b.String()
}
