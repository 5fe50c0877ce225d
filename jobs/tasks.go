package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeSummaryRefresh rebuilds the profit and loss summary view.
	TaskTypeSummaryRefresh = "retail:summary_refresh"
	// TaskTypeLowStockDigest emails owners their replenishment list.
	TaskTypeLowStockDigest = "retail:low_stock_digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewSummaryRefreshTask constructs the scheduled summary refresh task.
func NewSummaryRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSummaryRefresh, nil)
}

// NewLowStockDigestTask constructs the scheduled low stock digest task.
func NewLowStockDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLowStockDigest, nil)
}

// Mailer delivers digest emails over SMTP.
type Mailer struct {
	Host   string
	Port   int
	From   string
	Logger *slog.Logger
}

// HandleSendEmail processes TaskTypeSendEmail tasks. Without an SMTP host
// configured the payload is logged and dropped, which keeps local
// development free of a mail dependency.
func (m *Mailer) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if m.Host == "" {
		if m.Logger != nil {
			m.Logger.Info("email skipped, no smtp host",
				slog.String("to", payload.To), slog.String("subject", payload.Subject))
		}
		return nil
	}
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + payload.To,
		"Subject: " + payload.Subject,
		"",
		payload.Body,
	}, "\r\n")
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	if err := smtp.SendMail(addr, nil, m.From, []string{payload.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", payload.To, err)
	}
	return nil
}
