package worker

// email_worker.go
// Delivers OTP codes and receipt PDFs. Every send goes through the SMTP
// circuit breaker so a dead relay fails fast and jobs back off.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cafebook/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"` // file path
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(msg infra.Message) error
}

type EmailWorker struct {
	sender  MailSender
	breaker *infra.Breaker
}

func NewEmailWorker(sender MailSender, breaker *infra.Breaker) *EmailWorker {
	return &EmailWorker{sender: sender, breaker: breaker}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	if payload.ToEmail == "" {
		return Permanent(errors.New("email_worker: empty to_email"))
	}

	err := w.breaker.Execute(func() error {
		return w.sender.Send(infra.Message{
			To:         payload.ToEmail,
			Subject:    payload.Subject,
			Body:       payload.Body,
			Attachment: payload.Attachment,
		})
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
