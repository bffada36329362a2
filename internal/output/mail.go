package output

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/iris/internal/models"
	gomail "github.com/wneessen/go-mail"
)

// MailConfig holds the SMTP settings of the MailSink.
type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	To        []string
}

// MailSink mails the merged list when the sweep terminates. Cycle batches are ignored.
type MailSink struct {
	cfg  MailConfig
	log  *slog.Logger
	send func(ctx context.Context, msg *gomail.Msg) error
}

// NewMailSink creates a MailSink delivering through the configured SMTP server.
func NewMailSink(cfg MailConfig, log *slog.Logger) *MailSink {
	ms := &MailSink{cfg: cfg, log: log}
	ms.send = ms.dialAndSend

	return ms
}

// Flush implements Sink.
func (ms *MailSink) Flush(ctx context.Context, batch Batch) error {
	if !batch.Final {
		return nil
	}

	msg, err := ms.message(batch)
	if err != nil {
		return err
	}

	if err = ms.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to mail addresses: %w", err)
	}

	ms.log.InfoContext(ctx, "Mailed submitted addresses",
		"phase", models.PhaseOutput, "recipients", len(ms.cfg.To), "addresses", len(batch.Addresses))

	return nil
}

func (ms *MailSink) message(batch Batch) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(ms.cfg.FromName, ms.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(ms.cfg.To...); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}

	msg.Subject(fmt.Sprintf("Sweep %s: %d submitted addresses", batch.RunID, len(batch.Addresses)))

	body := Render(batch.Addresses)
	if body == "" {
		body = "No addresses were submitted during this sweep.\n"
	}
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return msg, nil
}

func (ms *MailSink) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(ms.cfg.Host,
		gomail.WithPort(ms.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(ms.cfg.Username),
		gomail.WithPassword(ms.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err = client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
