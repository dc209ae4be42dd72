package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/config"
	"github.com/addy-assistant/addy/internal/intent"
	"github.com/addy-assistant/addy/internal/llm"
	"github.com/addy-assistant/addy/internal/speech"
)

// mailSender is the delivery seam; production wires SendGrid, tests wire
// a fake.
type mailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type sendGridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func (s *sendGridSender) Send(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, body)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// EmailTool sends mail and answers mailbox queries. Sending goes through
// SendGrid; reading a mailbox needs an inbound provider this assistant does
// not carry, so those intents answer politely instead of failing.
type EmailTool struct {
	Base
	sender mailSender
}

func NewEmailTool(cfg config.EmailConfig, log *zap.SugaredLogger, speak speech.Sink) *EmailTool {
	t := &EmailTool{Base: NewBase(log, speak)}
	if cfg.SendGridAPIKey != "" && cfg.FromAddress != "" {
		t.sender = &sendGridSender{
			client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
			fromName: cfg.FromName,
			fromAddr: cfg.FromAddress,
		}
	}
	return t
}

// NewEmailToolWithSender wires an explicit sender, used by tests.
func NewEmailToolWithSender(sender mailSender, log *zap.SugaredLogger, speak speech.Sink) *EmailTool {
	return &EmailTool{Base: NewBase(log, speak), sender: sender}
}

func (t *EmailTool) Name() string { return "email" }

func (t *EmailTool) Description() string {
	return "Sends email and answers mailbox questions"
}

func (t *EmailTool) SupportedIntents() []string {
	return []string{"send_email", "read_emails", "search_emails"}
}

func (t *EmailTool) IntentSchemas() map[string]llm.Schema {
	return map[string]llm.Schema{
		"send_email": {
			Required: []string{"to", "subject", "body"},
			Properties: map[string]llm.Property{
				"to":      {Type: "string", Description: "Recipient address"},
				"subject": {Type: "string"},
				"body":    {Type: "string"},
			},
		},
	}
}

func (t *EmailTool) Execute(ctx context.Context, intentName string, entities intent.Entities, originalText string) intent.Result {
	switch intentName {
	case "send_email":
		return t.sendEmail(ctx, entities)
	case "read_emails", "search_emails":
		t.Say("阅读邮箱还没有配置，我目前只能发送邮件。")
		return intent.Ok("mailbox_reading_unconfigured")
	}
	return intent.UnsupportedIntent(intentName)
}

func (t *EmailTool) sendEmail(ctx context.Context, entities intent.Entities) intent.Result {
	msg, missing := intent.DecodeSendEmail(entities)
	if len(missing) > 0 {
		t.Say("发邮件还缺少一些信息。")
		return intent.Clarify("email_fields_missing: " + strings.Join(missing, ","))
	}
	if t.sender == nil {
		t.Say("邮件功能还没有配置。")
		return intent.Errorf("email_sender_unconfigured").Spoken()
	}
	if err := t.sender.Send(ctx, msg.To, msg.Subject, msg.Body); err != nil {
		t.Log().Warnw("send email failed", "to", msg.To, "error", err)
		t.Say("邮件发送失败。")
		return intent.Errorf("send_email_failed: %v", err).Spoken()
	}
	t.Say("邮件已发送。")
	return intent.Okf("email_sent: %s", msg.To)
}
