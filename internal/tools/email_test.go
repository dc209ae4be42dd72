package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/addy-assistant/addy/internal/intent"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func TestSendEmail(t *testing.T) {
	sender := &fakeSender{}
	tool := NewEmailToolWithSender(sender, zap.NewNop().Sugar(), nil)

	res := tool.Execute(context.Background(), "send_email",
		intent.Entities{"to": "a@b.com", "subject": "hi", "body": "text"}, "")
	assert.Equal(t, "email_sent: a@b.com", res.String())
	require.Len(t, sender.sent, 1)
}

func TestSendEmailMissingFields(t *testing.T) {
	sender := &fakeSender{}
	sink := &recordingSink{}
	tool := NewEmailToolWithSender(sender, zap.NewNop().Sugar(), sink)

	res := tool.Execute(context.Background(), "send_email",
		intent.Entities{"to": "a@b.com"}, "")
	assert.Equal(t, intent.KindClarification, res.Kind)
	assert.Equal(t, "clarification_needed: email_fields_missing: subject,body", res.String())
	assert.Empty(t, sender.sent, "nothing is sent while fields are missing")
	assert.Len(t, sink.lines, 1)
}

func TestSendEmailDeliveryFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("sendgrid down")}
	tool := NewEmailToolWithSender(sender, zap.NewNop().Sugar(), nil)

	res := tool.Execute(context.Background(), "send_email",
		intent.Entities{"to": "a@b.com", "subject": "hi", "body": "x"}, "")
	assert.True(t, res.Failed())
}

func TestSendEmailUnconfigured(t *testing.T) {
	tool := NewEmailToolWithSender(nil, zap.NewNop().Sugar(), nil)
	res := tool.Execute(context.Background(), "send_email",
		intent.Entities{"to": "a@b.com", "subject": "hi", "body": "x"}, "")
	assert.True(t, res.Failed())
}

func TestMailboxReadingAnswersPolitely(t *testing.T) {
	sink := &recordingSink{}
	tool := NewEmailToolWithSender(&fakeSender{}, zap.NewNop().Sugar(), sink)

	res := tool.Execute(context.Background(), "read_emails", intent.Entities{}, "查看邮件")
	assert.Equal(t, intent.KindOK, res.Kind)
	assert.Len(t, sink.lines, 1)
}
