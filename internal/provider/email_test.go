package provider

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mrz1836/postmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posbridge/notifier/config"
)

type mockPostmarkAPI struct {
	sendFunc func(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
	sent     []postmark.Email
}

func (m *mockPostmarkAPI) SendEmail(
	ctx context.Context,
	email postmark.Email,
) (postmark.EmailResponse, error) {
	m.sent = append(m.sent, email)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, email)
	}
	return postmark.EmailResponse{}, nil
}

func TestNewEmailProvider_Selection(t *testing.T) {
	logProvider, err := NewEmailProvider(config.EmailConfig{Provider: "log"}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &logEmailSender{}, logProvider)

	pm, err := NewEmailProvider(config.EmailConfig{
		Provider:            "postmark",
		From:                "notifier@example.com",
		PostmarkServerToken: "srv-token",
	}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &postmarkSender{}, pm)

	_, err = NewEmailProvider(config.EmailConfig{Provider: "postmark"}, slog.Default())
	require.Error(t, err)

	_, err = NewEmailProvider(config.EmailConfig{Provider: "sendgrid"}, slog.Default())
	require.Error(t, err)
}

func TestPostmarkSender_SendsOneEmailPerRecipient(t *testing.T) {
	api := &mockPostmarkAPI{}
	sender := &postmarkSender{client: api, from: "notifier@example.com", logger: slog.Default()}

	delivery, err := sender.SendEmail(
		context.Background(),
		[]string{"a@example.com", "b@example.com"},
		"Order ord-1",
		"<p>hi</p>",
		true,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, delivery.Accepted)
	assert.Empty(t, delivery.Rejected)

	require.Len(t, api.sent, 2)
	assert.Equal(t, "notifier@example.com", api.sent[0].From)
	assert.Equal(t, "a@example.com", api.sent[0].To)
	assert.Equal(t, "<p>hi</p>", api.sent[0].HTMLBody)
	assert.Empty(t, api.sent[0].TextBody)
}

func TestPostmarkSender_PlainTextBody(t *testing.T) {
	api := &mockPostmarkAPI{}
	sender := &postmarkSender{client: api, from: "notifier@example.com"}

	_, err := sender.SendEmail(context.Background(), []string{"a@example.com"}, "s", "plain", false)
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	assert.Equal(t, "plain", api.sent[0].TextBody)
	assert.Empty(t, api.sent[0].HTMLBody)
}

func TestPostmarkSender_PartialRejectionIsNotAnError(t *testing.T) {
	api := &mockPostmarkAPI{
		sendFunc: func(_ context.Context, email postmark.Email) (postmark.EmailResponse, error) {
			if email.To == "bad@example.com" {
				return postmark.EmailResponse{ErrorCode: 300, Message: "invalid address"}, nil
			}
			return postmark.EmailResponse{}, nil
		},
	}
	sender := &postmarkSender{client: api, from: "notifier@example.com"}

	delivery, err := sender.SendEmail(
		context.Background(),
		[]string{"good@example.com", "bad@example.com"},
		"s", "c", true,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"good@example.com"}, delivery.Accepted)
	assert.Equal(t, []string{"bad@example.com"}, delivery.Rejected)
}

func TestPostmarkSender_AllRejectedIsError(t *testing.T) {
	api := &mockPostmarkAPI{
		sendFunc: func(_ context.Context, _ postmark.Email) (postmark.EmailResponse, error) {
			return postmark.EmailResponse{}, errors.New("connection refused")
		},
	}
	sender := &postmarkSender{client: api, from: "notifier@example.com"}

	delivery, err := sender.SendEmail(context.Background(), []string{"a@example.com"}, "s", "c", true)
	require.ErrorIs(t, err, ErrAllRecipientsRejected)
	assert.Empty(t, delivery.Accepted)
	assert.Equal(t, []string{"a@example.com"}, delivery.Rejected)
}

func TestLogEmailSender_AcceptsAllRecipients(t *testing.T) {
	sender := &logEmailSender{logger: slog.Default()}

	delivery, err := sender.SendEmail(
		context.Background(),
		[]string{"a@example.com", "b@example.com"},
		"s", "c", true,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, delivery.Accepted)
}
