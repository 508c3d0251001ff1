package senders

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

type fakeSender struct {
	channel types.NotificationChannel
	accept  bool
}

func (f *fakeSender) CanSend(n *models.Notification) bool {
	return f.accept && n.Channel == f.channel
}

func (f *fakeSender) Send(n *models.Notification) bool { return true }

func TestRegistryDispatchesByChannel(t *testing.T) {
	registry := NewRegistry()

	email := &fakeSender{channel: types.ChannelEmail, accept: true}
	sms := &fakeSender{channel: types.ChannelSMS, accept: true}
	registry.Register(types.ChannelEmail, email)
	registry.Register(types.ChannelSMS, sms)

	notification := &models.Notification{Channel: types.ChannelSMS}
	assert.Same(t, Sender(sms), registry.For(notification))

	notification.Channel = types.ChannelEmail
	assert.Same(t, Sender(email), registry.For(notification))
}

func TestRegistryUnknownChannelReturnsNil(t *testing.T) {
	registry := NewRegistry()
	registry.Register(types.ChannelEmail, &fakeSender{channel: types.ChannelEmail, accept: true})

	notification := &models.Notification{Channel: types.ChannelWhatsApp}
	assert.Nil(t, registry.For(notification))
}

func TestRegistryRespectsCanSend(t *testing.T) {
	registry := NewRegistry()
	registry.Register(types.ChannelEmail, &fakeSender{channel: types.ChannelEmail, accept: false})

	notification := &models.Notification{Channel: types.ChannelEmail}
	assert.Nil(t, registry.For(notification))
}

func TestRegistryReplacesBinding(t *testing.T) {
	registry := NewRegistry()

	first := &fakeSender{channel: types.ChannelEmail, accept: true}
	second := &fakeSender{channel: types.ChannelEmail, accept: true}
	registry.Register(types.ChannelEmail, first)
	registry.Register(types.ChannelEmail, second)

	notification := &models.Notification{Channel: types.ChannelEmail}
	assert.Same(t, Sender(second), registry.For(notification))
}

func TestSMSSenderPostsToGateway(t *testing.T) {
	var received smsGatewayRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSMSSender()
	sender.GatewayURL = server.URL
	sender.Token = "secret-token"

	notification := &models.Notification{
		Recipient: "+573001112233",
		Content:   "Ticket TK-001 escalated",
		Channel:   types.ChannelSMS,
	}

	assert.True(t, sender.Send(notification))
	assert.Equal(t, "+573001112233", received.To)
	assert.Equal(t, "Ticket TK-001 escalated", received.Message)
	assert.Equal(t, "Bearer secret-token", authHeader)
}

func TestSMSSenderGatewayErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewSMSSender()
	sender.GatewayURL = server.URL

	notification := &models.Notification{Recipient: "+573001112233", Content: "x", Channel: types.ChannelSMS}
	assert.False(t, sender.Send(notification))
}

func TestSMSSenderRefusesOtherChannels(t *testing.T) {
	sender := NewSMSSender()

	notification := &models.Notification{Channel: types.ChannelEmail}
	assert.False(t, sender.Send(notification))
}

func TestSMSSenderDryRunWithoutGateway(t *testing.T) {
	sender := NewSMSSender()
	sender.GatewayURL = ""

	notification := &models.Notification{Recipient: "+573001112233", Content: "x", Channel: types.ChannelSMS}
	assert.True(t, sender.Send(notification))
}

func TestEmailSenderDryRunWithoutHost(t *testing.T) {
	sender := NewEmailSender()
	sender.Host = ""

	notification := &models.Notification{Recipient: "ops@example.com", Content: "hello", Channel: types.ChannelEmail}
	assert.True(t, sender.Send(notification))
}

func TestEmailSenderRefusesOtherChannels(t *testing.T) {
	sender := NewEmailSender()

	notification := &models.Notification{Channel: types.ChannelSMS}
	assert.False(t, sender.Send(notification))
}

func TestEmailBuildMessageDetectsHTML(t *testing.T) {
	sender := &EmailSender{Host: "smtp.example.com", Port: "587", From: "noreply@example.com"}

	plain := sender.buildMessage(&models.Notification{
		Recipient: "ops@example.com",
		Subject:   "Plain",
		Content:   "just text",
	})
	assert.Contains(t, string(plain), "Content-Type: text/plain; charset=UTF-8")

	html := sender.buildMessage(&models.Notification{
		Recipient: "ops@example.com",
		Subject:   "Rich",
		Content:   "<p>formatted</p>",
	})
	assert.Contains(t, string(html), "Content-Type: text/html; charset=UTF-8")
	assert.Contains(t, string(html), "Subject: Rich")
}
