package senders

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/telconova/notifier/internal/config"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

// EmailSender delivers EMAIL notifications over SMTP.
type EmailSender struct {
	Host     string
	Port     string
	From     string
	Password string
}

func NewEmailSender() *EmailSender {
	return &EmailSender{
		Host:     config.SMTPHost,
		Port:     config.SMTPPort,
		From:     config.SMTPFrom,
		Password: config.SMTPPassword,
	}
}

func (s *EmailSender) CanSend(notification *models.Notification) bool {
	return notification.Channel == types.ChannelEmail
}

func (s *EmailSender) Send(notification *models.Notification) bool {
	if !s.CanSend(notification) {
		log.Warn().Uint("notification_id", notification.ID).Msg("email sender refused non-email notification")
		return false
	}

	if s.Host == "" {
		// Dry-run mode for environments without an SMTP relay.
		log.Warn().Uint("notification_id", notification.ID).Str("recipient", notification.Recipient).
			Msg("SMTP not configured, treating email as delivered")
		return true
	}

	message := s.buildMessage(notification)
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)

	if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{notification.Recipient}, message); err != nil {
		log.Error().Err(err).Uint("notification_id", notification.ID).Str("recipient", notification.Recipient).
			Msg("email delivery failed")
		return false
	}

	log.Info().Uint("notification_id", notification.ID).Str("recipient", notification.Recipient).
		Msg("email delivered")

	return true
}

func (s *EmailSender) buildMessage(notification *models.Notification) []byte {
	isHTML := strings.Contains(notification.Content, "<") && strings.Contains(notification.Content, ">")

	contentType := "text/plain; charset=UTF-8"
	if isHTML {
		contentType = "text/html; charset=UTF-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", notification.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", notification.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.Host)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	b.WriteString(notification.Content)

	return []byte(b.String())
}
