package senders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/telconova/notifier/internal/config"
	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

// SMSSender delivers SMS notifications through an HTTP gateway.
type SMSSender struct {
	GatewayURL string
	Token      string
	client     *http.Client
}

type smsGatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func NewSMSSender() *SMSSender {
	return &SMSSender{
		GatewayURL: config.SMSGatewayURL,
		Token:      config.SMSGatewayToken,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSSender) CanSend(notification *models.Notification) bool {
	return notification.Channel == types.ChannelSMS
}

func (s *SMSSender) Send(notification *models.Notification) bool {
	if !s.CanSend(notification) {
		log.Warn().Uint("notification_id", notification.ID).Msg("sms sender refused non-sms notification")
		return false
	}

	if s.GatewayURL == "" {
		// Dry-run mode for environments without an SMS gateway.
		log.Warn().Uint("notification_id", notification.ID).Str("recipient", notification.Recipient).
			Msg("SMS gateway not configured, treating message as delivered")
		return true
	}

	body, err := json.Marshal(smsGatewayRequest{
		To:      notification.Recipient,
		Message: notification.Content,
	})

	if err != nil {
		log.Error().Err(err).Uint("notification_id", notification.ID).Msg("failed to marshal SMS gateway payload")
		return false
	}

	req, err := http.NewRequest(http.MethodPost, s.GatewayURL, bytes.NewBuffer(body))
	if err != nil {
		log.Error().Err(err).Uint("notification_id", notification.ID).Msg("failed to build SMS gateway request")
		return false
	}

	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error().Err(err).Uint("notification_id", notification.ID).Msg("SMS gateway request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Error().Int("status", resp.StatusCode).Uint("notification_id", notification.ID).
			Msg("SMS gateway returned error status")
		return false
	}

	log.Info().Uint("notification_id", notification.ID).Str("recipient", notification.Recipient).
		Msg("sms delivered")

	return true
}
