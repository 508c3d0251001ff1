package senders

import (
	"sync"

	"github.com/telconova/notifier/internal/models"
	"github.com/telconova/notifier/internal/types"
)

// Sender delivers a notification over one channel. Send reports delivery as a
// boolean only: implementations must swallow transport errors and return false
// instead of propagating them.
type Sender interface {
	CanSend(notification *models.Notification) bool
	Send(notification *models.Notification) bool
}

// Registry maps each channel to exactly one sender, which makes dispatch
// deterministic when more than one sender could claim a channel.
type Registry struct {
	mu      sync.RWMutex
	senders map[types.NotificationChannel]Sender
}

func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[types.NotificationChannel]Sender),
	}
}

// Register binds a sender to a channel, replacing any previous binding.
func (r *Registry) Register(channel types.NotificationChannel, sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.senders[channel] = sender
}

// For returns the sender registered for the notification's channel, or nil if
// none is registered or the sender refuses the notification.
func (r *Registry) For(notification *models.Notification) Sender {
	r.mu.RLock()
	sender, exists := r.senders[notification.Channel]
	r.mu.RUnlock()

	if !exists || !sender.CanSend(notification) {
		return nil
	}

	return sender
}
