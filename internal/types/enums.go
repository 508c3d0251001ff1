package types

// NotificationChannel identifies the delivery transport for a notification.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "EMAIL"
	ChannelSMS      NotificationChannel = "SMS"
	ChannelWhatsApp NotificationChannel = "WHATSAPP"
	ChannelPush     NotificationChannel = "PUSH"
)

func (c NotificationChannel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelPush:
		return true
	}
	return false
}

// NotificationStatus is the delivery state machine:
// PENDING -> PROCESSING -> SENT | RETRYING | FAILED.
// RETRYING loops back to PROCESSING on the next retry pass.
// SENT and FAILED are terminal.
type NotificationStatus string

const (
	StatusPending    NotificationStatus = "PENDING"
	StatusProcessing NotificationStatus = "PROCESSING"
	StatusSent       NotificationStatus = "SENT"
	StatusRetrying   NotificationStatus = "RETRYING"
	StatusFailed     NotificationStatus = "FAILED"
)

// EventTrigger is a domain occurrence type that alert rules subscribe to.
type EventTrigger string

const (
	TicketCreated   EventTrigger = "TICKET_CREATED"
	TicketAssigned  EventTrigger = "TICKET_ASSIGNED"
	TicketUpdated   EventTrigger = "TICKET_UPDATED"
	TicketEscalated EventTrigger = "TICKET_ESCALATED"
	TicketResolved  EventTrigger = "TICKET_RESOLVED"
	TicketClosed    EventTrigger = "TICKET_CLOSED"
)

func (t EventTrigger) Valid() bool {
	switch t {
	case TicketCreated, TicketAssigned, TicketUpdated, TicketEscalated, TicketResolved, TicketClosed:
		return true
	}
	return false
}

// AuditAction is the kind of rule mutation recorded in the audit log.
type AuditAction string

const (
	AuditCreate     AuditAction = "CREATE"
	AuditUpdate     AuditAction = "UPDATE"
	AuditDelete     AuditAction = "DELETE"
	AuditActivate   AuditAction = "ACTIVATE"
	AuditDeactivate AuditAction = "DEACTIVATE"
)
