package outbox

import (
	"time"

	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/google/uuid"
)

// Message is a pending integration event written in the same transaction as
// the business change that produced it. ID equals the event's messageId.
type Message struct {
	ID          uuid.UUID
	Type        events.Type
	Payload     []byte
	CreatedAt   time.Time
	LeaseExpiry *time.Time
	PublishedAt *time.Time
	Attempt     int
}

// NewMessage wraps an event for insertion into the outbox.
func NewMessage(e events.Event) (*Message, error) {
	payload, err := events.Encode(e)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        e.EventID(),
		Type:      e.EventType(),
		Payload:   payload,
		CreatedAt: e.OccurredAt(),
	}, nil
}

// IsPublished reports whether the broker has confirmed this message.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// Claimable reports whether a publisher may lease the message at now.
func (m *Message) Claimable(now time.Time) bool {
	if m.IsPublished() {
		return false
	}
	return m.LeaseExpiry == nil || m.LeaseExpiry.Before(now)
}

// Lease stamps the message as claimed until leaseUntil.
func (m *Message) Lease(leaseUntil time.Time) {
	m.LeaseExpiry = &leaseUntil
	m.Attempt++
}

// MarkPublished records the broker confirm and clears the lease.
func (m *Message) MarkPublished(at time.Time) {
	m.PublishedAt = &at
	m.LeaseExpiry = nil
}

// Stats is a point-in-time view of the outbox backlog.
type Stats struct {
	Pending int64
	Leased  int64
}
