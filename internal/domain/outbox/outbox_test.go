package outbox

import (
	"testing"
	"time"

	"github.com/cassiomorais/gozon/internal/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	e := events.NewPaymentRequested(uuid.New(), "u1", 100)

	msg, err := NewMessage(e)
	require.NoError(t, err)
	assert.Equal(t, e.MessageID, msg.ID)
	assert.Equal(t, events.TypePaymentRequested, msg.Type)
	assert.Equal(t, e.CreatedAt, msg.CreatedAt)
	assert.Contains(t, string(msg.Payload), e.MessageID.String())
	assert.Nil(t, msg.LeaseExpiry)
	assert.Nil(t, msg.PublishedAt)
	assert.Zero(t, msg.Attempt)
}

func TestMessage_Claimable(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name        string
		leaseExpiry *time.Time
		publishedAt *time.Time
		want        bool
	}{
		{name: "fresh", want: true},
		{name: "lease expired", leaseExpiry: &past, want: true},
		{name: "leased", leaseExpiry: &future, want: false},
		{name: "lease expires now", leaseExpiry: &now, want: false},
		{name: "published", publishedAt: &past, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Message{LeaseExpiry: tt.leaseExpiry, PublishedAt: tt.publishedAt}
			assert.Equal(t, tt.want, m.Claimable(now))
		})
	}
}

func TestMessage_LeaseAndPublish(t *testing.T) {
	now := time.Now().UTC()
	m := &Message{ID: uuid.New()}

	m.Lease(now.Add(10 * time.Second))
	assert.Equal(t, 1, m.Attempt)
	assert.False(t, m.Claimable(now))

	m.Lease(now.Add(20 * time.Second))
	assert.Equal(t, 2, m.Attempt)

	m.MarkPublished(now)
	assert.True(t, m.IsPublished())
	assert.Nil(t, m.LeaseExpiry)
	assert.False(t, m.Claimable(now.Add(time.Hour)))
}
