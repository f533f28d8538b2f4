package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

// Message stores a committed ledger entry group for reliable archival.
// It is written in the same transaction as the entries; the poller mirrors
// the group into the history store and marks the message processed.
type Message struct {
	ID            int64               `json:"id"`
	GroupID       uuid.UUID           `json:"group_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(group *ledger.Group) (*Message, error) {
	payload, err := json.Marshal(group.Entries)
	if err != nil {
		return nil, err
	}

	return &Message{
		GroupID:   group.ID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetEntries extracts the ledger entry group from the payload
func (m *Message) GetEntries() ([]ledger.Entry, error) {
	var entries []ledger.Entry
	if err := json.Unmarshal(m.Payload, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
