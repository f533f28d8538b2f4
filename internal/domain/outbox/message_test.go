package outbox

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-lending-ledger/internal/domain/ledger"
	"github.com/p2p-lending-ledger/internal/domain/shared"
)

func newTestGroup(t *testing.T) *ledger.Group {
	t.Helper()
	group, err := ledger.NewGroup("corr-123",
		ledger.Entry{AccountID: uuid.New(), Amount: -5000, Kind: ledger.KindFundingCommitment},
		ledger.Entry{AccountID: uuid.New(), Amount: 5000, Kind: ledger.KindFundingCommitment},
	)
	require.NoError(t, err)
	return group
}

func TestNewMessage(t *testing.T) {
	group := newTestGroup(t)

	message, err := NewMessage(group)

	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, group.ID, message.GroupID)
	assert.Equal(t, shared.OutboxStatusPending, message.Status)
	assert.Equal(t, 0, message.Attempts)
	assert.Nil(t, message.LastAttemptAt)
	assert.NotEmpty(t, message.Payload)
}

func TestMessage_GetEntries(t *testing.T) {
	group := newTestGroup(t)
	message, err := NewMessage(group)
	require.NoError(t, err)

	entries, err := message.GetEntries()

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, group.Entries[0].ID, entries[0].ID)
	assert.Equal(t, group.Entries[0].Amount, entries[0].Amount)
	assert.Equal(t, group.ID, entries[0].GroupID)
	assert.Equal(t, "corr-123", entries[0].CorrelationID)
}

func TestMessage_GetEntries_InvalidPayload(t *testing.T) {
	message := &Message{Payload: []byte("not json")}

	entries, err := message.GetEntries()

	assert.Error(t, err)
	assert.Nil(t, entries)
}

func TestMessage_StatusTransitions(t *testing.T) {
	message, err := NewMessage(newTestGroup(t))
	require.NoError(t, err)

	message.IncrementAttempts()
	assert.Equal(t, 1, message.Attempts)
	require.NotNil(t, message.LastAttemptAt)

	message.MarkAsProcessed()
	assert.Equal(t, shared.OutboxStatusProcessed, message.Status)

	message.MarkAsFailed()
	assert.Equal(t, shared.OutboxStatusFailedToPublish, message.Status)
}
