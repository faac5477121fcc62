package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseSyncMessage tells the worker that an expense needs mirroring to the
// reimbursement sheet. It carries only the ID and the version of the write
// that queued it; the worker always fetches the current row and upserts by
// ID, so re-delivered and out-of-date messages converge on the latest state
// without comparing versions. Version is carried for the worker's logs.
type ExpenseSyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(id string, version int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
