package amqp

import (
	"encoding/json"
	"time"

	"projecthub/internal/core"
)

// RecordCreatedMessage announces a journaled submission. The consumer loads
// the full entry from the journal by EventID.
type RecordCreatedMessage struct {
	EventID   string      `json:"event_id"`
	Action    core.Action `json:"action"`
	EntityID  int64       `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRecordCreatedMessage(eventID string, action core.Action, entityID int64) *RecordCreatedMessage {
	return &RecordCreatedMessage{
		EventID:   eventID,
		Action:    action,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (m *RecordCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordCreatedMessageFromJSON(data []byte) (*RecordCreatedMessage, error) {
	var msg RecordCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
