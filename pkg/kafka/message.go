package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Header keys set on produced messages
const (
	HeaderEventType     = "event_type"
	HeaderTenantID      = "tenant_id"
	HeaderSchemaVersion = "schema_version"
	HeaderTraceParent   = "traceparent"
)

// IncomingMessage is a fetched Kafka message with its headers decoded
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

// ParseBatch decodes the message value as an extraction batch. The tenant
// header fills in a missing tenant_id.
func (m *IncomingMessage) ParseBatch() (*models.ExtractionBatch, error) {
	var batch models.ExtractionBatch
	if err := json.Unmarshal(m.Value, &batch); err != nil {
		return nil, fmt.Errorf("invalid extraction batch: %w", err)
	}
	if batch.TenantID == "" {
		batch.TenantID = m.Headers[HeaderTenantID]
	}
	if batch.TenantID == "" {
		return nil, fmt.Errorf("extraction batch has no tenant_id")
	}
	if batch.BatchID == "" {
		batch.BatchID = m.Key
	}
	return &batch, nil
}

// ContactEvent is published for every consolidated contact
type ContactEvent struct {
	EventType    string                    `json:"event_type"`
	TenantID     string                    `json:"tenant_id"`
	ResolutionID string                    `json:"resolution_id"`
	EntityID     string                    `json:"entity_id"`
	Strategy     string                    `json:"strategy"`
	Entity       models.ConsolidatedEntity `json:"entity"`
	SourceCount  int                       `json:"source_count"`
	Timestamp    time.Time                 `json:"timestamp"`
}
