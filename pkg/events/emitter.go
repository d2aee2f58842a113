// Package events emits contact lifecycle events for resolved batches
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// EventContactConsolidated is emitted once per consolidated contact
const EventContactConsolidated = "contact.consolidated"

// Publisher sends contact events to the message bus
type Publisher interface {
	PublishContactEvents(ctx context.Context, events []*kafka.ContactEvent) error
}

// Emitter handles event emission for Fern
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitResolution emits a contact.consolidated event for every entity of a resolution
func (e *Emitter) EmitResolution(ctx context.Context, resolution *models.Resolution) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitResolution")
	defer span.End()

	events := make([]*kafka.ContactEvent, 0, len(resolution.Entities))
	for _, entity := range resolution.Entities {
		events = append(events, &kafka.ContactEvent{
			EventType:    EventContactConsolidated,
			TenantID:     resolution.TenantID,
			ResolutionID: resolution.ID,
			EntityID:     entity.ID,
			Strategy:     string(resolution.Strategy),
			Entity:       entity,
			SourceCount:  entity.SourceCount(),
			Timestamp:    resolution.CreatedAt,
		})
	}

	if err := e.publisher.PublishContactEvents(ctx, events); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("resolution_id", resolution.ID).
			Errorf("Failed to emit %s events", EventContactConsolidated)
		return err
	}

	return nil
}
