package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
)

type fakePublisher struct {
	events []*kafka.ContactEvent
	err    error
}

func (f *fakePublisher) PublishContactEvents(_ context.Context, events []*kafka.ContactEvent) error {
	f.events = append(f.events, events...)
	return f.err
}

func TestEmitter_EmitResolution(t *testing.T) {
	publisher := &fakePublisher{}
	emitter := NewEmitter(publisher, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := emitter.EmitResolution(context.Background(), &models.Resolution{
		ID:        "r1",
		TenantID:  "tenant-1",
		Strategy:  models.ResolveStrategyScored,
		CreatedAt: created,
		Entities: []models.ConsolidatedEntity{
			{ID: "e1", FullName: "Jane", Filenames: []string{"a.jpg", "b.jpg"}},
			{ID: "e2", FullName: "John", Filenames: []string{"c.jpg"}},
		},
	})

	require.NoError(t, err)
	require.Len(t, publisher.events, 2)
	first := publisher.events[0]
	assert.Equal(t, EventContactConsolidated, first.EventType)
	assert.Equal(t, "e1", first.EntityID)
	assert.Equal(t, "r1", first.ResolutionID)
	assert.Equal(t, "scored", first.Strategy)
	assert.Equal(t, 2, first.SourceCount)
	assert.Equal(t, created, first.Timestamp)
}

func TestEmitter_PropagatesErrors(t *testing.T) {
	emitter := NewEmitter(&fakePublisher{err: errors.New("down")}, ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {}))

	err := emitter.EmitResolution(context.Background(), &models.Resolution{Entities: []models.ConsolidatedEntity{{ID: "e1"}}})

	assert.Error(t, err)
}
