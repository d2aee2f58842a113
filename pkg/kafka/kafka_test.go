package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

func nopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_PublishContactEvents(t *testing.T) {
	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "contact-events", nopLogger())

	err := producer.PublishContactEvents(context.Background(), []*ContactEvent{
		{EventType: "contact.consolidated", TenantID: "tenant-1", EntityID: "e1", Entity: models.ConsolidatedEntity{FullName: "Jane"}},
		{EventType: "contact.consolidated", TenantID: "tenant-1", EntityID: "e2"},
	})

	require.NoError(t, err)
	require.Len(t, writer.messages, 2)
	msg := writer.messages[0]
	assert.Equal(t, "contact-events", msg.Topic)
	assert.Equal(t, []byte("e1"), msg.Key)
	assert.Contains(t, msg.Headers, kafka.Header{Key: HeaderTenantID, Value: []byte("tenant-1")})
	assert.Contains(t, msg.Headers, kafka.Header{Key: HeaderSchemaVersion, Value: []byte(SchemaVersion)})

	var decoded ContactEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Jane", decoded.Entity.FullName)
	assert.False(t, decoded.Timestamp.IsZero())
}

func TestProducer_PropagatesTraceParent(t *testing.T) {
	shutdown, err := tracing.Init(context.Background(), tracing.Config{ServiceName: "fern-test"})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := tracing.StartSpan(context.Background(), "resolve")
	defer span.End()

	writer := &fakeWriter{}
	producer := NewProducerWithWriter(writer, "contact-events", nopLogger())
	require.NoError(t, producer.PublishContactEvents(ctx, []*ContactEvent{{EntityID: "e1"}}))

	require.Len(t, writer.messages, 1)
	var traceParent string
	for _, h := range writer.messages[0].Headers {
		if h.Key == HeaderTraceParent {
			traceParent = string(h.Value)
		}
	}
	assert.Contains(t, traceParent, tracing.GetTraceID(ctx))
}

func TestProducer_PublishErrors(t *testing.T) {
	producer := NewProducerWithWriter(&fakeWriter{err: errors.New("broker down")}, "t", nopLogger())

	assert.NoError(t, producer.PublishContactEvents(context.Background(), nil))
	assert.Error(t, producer.PublishContactEvents(context.Background(), []*ContactEvent{{EntityID: "e"}}))
}

func TestIncomingMessage_ParseBatch(t *testing.T) {
	tests := []struct {
		name     string
		msg      IncomingMessage
		tenantID string
		batchID  string
		wantErr  bool
	}{
		{
			name:     "tenant in body",
			msg:      IncomingMessage{Value: []byte(`{"tenant_id":"t1","batch_id":"b1","records":[{"full_name":"Jane"}]}`)},
			tenantID: "t1",
			batchID:  "b1",
		},
		{
			name:     "tenant from header and batch from key",
			msg:      IncomingMessage{Key: "k1", Headers: map[string]string{HeaderTenantID: "t2"}, Value: []byte(`{"records":[]}`)},
			tenantID: "t2",
			batchID:  "k1",
		},
		{
			name:    "missing tenant",
			msg:     IncomingMessage{Value: []byte(`{"records":[]}`)},
			wantErr: true,
		},
		{
			name:    "invalid json",
			msg:     IncomingMessage{Value: []byte(`nope`)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := tt.msg.ParseBatch()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tenantID, batch.TenantID)
			assert.Equal(t, tt.batchID, batch.BatchID)
		})
	}
}

func TestConsumer_ProcessMessageCommits(t *testing.T) {
	tests := []struct {
		name      string
		handleErr error
		committed bool
	}{
		{name: "success", committed: true},
		{name: "permanent failure", handleErr: fmt.Errorf("bad payload: %w", ErrPermanent), committed: true},
		{name: "transient failure", handleErr: errors.New("db down"), committed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{}
			var received *IncomingMessage
			consumer := NewConsumerWithReader(reader, "card-extractions", nopLogger(), func(_ context.Context, msg *IncomingMessage) error {
				received = msg
				return tt.handleErr
			})

			consumer.processMessage(context.Background(), kafka.Message{
				Topic:   "card-extractions",
				Key:     []byte("b1"),
				Value:   []byte(`{}`),
				Headers: []kafka.Header{{Key: HeaderTenantID, Value: []byte("t1")}},
			})

			require.NotNil(t, received)
			assert.Equal(t, "t1", received.Headers[HeaderTenantID])
			assert.Equal(t, tt.committed, len(reader.committed) == 1)
		})
	}
}

func TestConsumer_StartStop(t *testing.T) {
	consumer := NewConsumerWithReader(&fakeReader{}, "card-extractions", nopLogger(), func(context.Context, *IncomingMessage) error {
		return nil
	})

	require.NoError(t, consumer.Start(context.Background()))
	assert.NoError(t, consumer.Stop())
}
