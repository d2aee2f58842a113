package resolver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// HandleMessage resolves an extraction batch consumed from Kafka. Malformed
// or rejected batches are marked permanent so the consumer skips them.
func (s *Service) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.HandleMessage")
	defer span.End()

	batch, err := msg.ParseBatch()
	if err != nil {
		return fmt.Errorf("%w: %v", kafka.ErrPermanent, err)
	}

	ctx = ctxmiddleware.SetTenantID(ctx, batch.TenantID)
	ctx = ctxmiddleware.SetBatchID(ctx, batch.BatchID)

	if _, err := s.Resolve(ctx, batch.TenantID, batch.Records); err != nil {
		if httperror.IsHTTPError(err) && httperror.GetStatusCode(err) < http.StatusInternalServerError {
			return fmt.Errorf("%w: %v", kafka.ErrPermanent, err)
		}
		return err
	}
	return nil
}
