package extraction

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/sourcegraph/conc/pool"

	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Pipeline extracts a batch of images in parallel
type Pipeline struct {
	extractor   Extractor
	concurrency int
	logger      ectologger.Logger
}

// NewPipeline creates a new pipeline running at most concurrency extractions at once
func NewPipeline(extractor Extractor, concurrency int, logger ectologger.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExtractBatch returns one record per image in input order. An image that
// fails to extract becomes an empty record carrying its filename.
func (p *Pipeline) ExtractBatch(ctx context.Context, images []Image) []models.RawExtraction {
	ctx, span := tracing.StartSpan(ctx, "extraction.Pipeline.ExtractBatch")
	defer span.End()

	results := make([]models.RawExtraction, len(images))
	workers := pool.New().WithMaxGoroutines(p.concurrency)

	for idx, image := range images {
		workers.Go(func() {
			record, err := p.extractor.Extract(ctx, image)
			if err != nil {
				p.logger.WithContext(ctx).WithError(err).WithField("filename", image.Filename).Warn("Extraction failed, using empty record")
				metrics.RecordExtraction("failed")
				results[idx] = models.RawExtraction{Filename: image.Filename}
				return
			}
			record.Filename = image.Filename
			metrics.RecordExtraction("success")
			results[idx] = record
		})
	}

	workers.Wait()
	return results
}
