// Package extraction turns card images into raw extraction records
package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Image is a single uploaded card photo
type Image struct {
	Filename string
	Data     []byte
}

// Extractor produces the field set of one card image
type Extractor interface {
	Extract(ctx context.Context, image Image) (models.RawExtraction, error)
}

// TextRecognizer reads the plain text printed on an image
type TextRecognizer interface {
	Recognize(ctx context.Context, image Image) (string, error)
}

// FieldParser splits recognized card text into structured fields
type FieldParser interface {
	Parse(ctx context.Context, text string) (models.RawExtraction, error)
}

// CardExtractor runs OCR and then field parsing on an image
type CardExtractor struct {
	recognizer TextRecognizer
	parser     FieldParser
	logger     ectologger.Logger
}

// NewCardExtractor creates a new card extractor. A nil parser keeps only the OCR text.
func NewCardExtractor(recognizer TextRecognizer, parser FieldParser, logger ectologger.Logger) *CardExtractor {
	return &CardExtractor{
		recognizer: recognizer,
		parser:     parser,
		logger:     logger,
	}
}

// Extract recognizes the card text and parses it. A parse failure still
// returns the recognized text so the scorer has something to compare.
func (e *CardExtractor) Extract(ctx context.Context, image Image) (models.RawExtraction, error) {
	ctx, span := tracing.StartSpan(ctx, "extraction.CardExtractor.Extract")
	defer span.End()

	text, err := e.recognizer.Recognize(ctx, image)
	if err != nil {
		return models.RawExtraction{Filename: image.Filename}, fmt.Errorf("failed to recognize %s: %w", image.Filename, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.RawExtraction{Filename: image.Filename}, nil
	}

	var record models.RawExtraction
	if e.parser != nil {
		record, err = e.parser.Parse(ctx, text)
		if err != nil {
			e.logger.WithContext(ctx).WithError(err).WithField("filename", image.Filename).Warn("Failed to parse card fields, keeping OCR text only")
			record = models.RawExtraction{}
		}
	}

	if record.Text == "" {
		record.Text = text
	}
	record.Filename = image.Filename
	return record, nil
}
