package card

import (
	"context"
	"io"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/extraction"
	"github.com/Ramsey-B/fern/pkg/models"
)

// FormField is the multipart field carrying the card images
const FormField = "images"

// BatchExtractor turns images into extraction records
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, images []extraction.Image) []models.RawExtraction
}

// Resolver consolidates extraction records
type Resolver interface {
	Resolve(ctx context.Context, tenantID string, records []models.RawExtraction) (*models.Resolution, error)
}

// Handler accepts card photo uploads. The BatchExtractor and Resolver come
// from the active dependency container.
type Handler struct {
	maxBatchSize int
}

// NewHandler creates a new card upload handler
func NewHandler(maxBatchSize int) *Handler {
	return &Handler{maxBatchSize: maxBatchSize}
}

// Register registers card routes on an /api/v1 group
func (h *Handler) Register(g *echo.Group) {
	g.POST("/cards", h.Upload)
}

// Upload extracts every uploaded image and resolves the batch
func (h *Handler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := ctxmiddleware.GetTenantID(ctx)

	form, err := c.MultipartForm()
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "expected a multipart form")
	}

	files := form.File[FormField]
	if len(files) == 0 {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "at least one file is required in %q", FormField)
	}
	if h.maxBatchSize > 0 && len(files) > h.maxBatchSize {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "batch of %d images exceeds the maximum of %d", len(files), h.maxBatchSize)
	}

	images := make([]extraction.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to open %s", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to read %s", fh.Filename)
		}
		images = append(images, extraction.Image{Filename: fh.Filename, Data: data})
	}

	ctx, extractor, err := ectoinject.GetContext[BatchExtractor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	ctx, resolver, err := ectoinject.GetContext[Resolver](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	records := extractor.ExtractBatch(ctx, images)

	resolution, err := resolver.Resolve(ctx, tenantID, records)
	if err != nil {
		return err
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{
			"resolution_id": resolution.ID,
			"images":        len(images),
			"entities":      len(resolution.Entities),
		}).Info("Resolved uploaded cards")
	}

	status := http.StatusCreated
	if resolution.Cached {
		status = http.StatusOK
	}
	return c.JSON(status, resolution)
}
