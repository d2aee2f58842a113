package resolution

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Resolver is the service behind the resolution routes
type Resolver interface {
	Resolve(ctx context.Context, tenantID string, records []models.RawExtraction) (*models.Resolution, error)
	Get(ctx context.Context, tenantID, id string) (*models.Resolution, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]models.Resolution, error)
}

// Handler serves the resolution API. The Resolver is looked up per request
// from the active dependency container.
type Handler struct {
	scorer       *matching.Scorer
	maxBatchSize int
}

// NewHandler creates a new resolution handler
func NewHandler(scorer *matching.Scorer, maxBatchSize int) *Handler {
	if scorer == nil {
		scorer = matching.NewScorer(matching.DefaultScoringConfig())
	}
	return &Handler{
		scorer:       scorer,
		maxBatchSize: maxBatchSize,
	}
}

// Register registers resolution routes on an /api/v1 group
func (h *Handler) Register(g *echo.Group) {
	g.POST("/resolutions", h.Create)
	g.GET("/resolutions", h.List)
	g.GET("/resolutions/:id", h.Get)
	g.POST("/fingerprints", h.Fingerprints)
}

// ResolveRequest is the request body for resolving a batch
type ResolveRequest struct {
	Records []models.RawExtraction `json:"records" validate:"required,min=1"`
}

func (h *Handler) bindRecords(c echo.Context) ([]models.RawExtraction, error) {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "records must contain at least one extraction")
	}
	if h.maxBatchSize > 0 && len(req.Records) > h.maxBatchSize {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "batch of %d records exceeds the maximum of %d", len(req.Records), h.maxBatchSize)
	}
	return req.Records, nil
}

// Create resolves a batch of extraction records
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := ctxmiddleware.GetTenantID(ctx)

	records, err := h.bindRecords(c)
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[Resolver](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resolution, err := service.Resolve(ctx, tenantID, records)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if resolution.Cached {
		status = http.StatusOK
	}
	return c.JSON(status, resolution)
}

// Get returns a stored resolution
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := ctxmiddleware.GetTenantID(ctx)

	ctx, service, err := ectoinject.GetContext[Resolver](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	resolution, err := service.Get(ctx, tenantID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resolution)
}

// ListResponse is a page of resolutions
type ListResponse struct {
	Resolutions []models.Resolution `json:"resolutions"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

// List returns a page of the tenant's resolutions
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := ctxmiddleware.GetTenantID(ctx)

	limit, err := intQueryParam(c, "limit")
	if err != nil {
		return err
	}
	offset, err := intQueryParam(c, "offset")
	if err != nil {
		return err
	}

	ctx, service, err := ectoinject.GetContext[Resolver](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	limit, offset = resolver.Page(limit, offset)
	resolutions, err := service.List(ctx, tenantID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ListResponse{
		Resolutions: resolutions,
		Limit:       limit,
		Offset:      offset,
	})
}

// PairExplanation describes how the two strategies judge one pair of records
type PairExplanation struct {
	A           int                `json:"a"`
	B           int                `json:"b"`
	Rule        string             `json:"rule,omitempty"`
	Score       float64            `json:"score"`
	Signals     map[string]float64 `json:"signals"`
	ScoredMerge bool               `json:"scored_merge"`
}

// FingerprintResponse is the debug view of a batch
type FingerprintResponse struct {
	Fingerprints []fingerprint.Fingerprint `json:"fingerprints"`
	Pairs        []PairExplanation         `json:"pairs"`
}

// Fingerprints returns the normalized fingerprints of the posted records and
// how every pair would be judged, without storing anything.
func (h *Handler) Fingerprints(c echo.Context) error {
	records, err := h.bindRecords(c)
	if err != nil {
		return err
	}

	fingerprints := fingerprint.NewAll(records)
	pairs := []PairExplanation{}
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			score := h.scorer.Score(records[i], records[j])
			pair := PairExplanation{
				A:           i,
				B:           j,
				Score:       score.Total,
				Signals:     score.Signals,
				ScoredMerge: h.scorer.ShouldMerge(score),
			}
			if rule, ok := matching.Match(fingerprints[i], fingerprints[j]); ok {
				pair.Rule = string(rule)
			}
			pairs = append(pairs, pair)
		}
	}

	return c.JSON(http.StatusOK, FingerprintResponse{
		Fingerprints: fingerprints,
		Pairs:        pairs,
	})
}

func intQueryParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be a non-negative integer", name))
	}
	return value, nil
}
