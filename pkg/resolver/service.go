// Package resolver runs card identity resolution for a tenant's batch and
// fans the result out to storage, cache, graph and the event bus.
package resolver

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	ctxmiddleware "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/merging"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	DefaultMaxBatchSize = 100
	DefaultListLimit    = 20
	MaxListLimit        = 100
)

// Repository stores resolutions
type Repository interface {
	Create(ctx context.Context, resolution *models.Resolution) error
	Get(ctx context.Context, tenantID, id string) (*models.Resolution, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]models.Resolution, error)
}

// Cache memoizes resolutions by batch content
type Cache interface {
	Get(ctx context.Context, tenantID string, strategy models.ResolveStrategy, batchKey string) (*models.Resolution, error)
	Set(ctx context.Context, resolution *models.Resolution) error
}

// GraphProjector writes resolved contacts to the graph
type GraphProjector interface {
	Project(ctx context.Context, resolution *models.Resolution) error
}

// EventEmitter publishes resolved contacts
type EventEmitter interface {
	EmitResolution(ctx context.Context, resolution *models.Resolution) error
}

// Config controls how batches are resolved
type Config struct {
	Strategy     models.ResolveStrategy
	MaxBatchSize int
	Scoring      matching.ScoringConfig
}

// Dependencies are the service's collaborators. Only Repository is required.
type Dependencies struct {
	Repository Repository
	Cache      Cache
	Graph      GraphProjector
	Emitter    EventEmitter
}

// Service resolves extraction batches into consolidated contacts
type Service struct {
	strategy     models.ResolveStrategy
	maxBatchSize int
	engine       *merging.Engine
	pairer       *merging.Pairer
	deps         Dependencies
	logger       ectologger.Logger
	now          func() time.Time
}

// NewService creates a new resolver service
func NewService(cfg Config, deps Dependencies, logger ectologger.Logger) *Service {
	strategy := cfg.Strategy
	if !strategy.IsValid() {
		strategy = models.ResolveStrategyRules
	}
	maxBatchSize := cfg.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	scoring := cfg.Scoring
	if scoring == (matching.ScoringConfig{}) {
		scoring = matching.DefaultScoringConfig()
	}

	return &Service{
		strategy:     strategy,
		maxBatchSize: maxBatchSize,
		engine:       merging.NewEngine(),
		pairer:       merging.NewPairer(matching.NewScorer(scoring)),
		deps:         deps,
		logger:       logger,
		now:          time.Now,
	}
}

// Strategy returns the configured merge strategy
func (s *Service) Strategy() models.ResolveStrategy {
	return s.strategy
}

// Resolve consolidates a batch of extraction records for a tenant.
// An identical batch already in the cache is returned as-is with Cached set.
func (s *Service) Resolve(ctx context.Context, tenantID string, records []models.RawExtraction) (*models.Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.Resolve")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":   tenantID,
		"batch_id":    ctxmiddleware.GetBatchID(ctx),
		"strategy":    s.strategy,
		"input_count": len(records),
	})

	if tenantID == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "tenant id is required")
	}
	if len(records) > s.maxBatchSize {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "batch of %d records exceeds the maximum of %d", len(records), s.maxBatchSize)
	}

	batchKey, err := fingerprint.BatchKey(s.strategy, records)
	if err != nil {
		log.WithError(err).Error("Failed to compute batch key")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to compute batch key")
	}

	if cached := s.lookupCache(ctx, log, tenantID, batchKey); cached != nil {
		return cached, nil
	}

	start := s.now()
	outcome := s.run(records)

	resolution := &models.Resolution{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Strategy:   s.strategy,
		BatchKey:   batchKey,
		InputCount: len(records),
		Entities:   outcome.Entities,
		Decisions:  outcome.Decisions,
		Conflicts:  outcome.Conflicts,
		CreatedAt:  start.UTC(),
	}
	for i := range resolution.Entities {
		resolution.Entities[i].ID = uuid.NewString()
	}

	if err := s.deps.Repository.Create(ctx, resolution); err != nil {
		metrics.RecordResolution(string(s.strategy), "error", len(records), 0, s.now().Sub(start).Seconds())
		return nil, err
	}

	s.fanOut(ctx, log, resolution)

	for _, decision := range resolution.Decisions {
		rule := decision.Rule
		if rule == "" {
			rule = "score"
		}
		metrics.RecordMerge(string(s.strategy), rule)
	}
	metrics.RecordResolution(string(s.strategy), "success", len(records), len(resolution.Entities), s.now().Sub(start).Seconds())

	log.WithFields(map[string]any{
		"resolution_id": resolution.ID,
		"entity_count":  len(resolution.Entities),
		"merges":        len(resolution.Decisions),
		"conflicts":     len(resolution.Conflicts),
	}).Info("Resolved batch")

	return resolution, nil
}

// Get loads a stored resolution
func (s *Service) Get(ctx context.Context, tenantID, id string) (*models.Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.Get")
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid resolution id %q", id)
	}
	return s.deps.Repository.Get(ctx, tenantID, id)
}

// List returns a page of the tenant's resolutions, newest first
func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]models.Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.List")
	defer span.End()

	limit, offset = Page(limit, offset)
	return s.deps.Repository.ListByTenant(ctx, tenantID, limit, offset)
}

// Page clamps a requested page to the limits List applies
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Service) run(records []models.RawExtraction) models.MergeOutcome {
	if s.strategy == models.ResolveStrategyScored {
		return s.pairer.PairCards(records)
	}
	return s.engine.MergeAll(records)
}

func (s *Service) lookupCache(ctx context.Context, log ectologger.Logger, tenantID, batchKey string) *models.Resolution {
	if s.deps.Cache == nil {
		return nil
	}

	cached, err := s.deps.Cache.Get(ctx, tenantID, s.strategy, batchKey)
	if err != nil {
		log.WithError(err).Warn("Resolution cache lookup failed")
		return nil
	}
	metrics.RecordCacheLookup(cached != nil)
	if cached == nil {
		return nil
	}

	cached.Cached = true
	log.WithField("resolution_id", cached.ID).Debug("Resolution served from cache")
	return cached
}

// fanOut pushes a stored resolution to the optional collaborators. Their
// failures are logged; the stored resolution stays authoritative.
func (s *Service) fanOut(ctx context.Context, log ectologger.Logger, resolution *models.Resolution) {
	if s.deps.Graph != nil {
		if err := s.deps.Graph.Project(ctx, resolution); err != nil {
			log.WithError(err).Warn("Graph projection failed")
		}
	}
	if s.deps.Emitter != nil {
		if err := s.deps.Emitter.EmitResolution(ctx, resolution); err != nil {
			log.WithError(err).Warn("Event emission failed")
		}
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, resolution); err != nil {
			log.WithError(err).Warn("Failed to cache resolution")
		}
	}
}
