package resolution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const table = "resolutions"

var columns = []string{
	"id", "tenant_id", "strategy", "batch_key", "input_count", "entity_count",
	"entities", "decisions", "conflicts", "created_at",
}

// row is the stored shape of a resolution
type row struct {
	ID          string                                      `db:"id"`
	TenantID    string                                      `db:"tenant_id"`
	Strategy    string                                      `db:"strategy"`
	BatchKey    string                                      `db:"batch_key"`
	InputCount  int                                         `db:"input_count"`
	EntityCount int                                         `db:"entity_count"`
	Entities    database.JSONB[[]models.ConsolidatedEntity] `db:"entities"`
	Decisions   database.JSONB[[]models.MergeDecision]      `db:"decisions"`
	Conflicts   database.JSONB[[]models.MergeConflict]      `db:"conflicts"`
	CreatedAt   time.Time                                   `db:"created_at"`
}

func (r row) toModel() *models.Resolution {
	return &models.Resolution{
		ID:         r.ID,
		TenantID:   r.TenantID,
		Strategy:   models.ResolveStrategy(r.Strategy),
		BatchKey:   r.BatchKey,
		InputCount: r.InputCount,
		Entities:   r.Entities.Data,
		Decisions:  r.Decisions.Data,
		Conflicts:  r.Conflicts.Data,
		CreatedAt:  r.CreatedAt,
	}
}

// Repository handles resolution persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new resolution repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create stores a resolution. ID and CreatedAt must already be set.
func (r *Repository) Create(ctx context.Context, resolution *models.Resolution) error {
	ctx, span := tracing.StartSpan(ctx, "resolution.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": resolution.TenantID,
		"id":        resolution.ID,
	})

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(columns...)
	ib.Values(
		resolution.ID,
		resolution.TenantID,
		string(resolution.Strategy),
		resolution.BatchKey,
		resolution.InputCount,
		len(resolution.Entities),
		database.NewJSONB(nonNil(resolution.Entities)),
		database.NewJSONB(nonNil(resolution.Decisions)),
		database.NewJSONB(nonNil(resolution.Conflicts)),
		resolution.CreatedAt,
	)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create resolution")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store resolution")
	}

	log.Debug("Stored resolution")
	return nil
}

// Get retrieves a resolution by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var result row
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("resolution %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get resolution")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get resolution")
	}

	return result.toModel(), nil
}

// ListByTenant returns a page of a tenant's resolutions, newest first
func (r *Repository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]models.Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Repository.ListByTenant")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(table)
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("created_at").Desc()
	sb.Limit(limit)
	sb.Offset(offset)

	query, args := sb.Build()
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list resolutions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list resolutions")
	}

	resolutions := make([]models.Resolution, 0, len(rows))
	for _, row := range rows {
		resolutions = append(resolutions, *row.toModel())
	}
	return resolutions, nil
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
