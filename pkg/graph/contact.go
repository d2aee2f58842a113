package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Writer runs write transactions against the graph
type Writer interface {
	ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error)
}

type statement struct {
	cypher string
	params map[string]any
}

const mergeContactCypher = `
MERGE (c:Contact {id: $id, tenant_id: $tenant_id})
SET c += $props`

const mergeCompanyCypher = `
MERGE (co:Company {key: $company_key, tenant_id: $tenant_id})
ON CREATE SET co.name = $company_name
WITH co
MATCH (c:Contact {id: $id, tenant_id: $tenant_id})
MERGE (c)-[r:WORKS_AT]->(co)
SET r.job_title = $job_title, r.resolution_id = $resolution_id`

// ContactService projects resolved contacts and their companies into the graph
type ContactService struct {
	writer Writer
	logger ectologger.Logger
}

// NewContactService creates a new contact service
func NewContactService(writer Writer, logger ectologger.Logger) *ContactService {
	return &ContactService{
		writer: writer,
		logger: logger,
	}
}

// Project upserts a Contact node per entity and links it to its Company.
// Companies are keyed by their normalized name so spelling variants share a node.
func (s *ContactService) Project(ctx context.Context, resolution *models.Resolution) error {
	ctx, span := tracing.StartSpan(ctx, "graph.ContactService.Project")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":     resolution.TenantID,
		"resolution_id": resolution.ID,
		"entity_count":  len(resolution.Entities),
	})

	statements := contactStatements(resolution)
	if len(statements) == 0 {
		return nil
	}

	_, err := s.writer.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range statements {
			result, err := tx.Run(ctx, st.cypher, st.params)
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to project contacts into graph")
		return fmt.Errorf("failed to project contacts into graph: %w", err)
	}

	log.Debug("Projected contacts into graph")
	return nil
}

func contactStatements(resolution *models.Resolution) []statement {
	var statements []statement
	for _, entity := range resolution.Entities {
		statements = append(statements, statement{
			cypher: mergeContactCypher,
			params: map[string]any{
				"id":        entity.ID,
				"tenant_id": resolution.TenantID,
				"props": map[string]any{
					"full_name":     entity.FullName,
					"job_title":     entity.JobTitle,
					"company":       entity.Company,
					"emails":        entity.Emails,
					"phones":        entity.Phones,
					"websites":      entity.Websites,
					"address":       entity.Address,
					"source_count":  entity.SourceCount(),
					"resolution_id": resolution.ID,
				},
			},
		})

		companyKey := normalizers.NormalizeCompany(entity.Company)
		if companyKey == "" {
			continue
		}
		statements = append(statements, statement{
			cypher: mergeCompanyCypher,
			params: map[string]any{
				"id":            entity.ID,
				"tenant_id":     resolution.TenantID,
				"company_key":   companyKey,
				"company_name":  entity.Company,
				"job_title":     entity.JobTitle,
				"resolution_id": resolution.ID,
			},
		})
	}
	return statements
}
