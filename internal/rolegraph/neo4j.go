package rolegraph

import (
	"context"
	"encoding/json"

	"github.com/pathforge/rolegraph/internal/graph"
	"github.com/pathforge/rolegraph/internal/types"
)

// Neo4jRepository implements Repository against a graph.Client. Every write
// is a single MERGE with per-field coalesce, so the backing store's atomic
// merge primitive provides uniqueness and per-field last-write-wins without
// application-level locking. Metadata maps are stored as an opaque JSON
// string property (Neo4j properties cannot hold nested maps).
type Neo4jRepository struct {
	client graph.Client
}

// NewNeo4jRepository creates a repository over the given graph client.
// The client may be connected later; operations against an unconnected
// client fail fast with GRAPH_NOT_CONNECTED.
func NewNeo4jRepository(client graph.Client) *Neo4jRepository {
	return &Neo4jRepository{client: client}
}

const upsertRoleCypher = `
MERGE (r:Role {id: $id})
SET r.name        = coalesce($name, r.name),
    r.description = coalesce($description, r.description),
    r.metadata    = coalesce($metadata, r.metadata),
    r.source      = coalesce($source, r.source),
    r.version     = coalesce($version, r.version),
    r.updatedAt   = timestamp()
`

// UpsertRole creates or updates a Role node by id.
func (r *Neo4jRepository) UpsertRole(ctx context.Context, upsert RoleUpsert) error {
	metadata, err := metadataParam(upsert.Metadata)
	if err != nil {
		return err
	}

	_, err = r.client.ExecuteWrite(ctx, upsertRoleCypher, map[string]any{
		"id":          upsert.ID,
		"name":        strOrNil(upsert.Name),
		"description": strOrNil(upsert.Description),
		"metadata":    metadata,
		"source":      strOrNil(upsert.Source),
		"version":     strOrNil(upsert.Version),
	})
	return err
}

const upsertCompetencyCypher = `
MERGE (c:Competency {id: $id})
SET c.name       = coalesce($name, c.name),
    c.definition = coalesce($definition, c.definition),
    c.metadata   = coalesce($metadata, c.metadata),
    c.source     = coalesce($source, c.source),
    c.version    = coalesce($version, c.version),
    c.updatedAt  = timestamp()
`

// UpsertCompetency creates or updates a Competency node by id.
func (r *Neo4jRepository) UpsertCompetency(ctx context.Context, upsert CompetencyUpsert) error {
	metadata, err := metadataParam(upsert.Metadata)
	if err != nil {
		return err
	}

	_, err = r.client.ExecuteWrite(ctx, upsertCompetencyCypher, map[string]any{
		"id":         upsert.ID,
		"name":       strOrNil(upsert.Name),
		"definition": strOrNil(upsert.Definition),
		"metadata":   metadata,
		"source":     strOrNil(upsert.Source),
		"version":    strOrNil(upsert.Version),
	})
	return err
}

const upsertRequiresCypher = `
MERGE (r:Role {id: $role_id})
MERGE (c:Competency {id: $competency_id})
MERGE (r)-[rel:REQUIRES]->(c)
SET rel.requiredLevel = coalesce($required_level, rel.requiredLevel),
    rel.version       = coalesce($version, rel.version),
    rel.source        = coalesce($source, rel.source),
    rel.validFrom     = coalesce($valid_from, rel.validFrom),
    rel.validTo       = coalesce($valid_to, rel.validTo),
    rel.updatedAt     = timestamp()
`

// UpsertRequires creates or updates the REQUIRES edge Role -> Competency.
// Missing endpoint nodes are created with only their id populated.
func (r *Neo4jRepository) UpsertRequires(ctx context.Context, upsert RequiresUpsert) error {
	_, err := r.client.ExecuteWrite(ctx, upsertRequiresCypher, map[string]any{
		"role_id":        upsert.RoleID,
		"competency_id":  upsert.CompetencyID,
		"required_level": strOrNil(upsert.RequiredLevel),
		"version":        strOrNil(upsert.Version),
		"source":         strOrNil(upsert.Source),
		"valid_from":     strOrNil(upsert.ValidFrom),
		"valid_to":       strOrNil(upsert.ValidTo),
	})
	return err
}

const upsertAdjacencyCypher = `
MERGE (a:Role {id: $role_a})
MERGE (b:Role {id: $role_b})
MERGE (a)-[adj:ADJACENT_TO]->(b)
SET adj.score     = coalesce($score, adj.score),
    adj.rationale = coalesce($rationale, adj.rationale),
    adj.version   = coalesce($version, adj.version),
    adj.source    = coalesce($source, adj.source),
    adj.updatedAt = timestamp()
`

// UpsertAdjacency creates or updates the ADJACENT_TO edge between two roles.
// When Bidirectional is set it performs two independent directed upserts,
// A->B then B->A, with identical attribute values.
func (r *Neo4jRepository) UpsertAdjacency(ctx context.Context, upsert AdjacencyUpsert) error {
	params := map[string]any{
		"role_a":    upsert.RoleA,
		"role_b":    upsert.RoleB,
		"score":     floatOrNil(upsert.Score),
		"rationale": strOrNil(upsert.Rationale),
		"version":   strOrNil(upsert.Version),
		"source":    strOrNil(upsert.Source),
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertAdjacencyCypher, params); err != nil {
		return err
	}
	if !upsert.Bidirectional {
		return nil
	}

	reverse := map[string]any{
		"role_a":    upsert.RoleB,
		"role_b":    upsert.RoleA,
		"score":     params["score"],
		"rationale": params["rationale"],
		"version":   params["version"],
		"source":    params["source"],
	}
	_, err := r.client.ExecuteWrite(ctx, upsertAdjacencyCypher, reverse)
	return err
}

const getRoleCypher = `
MATCH (r:Role {id: $id})
RETURN r.id AS id,
       r.name AS name,
       r.description AS description,
       r.metadata AS metadata,
       r.source AS source,
       r.version AS version,
       r.updatedAt AS updatedAt
`

// GetRoleByID retrieves a single role by id, (nil, nil) when absent.
func (r *Neo4jRepository) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	result, err := r.client.ExecuteRead(ctx, getRoleCypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}
	return roleFromRecord(result.Records[0])
}

const getCompetencyCypher = `
MATCH (c:Competency {id: $id})
RETURN c.id AS id,
       c.name AS name,
       c.definition AS definition,
       c.metadata AS metadata,
       c.source AS source,
       c.version AS version,
       c.updatedAt AS updatedAt
`

// GetCompetencyByID retrieves a single competency by id, (nil, nil) when absent.
func (r *Neo4jRepository) GetCompetencyByID(ctx context.Context, id string) (*Competency, error) {
	result, err := r.client.ExecuteRead(ctx, getCompetencyCypher, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	record := result.Records[0]
	metadata, err := metadataFromRecord(record["metadata"])
	if err != nil {
		return nil, err
	}
	return &Competency{
		ID:         stringValue(record["id"]),
		Name:       strPtr(record["name"]),
		Definition: strPtr(record["definition"]),
		Metadata:   metadata,
		Source:     strPtr(record["source"]),
		Version:    strPtr(record["version"]),
		UpdatedAt:  intValue(record["updatedAt"]),
	}, nil
}

const listRolesCypher = `
MATCH (r:Role)
RETURN r.id AS id,
       r.name AS name,
       r.description AS description,
       r.metadata AS metadata,
       r.source AS source,
       r.version AS version,
       r.updatedAt AS updatedAt
ORDER BY r.id
LIMIT $limit
`

// ListRoles returns roles ordered by id ascending, truncated to limit.
func (r *Neo4jRepository) ListRoles(ctx context.Context, limit int) ([]Role, error) {
	result, err := r.client.ExecuteRead(ctx, listRolesCypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	roles := make([]Role, 0, len(result.Records))
	for _, record := range result.Records {
		role, err := roleFromRecord(record)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

const adjacencyTwoHopCypher = `
MATCH (cur:Role {id: $current_role_id})-[adj1:ADJACENT_TO]->(sug:Role)
OPTIONAL MATCH (sug)-[adj2:ADJACENT_TO]->(tgt:Role {id: $target_role_id})
WITH sug, adj1, adj2
RETURN sug.id AS id,
       sug.name AS name,
       sug.description AS description,
       coalesce(adj1.score, 0) + coalesce(adj2.score, 0) AS score,
       CASE
         WHEN coalesce(adj1.rationale, '') = '' THEN coalesce(adj2.rationale, '')
         WHEN adj2 IS NULL OR coalesce(adj2.rationale, '') = '' THEN adj1.rationale
         ELSE adj1.rationale + ' | ' + adj2.rationale
       END AS rationale
ORDER BY score DESC
LIMIT $limit
`

const adjacencyOneHopCypher = `
MATCH (cur:Role {id: $current_role_id})-[adj:ADJACENT_TO]->(sug:Role)
RETURN sug.id AS id,
       sug.name AS name,
       sug.description AS description,
       adj.score AS score,
       adj.rationale AS rationale
ORDER BY adj.score DESC
LIMIT $limit
`

const adjacencyFallbackCypher = `
MATCH (a:Role)-[adj:ADJACENT_TO]->(b:Role)
WITH b, sum(coalesce(adj.score, 0)) AS s
RETURN b.id AS id, b.name AS name, b.description AS description, s AS score, '' AS rationale
ORDER BY s DESC
LIMIT $limit
`

// GetRoleAdjacency returns ranked role suggestions per the query's traversal
// mode. The two-hop mode sums both hop scores even when only one hop exists;
// an absent target-bound hop contributes 0.
func (r *Neo4jRepository) GetRoleAdjacency(ctx context.Context, query AdjacencyQuery) ([]Suggestion, error) {
	var cypher string
	params := map[string]any{"limit": query.Limit}

	switch {
	case query.CurrentRoleID != "" && query.TargetRoleID != "":
		cypher = adjacencyTwoHopCypher
		params["current_role_id"] = query.CurrentRoleID
		params["target_role_id"] = query.TargetRoleID
	case query.CurrentRoleID != "":
		cypher = adjacencyOneHopCypher
		params["current_role_id"] = query.CurrentRoleID
	default:
		cypher = adjacencyFallbackCypher
	}

	result, err := r.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(result.Records))
	for _, record := range result.Records {
		suggestions = append(suggestions, Suggestion{
			ID:          stringValue(record["id"]),
			Name:        strPtr(record["name"]),
			Description: strPtr(record["description"]),
			Score:       floatValue(record["score"]),
			Rationale:   stringValue(record["rationale"]),
		})
	}
	return suggestions, nil
}

// metadataParam serializes a metadata map to its stored JSON form.
// A nil map stays nil so the coalesce leaves stored metadata untouched.
func metadataParam(metadata map[string]any) (any, error) {
	if metadata == nil {
		return nil, nil
	}
	blob, err := json.Marshal(metadata)
	if err != nil {
		return nil, types.WrapError(graph.ErrCodeUnexpected, "failed to serialize metadata", err)
	}
	return string(blob), nil
}

// metadataFromRecord decodes the stored JSON metadata blob.
func metadataFromRecord(value any) (map[string]any, error) {
	blob, ok := value.(string)
	if !ok || blob == "" {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(blob), &metadata); err != nil {
		return nil, types.WrapError(graph.ErrCodeUnexpected, "failed to decode stored metadata", err)
	}
	return metadata, nil
}

func roleFromRecord(record map[string]any) (*Role, error) {
	metadata, err := metadataFromRecord(record["metadata"])
	if err != nil {
		return nil, err
	}
	return &Role{
		ID:          stringValue(record["id"]),
		Name:        strPtr(record["name"]),
		Description: strPtr(record["description"]),
		Metadata:    metadata,
		Source:      strPtr(record["source"]),
		Version:     strPtr(record["version"]),
		UpdatedAt:   intValue(record["updatedAt"]),
	}, nil
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func strPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func intValue(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
