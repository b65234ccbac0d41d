// Package rolegraph holds the role/competency graph persistence and read
// model: upserts with coalesce semantics over Role and Competency nodes,
// REQUIRES and ADJACENT_TO edges, and the role-adjacency ranking queries.
package rolegraph

import "context"

// Repository is the persistence contract for the role/competency graph.
//
// All write operations are upserts with coalesce semantics: a nil field in
// the payload never overwrites an existing stored value, applying the same
// payload twice yields the same stored state, and each call is a single
// idempotent write safe for the caller to retry on transient failure.
// Implementations must be safe for concurrent use.
type Repository interface {
	// UpsertRole creates or updates a Role node keyed by id.
	UpsertRole(ctx context.Context, upsert RoleUpsert) error

	// UpsertCompetency creates or updates a Competency node keyed by id.
	UpsertCompetency(ctx context.Context, upsert CompetencyUpsert) error

	// UpsertRequires creates or updates the REQUIRES edge from a role to a
	// competency, creating missing endpoint nodes bare.
	UpsertRequires(ctx context.Context, upsert RequiresUpsert) error

	// UpsertAdjacency creates or updates the ADJACENT_TO edge between two
	// roles, in both directions when requested.
	UpsertAdjacency(ctx context.Context, upsert AdjacencyUpsert) error

	// GetRoleByID retrieves a single role. Returns (nil, nil) when the role
	// does not exist; a miss is a typed empty result, not an error.
	GetRoleByID(ctx context.Context, id string) (*Role, error)

	// GetCompetencyByID retrieves a single competency, (nil, nil) on a miss.
	GetCompetencyByID(ctx context.Context, id string) (*Competency, error)

	// ListRoles returns roles ordered by id ascending, truncated to limit.
	ListRoles(ctx context.Context, limit int) ([]Role, error)

	// GetRoleAdjacency returns ranked role suggestions. With both current
	// and target role ids it scores candidates over a two-hop path toward
	// the target (an absent hop contributes 0); with only a current role id
	// it ranks one-hop neighbors by edge score; with neither it ranks all
	// roles by the sum of incoming adjacency scores.
	GetRoleAdjacency(ctx context.Context, query AdjacencyQuery) ([]Suggestion, error)
}
