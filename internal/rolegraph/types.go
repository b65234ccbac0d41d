package rolegraph

// Role is the read model for a Role node. Optional fields are pointers so a
// value never written stays distinguishable from an empty string.
type Role struct {
	ID          string         `json:"id"`
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Source      *string        `json:"source"`
	Version     *string        `json:"version"`
	UpdatedAt   int64          `json:"updatedAt,omitempty"`
}

// Competency is the read model for a Competency node.
type Competency struct {
	ID         string         `json:"id"`
	Name       *string        `json:"name"`
	Definition *string        `json:"definition"`
	Metadata   map[string]any `json:"metadata"`
	Source     *string        `json:"source"`
	Version    *string        `json:"version"`
	UpdatedAt  int64          `json:"updatedAt,omitempty"`
}

// Suggestion is one ranked entry of a role-adjacency query.
type Suggestion struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Score       float64 `json:"score"`
	Rationale   string  `json:"rationale"`
}

// RoleUpsert is the payload for creating or updating a Role node. Nil
// pointer fields are absent and never overwrite a stored value; only
// explicitly provided fields replace prior ones (coalesce semantics). A nil
// Metadata map likewise leaves the stored metadata untouched.
type RoleUpsert struct {
	ID          string
	Name        *string
	Description *string
	Metadata    map[string]any
	Source      *string
	Version     *string
}

// CompetencyUpsert is the payload for creating or updating a Competency node.
type CompetencyUpsert struct {
	ID         string
	Name       *string
	Definition *string
	Metadata   map[string]any
	Source     *string
	Version    *string
}

// RequiresUpsert is the payload for the REQUIRES edge Role -> Competency.
// ValidFrom/ValidTo are ISO-8601 strings when provided. At most one edge
// exists per (role, competency) pair; missing endpoint nodes are created
// bare as part of the edge upsert.
type RequiresUpsert struct {
	RoleID        string
	CompetencyID  string
	RequiredLevel *string
	Version       *string
	Source        *string
	ValidFrom     *string
	ValidTo       *string
}

// AdjacencyUpsert is the payload for the ADJACENT_TO edge Role -> Role.
// When Bidirectional is set, two independent directed upserts are performed
// (A->B then B->A) with identical attribute values; each coalesces
// independently, so pre-existing asymmetric values on one direction are not
// forced to match the other.
type AdjacencyUpsert struct {
	RoleA         string
	RoleB         string
	Score         *float64
	Rationale     *string
	Version       *string
	Source        *string
	Bidirectional bool
}

// AdjacencyQuery selects the traversal mode for GetRoleAdjacency. UserID is
// accepted but not used to filter (reserved for future personalization).
type AdjacencyQuery struct {
	UserID        string
	CurrentRoleID string
	TargetRoleID  string
	Limit         int
}

// strOrNil converts a possibly-nil *string to a driver parameter.
func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// floatOrNil converts a possibly-nil *float64 to a driver parameter.
func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
