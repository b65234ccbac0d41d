package rolegraph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is the in-memory fallback implementation of Repository.
// It keeps the API functional when the graph feature is disabled or the
// backend unavailable, and mirrors the Neo4j implementation's semantics:
// coalesce upserts, implicit bare endpoint creation on edge upserts, and
// the same adjacency ranking. Safe for concurrent use.
type MemoryRepository struct {
	mu           sync.RWMutex
	roles        map[string]*Role
	competencies map[string]*Competency
	requires     map[[2]string]*requiresEdge
	adjacency    map[[2]string]*adjacencyEdge
}

type requiresEdge struct {
	RequiredLevel *string
	Version       *string
	Source        *string
	ValidFrom     *string
	ValidTo       *string
	UpdatedAt     int64
}

type adjacencyEdge struct {
	Score     *float64
	Rationale *string
	Version   *string
	Source    *string
	UpdatedAt int64
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		roles:        make(map[string]*Role),
		competencies: make(map[string]*Competency),
		requires:     make(map[[2]string]*requiresEdge),
		adjacency:    make(map[[2]string]*adjacencyEdge),
	}
}

// UpsertRole creates or updates a Role with coalesce semantics.
func (m *MemoryRepository) UpsertRole(ctx context.Context, upsert RoleUpsert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	role := m.ensureRole(upsert.ID)
	coalesceStr(&role.Name, upsert.Name)
	coalesceStr(&role.Description, upsert.Description)
	if upsert.Metadata != nil {
		role.Metadata = cloneMetadata(upsert.Metadata)
	}
	coalesceStr(&role.Source, upsert.Source)
	coalesceStr(&role.Version, upsert.Version)
	role.UpdatedAt = nowMillis()
	return nil
}

// UpsertCompetency creates or updates a Competency with coalesce semantics.
func (m *MemoryRepository) UpsertCompetency(ctx context.Context, upsert CompetencyUpsert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	competency := m.ensureCompetency(upsert.ID)
	coalesceStr(&competency.Name, upsert.Name)
	coalesceStr(&competency.Definition, upsert.Definition)
	if upsert.Metadata != nil {
		competency.Metadata = cloneMetadata(upsert.Metadata)
	}
	coalesceStr(&competency.Source, upsert.Source)
	coalesceStr(&competency.Version, upsert.Version)
	competency.UpdatedAt = nowMillis()
	return nil
}

// UpsertRequires creates or updates the REQUIRES edge, creating missing
// endpoint nodes bare.
func (m *MemoryRepository) UpsertRequires(ctx context.Context, upsert RequiresUpsert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureRole(upsert.RoleID)
	m.ensureCompetency(upsert.CompetencyID)

	key := [2]string{upsert.RoleID, upsert.CompetencyID}
	edge, ok := m.requires[key]
	if !ok {
		edge = &requiresEdge{}
		m.requires[key] = edge
	}
	coalesceStr(&edge.RequiredLevel, upsert.RequiredLevel)
	coalesceStr(&edge.Version, upsert.Version)
	coalesceStr(&edge.Source, upsert.Source)
	coalesceStr(&edge.ValidFrom, upsert.ValidFrom)
	coalesceStr(&edge.ValidTo, upsert.ValidTo)
	edge.UpdatedAt = nowMillis()
	return nil
}

// UpsertAdjacency creates or updates the ADJACENT_TO edge, mirrored when
// Bidirectional is set; each direction coalesces independently.
func (m *MemoryRepository) UpsertAdjacency(ctx context.Context, upsert AdjacencyUpsert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ensureRole(upsert.RoleA)
	m.ensureRole(upsert.RoleB)

	m.applyAdjacency(upsert.RoleA, upsert.RoleB, upsert)
	if upsert.Bidirectional {
		m.applyAdjacency(upsert.RoleB, upsert.RoleA, upsert)
	}
	return nil
}

func (m *MemoryRepository) applyAdjacency(from, to string, upsert AdjacencyUpsert) {
	key := [2]string{from, to}
	edge, ok := m.adjacency[key]
	if !ok {
		edge = &adjacencyEdge{}
		m.adjacency[key] = edge
	}
	if upsert.Score != nil {
		score := *upsert.Score
		edge.Score = &score
	}
	coalesceStr(&edge.Rationale, upsert.Rationale)
	coalesceStr(&edge.Version, upsert.Version)
	coalesceStr(&edge.Source, upsert.Source)
	edge.UpdatedAt = nowMillis()
}

// GetRoleByID returns a copy of the stored role, (nil, nil) on a miss.
func (m *MemoryRepository) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	role, ok := m.roles[id]
	if !ok {
		return nil, nil
	}
	copied := cloneRole(role)
	return &copied, nil
}

// GetCompetencyByID returns a copy of the stored competency, (nil, nil) on a miss.
func (m *MemoryRepository) GetCompetencyByID(ctx context.Context, id string) (*Competency, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	competency, ok := m.competencies[id]
	if !ok {
		return nil, nil
	}
	copied := *competency
	copied.Metadata = cloneMetadata(competency.Metadata)
	return &copied, nil
}

// ListRoles returns roles ordered by id ascending, truncated to limit.
func (m *MemoryRepository) ListRoles(ctx context.Context, limit int) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.roles))
	for id := range m.roles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	roles := make([]Role, 0, len(ids))
	for _, id := range ids {
		roles = append(roles, cloneRole(m.roles[id]))
	}
	return roles, nil
}

// GetRoleAdjacency ranks suggestions per the query's traversal mode,
// matching the Cypher implementation. Score ties break by id ascending so
// results stay deterministic.
func (m *MemoryRepository) GetRoleAdjacency(ctx context.Context, query AdjacencyQuery) ([]Suggestion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var suggestions []Suggestion
	switch {
	case query.CurrentRoleID != "" && query.TargetRoleID != "":
		suggestions = m.twoHopSuggestions(query.CurrentRoleID, query.TargetRoleID)
	case query.CurrentRoleID != "":
		suggestions = m.oneHopSuggestions(query.CurrentRoleID)
	default:
		suggestions = m.fallbackSuggestions()
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].ID < suggestions[j].ID
	})

	if query.Limit >= 0 && len(suggestions) > query.Limit {
		suggestions = suggestions[:query.Limit]
	}
	return suggestions, nil
}

func (m *MemoryRepository) twoHopSuggestions(currentID, targetID string) []Suggestion {
	var suggestions []Suggestion
	for key, hop1 := range m.adjacency {
		if key[0] != currentID {
			continue
		}
		candidate := m.roles[key[1]]
		if candidate == nil {
			continue
		}

		score := scoreOf(hop1)
		parts := []string{}
		if hop1.Rationale != nil && *hop1.Rationale != "" {
			parts = append(parts, *hop1.Rationale)
		}
		if hop2, ok := m.adjacency[[2]string{key[1], targetID}]; ok {
			score += scoreOf(hop2)
			if hop2.Rationale != nil && *hop2.Rationale != "" {
				parts = append(parts, *hop2.Rationale)
			}
		}

		suggestions = append(suggestions, Suggestion{
			ID:          candidate.ID,
			Name:        candidate.Name,
			Description: candidate.Description,
			Score:       score,
			Rationale:   strings.Join(parts, " | "),
		})
	}
	return suggestions
}

func (m *MemoryRepository) oneHopSuggestions(currentID string) []Suggestion {
	var suggestions []Suggestion
	for key, edge := range m.adjacency {
		if key[0] != currentID {
			continue
		}
		candidate := m.roles[key[1]]
		if candidate == nil {
			continue
		}

		rationale := ""
		if edge.Rationale != nil {
			rationale = *edge.Rationale
		}
		suggestions = append(suggestions, Suggestion{
			ID:          candidate.ID,
			Name:        candidate.Name,
			Description: candidate.Description,
			Score:       scoreOf(edge),
			Rationale:   rationale,
		})
	}
	return suggestions
}

func (m *MemoryRepository) fallbackSuggestions() []Suggestion {
	incoming := make(map[string]float64)
	for key, edge := range m.adjacency {
		incoming[key[1]] += scoreOf(edge)
	}

	suggestions := make([]Suggestion, 0, len(incoming))
	for id, score := range incoming {
		role := m.roles[id]
		if role == nil {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Score:       score,
			Rationale:   "",
		})
	}
	return suggestions
}

// ensureRole returns the stored role, creating a bare node when absent.
// Caller must hold m.mu.
func (m *MemoryRepository) ensureRole(id string) *Role {
	role, ok := m.roles[id]
	if !ok {
		role = &Role{ID: id}
		m.roles[id] = role
	}
	return role
}

// ensureCompetency returns the stored competency, creating a bare node when
// absent. Caller must hold m.mu.
func (m *MemoryRepository) ensureCompetency(id string) *Competency {
	competency, ok := m.competencies[id]
	if !ok {
		competency = &Competency{ID: id}
		m.competencies[id] = competency
	}
	return competency
}

// coalesceStr overwrites dst only when src is provided.
func coalesceStr(dst **string, src *string) {
	if src != nil {
		value := *src
		*dst = &value
	}
}

func scoreOf(edge *adjacencyEdge) float64 {
	if edge.Score == nil {
		return 0
	}
	return *edge.Score
}

func cloneRole(role *Role) Role {
	copied := *role
	copied.Metadata = cloneMetadata(role.Metadata)
	return copied
}

func cloneMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	copied := make(map[string]any, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	return copied
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
