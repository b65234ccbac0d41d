package rolegraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtrOf(s string) *string    { return &s }
func floatPtrOf(f float64) *float64 { return &f }

func TestMemoryRepository_UpsertRoleCoalesce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{
		ID:          "R1",
		Name:        strPtrOf("Data Engineer"),
		Description: strPtrOf("Builds pipelines"),
		Source:      strPtrOf("seed"),
	}))

	// Partial update: absent fields must not overwrite stored values.
	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{
		ID:   "R1",
		Name: strPtrOf("Senior Data Engineer"),
	}))

	role, err := repo.GetRoleByID(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "Senior Data Engineer", *role.Name)
	assert.Equal(t, "Builds pipelines", *role.Description)
	assert.Equal(t, "seed", *role.Source)
	assert.Nil(t, role.Version)
	assert.NotZero(t, role.UpdatedAt)
}

func TestMemoryRepository_UpsertRoleIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	upsert := RoleUpsert{
		ID:       "R1",
		Name:     strPtrOf("Analyst"),
		Metadata: map[string]any{"family": "data"},
	}
	require.NoError(t, repo.UpsertRole(ctx, upsert))
	require.NoError(t, repo.UpsertRole(ctx, upsert))

	role, err := repo.GetRoleByID(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "Analyst", *role.Name)
	assert.Equal(t, map[string]any{"family": "data"}, role.Metadata)

	roles, err := repo.ListRoles(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestMemoryRepository_UpsertCompetencyCoalesce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCompetency(ctx, CompetencyUpsert{
		ID:         "C1",
		Name:       strPtrOf("SQL"),
		Definition: strPtrOf("Structured query language"),
	}))
	require.NoError(t, repo.UpsertCompetency(ctx, CompetencyUpsert{
		ID:      "C1",
		Version: strPtrOf("v2"),
	}))

	competency, err := repo.GetCompetencyByID(ctx, "C1")
	require.NoError(t, err)
	require.NotNil(t, competency)
	assert.Equal(t, "SQL", *competency.Name)
	assert.Equal(t, "Structured query language", *competency.Definition)
	assert.Equal(t, "v2", *competency.Version)
}

func TestMemoryRepository_GetMisses(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	role, err := repo.GetRoleByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, role)

	competency, err := repo.GetCompetencyByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, competency)
}

func TestMemoryRepository_RequiresCreatesBareEndpoints(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertRequires(ctx, RequiresUpsert{
		RoleID:        "R9",
		CompetencyID:  "C9",
		RequiredLevel: strPtrOf("advanced"),
	}))

	role, err := repo.GetRoleByID(ctx, "R9")
	require.NoError(t, err)
	require.NotNil(t, role)
	assert.Equal(t, "R9", role.ID)
	assert.Nil(t, role.Name)

	competency, err := repo.GetCompetencyByID(ctx, "C9")
	require.NoError(t, err)
	require.NotNil(t, competency)
	assert.Equal(t, "C9", competency.ID)
	assert.Nil(t, competency.Name)
}

func TestMemoryRepository_AdjacencyBidirectionalThenDirected(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA:         "A",
		RoleB:         "B",
		Score:         floatPtrOf(5),
		Bidirectional: true,
	}))
	// Single-direction update must leave the reverse direction untouched.
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA: "A",
		RoleB: "B",
		Score: floatPtrOf(7),
	}))

	forward, err := repo.GetRoleAdjacency(ctx, AdjacencyQuery{CurrentRoleID: "A", Limit: 10})
	require.NoError(t, err)
	require.Len(t, forward, 1)
	assert.Equal(t, "B", forward[0].ID)
	assert.Equal(t, 7.0, forward[0].Score)

	reverse, err := repo.GetRoleAdjacency(ctx, AdjacencyQuery{CurrentRoleID: "B", Limit: 10})
	require.NoError(t, err)
	require.Len(t, reverse, 1)
	assert.Equal(t, "A", reverse[0].ID)
	assert.Equal(t, 5.0, reverse[0].Score)
}

func TestMemoryRepository_OneHopRankingDeterministic(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: "R2", Name: strPtrOf("Two")}))
	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: "R3", Name: strPtrOf("Three")}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA: "R1", RoleB: "R2", Score: floatPtrOf(0.5), Rationale: strPtrOf("shared tooling"),
	}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA: "R1", RoleB: "R3", Score: floatPtrOf(0.5),
	}))

	suggestions, err := repo.GetRoleAdjacency(ctx, AdjacencyQuery{CurrentRoleID: "R1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	// Equal scores break ties by id ascending.
	assert.Equal(t, "R2", suggestions[0].ID)
	assert.Equal(t, "R3", suggestions[1].ID)
	assert.Equal(t, "shared tooling", suggestions[0].Rationale)
}

func TestMemoryRepository_TwoHopScoring(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: "M", Name: strPtrOf("Middle")}))
	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: "N", Name: strPtrOf("NoBridge")}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA: "start", RoleB: "M", Score: floatPtrOf(2), Rationale: strPtrOf("step one"),
	}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA: "M", RoleB: "goal", Score: floatPtrOf(4), Rationale: strPtrOf("step two"),
	}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
		RoleA: "start", RoleB: "N", Score: floatPtrOf(3),
	}))

	suggestions, err := repo.GetRoleAdjacency(ctx, AdjacencyQuery{
		CurrentRoleID: "start",
		TargetRoleID:  "goal",
		Limit:         10,
	})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	// M combines both hops; N has no second hop, so only the first counts.
	assert.Equal(t, "M", suggestions[0].ID)
	assert.Equal(t, 6.0, suggestions[0].Score)
	assert.Equal(t, "step one | step two", suggestions[0].Rationale)
	assert.Equal(t, "N", suggestions[1].ID)
	assert.Equal(t, 3.0, suggestions[1].Score)
}

func TestMemoryRepository_FallbackRanking(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: "hub", Name: strPtrOf("Hub")}))
	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: "leaf", Name: strPtrOf("Leaf")}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{RoleA: "a", RoleB: "hub", Score: floatPtrOf(2)}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{RoleA: "b", RoleB: "hub", Score: floatPtrOf(3)}))
	require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{RoleA: "a", RoleB: "leaf", Score: floatPtrOf(1)}))

	suggestions, err := repo.GetRoleAdjacency(ctx, AdjacencyQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "hub", suggestions[0].ID)
	assert.Equal(t, 5.0, suggestions[0].Score)
	assert.Equal(t, "leaf", suggestions[1].ID)
	assert.Equal(t, 1.0, suggestions[1].Score)
}

func TestMemoryRepository_AdjacencyLimit(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: id}))
		require.NoError(t, repo.UpsertAdjacency(ctx, AdjacencyUpsert{
			RoleA: "origin", RoleB: id, Score: floatPtrOf(1),
		}))
	}

	suggestions, err := repo.GetRoleAdjacency(ctx, AdjacencyQuery{CurrentRoleID: "origin", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, suggestions, 2)
}

func TestMemoryRepository_ListRolesOrderedAndLimited(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{ID: id}))
	}

	roles, err := repo.ListRoles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "a", roles[0].ID)
	assert.Equal(t, "b", roles[1].ID)
}

func TestMemoryRepository_ReadReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertRole(ctx, RoleUpsert{
		ID:       "R1",
		Metadata: map[string]any{"k": "v"},
	}))

	role, err := repo.GetRoleByID(ctx, "R1")
	require.NoError(t, err)
	role.Metadata["k"] = "mutated"

	fresh, err := repo.GetRoleByID(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "v", fresh.Metadata["k"])
}
