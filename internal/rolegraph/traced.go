package rolegraph

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedRepository wraps a Repository with OpenTelemetry tracing. Every
// operation gets its own span carrying the identifying attributes of the
// request; failures are recorded on the span and passed through unchanged.
//
// Thread-safety: safe for concurrent use (delegates to inner repository).
type TracedRepository struct {
	inner  Repository
	tracer trace.Tracer
}

// NewTracedRepository wraps inner with tracing using the given tracer.
func NewTracedRepository(inner Repository, tracer trace.Tracer) *TracedRepository {
	return &TracedRepository{inner: inner, tracer: tracer}
}

func (t *TracedRepository) UpsertRole(ctx context.Context, upsert RoleUpsert) error {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.upsert_role")
	defer span.End()
	span.SetAttributes(attribute.String("rolegraph.role.id", upsert.ID))

	return t.finish(span, t.inner.UpsertRole(ctx, upsert))
}

func (t *TracedRepository) UpsertCompetency(ctx context.Context, upsert CompetencyUpsert) error {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.upsert_competency")
	defer span.End()
	span.SetAttributes(attribute.String("rolegraph.competency.id", upsert.ID))

	return t.finish(span, t.inner.UpsertCompetency(ctx, upsert))
}

func (t *TracedRepository) UpsertRequires(ctx context.Context, upsert RequiresUpsert) error {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.upsert_requires")
	defer span.End()
	span.SetAttributes(
		attribute.String("rolegraph.role.id", upsert.RoleID),
		attribute.String("rolegraph.competency.id", upsert.CompetencyID),
	)

	return t.finish(span, t.inner.UpsertRequires(ctx, upsert))
}

func (t *TracedRepository) UpsertAdjacency(ctx context.Context, upsert AdjacencyUpsert) error {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.upsert_adjacency")
	defer span.End()
	span.SetAttributes(
		attribute.String("rolegraph.role.a", upsert.RoleA),
		attribute.String("rolegraph.role.b", upsert.RoleB),
		attribute.Bool("rolegraph.adjacency.bidirectional", upsert.Bidirectional),
	)

	return t.finish(span, t.inner.UpsertAdjacency(ctx, upsert))
}

func (t *TracedRepository) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.get_role")
	defer span.End()
	span.SetAttributes(attribute.String("rolegraph.role.id", id))

	role, err := t.inner.GetRoleByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Bool("rolegraph.found", role != nil))
	}
	return role, t.finish(span, err)
}

func (t *TracedRepository) GetCompetencyByID(ctx context.Context, id string) (*Competency, error) {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.get_competency")
	defer span.End()
	span.SetAttributes(attribute.String("rolegraph.competency.id", id))

	competency, err := t.inner.GetCompetencyByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Bool("rolegraph.found", competency != nil))
	}
	return competency, t.finish(span, err)
}

func (t *TracedRepository) ListRoles(ctx context.Context, limit int) ([]Role, error) {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.list_roles")
	defer span.End()
	span.SetAttributes(attribute.Int("rolegraph.limit", limit))

	roles, err := t.inner.ListRoles(ctx, limit)
	if err == nil {
		span.SetAttributes(attribute.Int("rolegraph.result_count", len(roles)))
	}
	return roles, t.finish(span, err)
}

func (t *TracedRepository) GetRoleAdjacency(ctx context.Context, query AdjacencyQuery) ([]Suggestion, error) {
	ctx, span := t.tracer.Start(ctx, "rolegraph.repository.role_adjacency")
	defer span.End()
	span.SetAttributes(
		attribute.String("rolegraph.adjacency.current_role", query.CurrentRoleID),
		attribute.String("rolegraph.adjacency.target_role", query.TargetRoleID),
		attribute.Int("rolegraph.limit", query.Limit),
	)

	suggestions, err := t.inner.GetRoleAdjacency(ctx, query)
	if err == nil {
		span.SetAttributes(attribute.Int("rolegraph.result_count", len(suggestions)))
	}
	return suggestions, t.finish(span, err)
}

// finish records err on span and returns it unchanged.
func (t *TracedRepository) finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
