package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

const tracerName = "github.com/neomorfeo/orgconsole/internal/adapter/otel"

// TracingIdentityStore wraps a domain.IdentityStore with OpenTelemetry tracing.
// Tokens are never recorded.
type TracingIdentityStore struct {
	next   domain.IdentityStore
	tracer trace.Tracer
}

// Compile-time check: TracingIdentityStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*TracingIdentityStore)(nil)

// NewTracingIdentityStore creates a tracing decorator around the given store.
func NewTracingIdentityStore(next domain.IdentityStore) *TracingIdentityStore {
	return &TracingIdentityStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingIdentityStore) Save(ctx context.Context, identity domain.Identity) error {
	ctx, span := s.tracer.Start(ctx, "IdentityStore.Save",
		trace.WithAttributes(
			attribute.String("session.id", identity.SessionID),
			attribute.String("session.role", identity.Role),
			attribute.String("tenant.id", identity.TenantID),
		),
	)
	defer span.End()

	err := s.next.Save(ctx, identity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *TracingIdentityStore) Get(ctx context.Context, sessionID string) (domain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "IdentityStore.Get",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	identity, err := s.next.Get(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.String("session.role", identity.Role),
			attribute.String("tenant.id", identity.TenantID),
		)
	}
	return identity, err
}

func (s *TracingIdentityStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "IdentityStore.Delete",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	err := s.next.Delete(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
