package otel

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// RemoteGateway is the full remote contract, as implemented by the remote client.
type RemoteGateway interface {
	domain.OnboardingGateway
	domain.DirectoryGateway
	domain.TaskGateway
}

// TracingGateway wraps a RemoteGateway with a span per call, a call counter
// and a latency histogram, both labelled by operation and outcome.
type TracingGateway struct {
	next     RemoteGateway
	tracer   trace.Tracer
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// Compile-time check: TracingGateway implements RemoteGateway.
var _ RemoteGateway = (*TracingGateway)(nil)

// NewTracingGateway creates a tracing decorator around the given gateway.
func NewTracingGateway(next RemoteGateway) (*TracingGateway, error) {
	meter := otel.Meter(tracerName)

	calls, err := meter.Int64Counter("remote.calls",
		metric.WithDescription("Calls made to the remote organization API."),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("remote.call.duration",
		metric.WithDescription("Latency of calls to the remote organization API."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &TracingGateway{
		next:     next,
		tracer:   otel.Tracer(tracerName),
		calls:    calls,
		duration: duration,
	}, nil
}

// outcome classifies a remote call result for metrics.
func outcome(err error) string {
	var remoteErr *domain.RemoteError
	var transportErr *domain.TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &remoteErr):
		return "remote_error"
	case errors.As(err, &transportErr):
		return "transport_error"
	default:
		return "error"
	}
}

// observe starts a span for op and returns the function that ends it.
func (g *TracingGateway) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := g.tracer.Start(ctx, "RemoteGateway."+op, trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(err error) {
		result := outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var remoteErr *domain.RemoteError
			if errors.As(err, &remoteErr) {
				span.SetAttributes(attribute.Int("http.response.status_code", remoteErr.Status))
			}
		}
		span.SetAttributes(attribute.String("remote.outcome", result))
		span.End()

		labels := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", result),
		)
		g.calls.Add(ctx, 1, labels)
		g.duration.Record(ctx, time.Since(start).Seconds(), labels)
	}
}

func (g *TracingGateway) CreateCompany(ctx context.Context, actor domain.Identity, company domain.CompanyIdentity) (string, error) {
	ctx, done := g.observe(ctx, "CreateCompany",
		attribute.String("company.name", company.Name),
		attribute.Bool("company.has_logo", len(company.Logo) > 0),
	)
	id, err := g.next.CreateCompany(ctx, actor, company)
	done(err)
	return id, err
}

func (g *TracingGateway) CreateRoles(ctx context.Context, actor domain.Identity, companyID string, names []string) error {
	ctx, done := g.observe(ctx, "CreateRoles",
		attribute.String("company.id", companyID),
		attribute.Int("roles.count", len(names)),
	)
	err := g.next.CreateRoles(ctx, actor, companyID, names)
	done(err)
	return err
}

func (g *TracingGateway) CreateHierarchy(ctx context.Context, actor domain.Identity, companyID string, levels []domain.HierarchyLevel) error {
	ctx, done := g.observe(ctx, "CreateHierarchy",
		attribute.String("company.id", companyID),
		attribute.Int("hierarchy.levels", len(levels)),
	)
	err := g.next.CreateHierarchy(ctx, actor, companyID, levels)
	done(err)
	return err
}

func (g *TracingGateway) UserParameters(ctx context.Context, actor domain.Identity, companyID string) (domain.UserParameters, error) {
	ctx, done := g.observe(ctx, "UserParameters", attribute.String("company.id", companyID))
	params, err := g.next.UserParameters(ctx, actor, companyID)
	done(err)
	return params, err
}

func (g *TracingGateway) UploadUsersCSV(ctx context.Context, actor domain.Identity, filename string, content []byte) error {
	ctx, done := g.observe(ctx, "UploadUsersCSV",
		attribute.String("file.name", filename),
		attribute.Int("file.size", len(content)),
	)
	err := g.next.UploadUsersCSV(ctx, actor, filename, content)
	done(err)
	return err
}

func (g *TracingGateway) ReachableNodes(ctx context.Context, actor domain.Identity, userID string) (domain.ReachableNodes, error) {
	ctx, done := g.observe(ctx, "ReachableNodes", attribute.String("user.id", userID))
	nodes, err := g.next.ReachableNodes(ctx, actor, userID)
	done(err)
	return nodes, err
}

func (g *TracingGateway) CreateTask(ctx context.Context, actor domain.Identity, task domain.Task) (string, error) {
	ctx, done := g.observe(ctx, "CreateTask",
		attribute.String("task.priority", string(task.Priority)),
		attribute.Int("task.assignees", len(task.AssigneeIDs)),
	)
	id, err := g.next.CreateTask(ctx, actor, task)
	done(err)
	return id, err
}

func (g *TracingGateway) AttachDocuments(ctx context.Context, actor domain.Identity, taskID string, docs []domain.Document) error {
	ctx, done := g.observe(ctx, "AttachDocuments",
		attribute.String("task.id", taskID),
		attribute.Int("documents.count", len(docs)),
	)
	err := g.next.AttachDocuments(ctx, actor, taskID, docs)
	done(err)
	return err
}

func (g *TracingGateway) QueryTasks(ctx context.Context, actor domain.Identity, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, done := g.observe(ctx, "QueryTasks",
		attribute.String("filter.hierarchy_id", filter.HierarchyID),
		attribute.String("filter.status", string(filter.Status)),
	)
	tasks, err := g.next.QueryTasks(ctx, actor, filter)
	done(err)
	return tasks, err
}
