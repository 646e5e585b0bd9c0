package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/orgconsole/internal/adapter/otel"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

// --- Mock gateway ---

type mockGateway struct {
	err error
}

func (m *mockGateway) CreateCompany(context.Context, domain.Identity, domain.CompanyIdentity) (string, error) {
	return "42", m.err
}

func (m *mockGateway) CreateRoles(context.Context, domain.Identity, string, []string) error {
	return m.err
}

func (m *mockGateway) CreateHierarchy(context.Context, domain.Identity, string, []domain.HierarchyLevel) error {
	return m.err
}

func (m *mockGateway) UserParameters(context.Context, domain.Identity, string) (domain.UserParameters, error) {
	return domain.UserParameters{}, m.err
}

func (m *mockGateway) UploadUsersCSV(context.Context, domain.Identity, string, []byte) error {
	return m.err
}

func (m *mockGateway) ReachableNodes(context.Context, domain.Identity, string) (domain.ReachableNodes, error) {
	return domain.ReachableNodes{}, m.err
}

func (m *mockGateway) CreateTask(context.Context, domain.Identity, domain.Task) (string, error) {
	return "t-1", m.err
}

func (m *mockGateway) AttachDocuments(context.Context, domain.Identity, string, []domain.Document) error {
	return m.err
}

func (m *mockGateway) QueryTasks(context.Context, domain.Identity, domain.TaskFilter) ([]domain.Task, error) {
	return nil, m.err
}

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

// callCount sums the remote.calls counter for the given outcome.
func callCount(t *testing.T, reader *sdkmetric.ManualReader, outcome string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "remote.calls" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("remote.calls has data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == outcome {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestTracingGateway_Success(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)

	gw, err := adapter.NewTracingGateway(&mockGateway{})
	if err != nil {
		t.Fatalf("NewTracingGateway failed: %v", err)
	}

	id, err := gw.CreateCompany(context.Background(), domain.Identity{}, domain.CompanyIdentity{Name: "Acme"})
	if err != nil || id != "42" {
		t.Fatalf("CreateCompany() = %q, %v", id, err)
	}
	if err := gw.CreateRoles(context.Background(), domain.Identity{}, "42", []string{"Admin"}); err != nil {
		t.Fatalf("CreateRoles failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name != "RemoteGateway.CreateCompany" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "company.name", "Acme")
	assertAttribute(t, spans[0], "remote.outcome", "ok")
	assertAttribute(t, spans[1], "roles.count", "1")

	if got := callCount(t, reader, "ok"); got != 2 {
		t.Errorf("ok calls = %d, want 2", got)
	}
}

func TestTracingGateway_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{"remote", &domain.RemoteError{Status: 409, Message: "exists"}, "remote_error"},
		{"transport", &domain.TransportError{Op: "POST /role", Err: errors.New("refused")}, "transport_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := setupTestTracer(t)
			reader := setupTestMeter(t)

			gw, err := adapter.NewTracingGateway(&mockGateway{err: tt.err})
			if err != nil {
				t.Fatalf("NewTracingGateway failed: %v", err)
			}

			if err := gw.CreateRoles(context.Background(), domain.Identity{}, "42", nil); !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("got %d spans, want 1", len(spans))
			}
			if spans[0].Status.Code != codes.Error {
				t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
			}
			assertAttribute(t, spans[0], "remote.outcome", tt.outcome)

			if got := callCount(t, reader, tt.outcome); got != 1 {
				t.Errorf("%s calls = %d, want 1", tt.outcome, got)
			}
		})
	}
}
