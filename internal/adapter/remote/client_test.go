package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/neomorfeo/orgconsole/internal/adapter/remote"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

var actor = domain.Identity{SessionID: "s", Token: "jwt-token", Role: domain.RoleAdmin}

// newTestClient starts a server running handler and returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *remote.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := remote.New(srv.URL, time.Second, remote.WithKeyFunc(func() string { return "key-1" }))
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return client
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := remote.New("not a url", 0); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestCreateCompany_Multipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/company" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get(remote.IdempotencyHeader); got != "key-1" {
			t.Errorf("%s = %q", remote.IdempotencyHeader, got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
			return
		}
		if r.FormValue("name") != "Acme" || r.FormValue("color") != "#ff0000" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		if hdr.Filename != "logo.png" || string(content) != "PNGDATA" {
			t.Errorf("file = %q %q", hdr.Filename, content)
		}
		_, _ = io.WriteString(w, `{"id": 42, "name": "Acme"}`)
	})

	id, err := client.CreateCompany(context.Background(), actor, domain.CompanyIdentity{
		Name: "Acme", Color: "#ff0000", Logo: []byte("PNGDATA"), LogoFilename: "logo.png",
	})
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q, want %q", id, "42")
	}
}

func TestCreateCompany_NoLogo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		if _, _, err := r.FormFile("file"); err == nil {
			t.Error("file part should be omitted without a logo")
		}
		_, _ = io.WriteString(w, `{"id": "c-7"}`)
	})

	id, err := client.CreateCompany(context.Background(), actor, domain.CompanyIdentity{Name: "Acme", Color: "#fff"})
	if err != nil || id != "c-7" {
		t.Errorf("CreateCompany() = %q, %v", id, err)
	}
}

func TestCreateCompany_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"name": "Acme"}`)
	})

	_, err := client.CreateCompany(context.Background(), actor, domain.CompanyIdentity{Name: "Acme", Color: "#fff"})
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("expected TransportError, got %v", err)
	}
}

func TestCreateHierarchy_Payload(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hierarchy" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding body: %v", err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	dir := "Dirección"
	levels := []domain.HierarchyLevel{
		{Name: "Dirección", Quantity: 2},
		{Name: "Equipo", Parent: &dir, Quantity: 10},
	}
	if err := client.CreateHierarchy(context.Background(), actor, "42", levels); err != nil {
		t.Fatalf("CreateHierarchy failed: %v", err)
	}

	want := `{"company":"42","jerarquias":[{"name":"Dirección","parent":null,"quantity":2},{"name":"Equipo","parent":"Dirección","quantity":10}]}`
	wantMap := map[string]any{}
	_ = json.Unmarshal([]byte(want), &wantMap)
	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(wantMap)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("payload = %s\nwant %s", gotJSON, wantJSON)
	}
}

func TestCreateRoles_Payload(t *testing.T) {
	var body struct {
		Company string `json:"company"`
		Name    []struct {
			Name string `json:"name"`
		} `json:"name"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{}`)
	})

	if err := client.CreateRoles(context.Background(), actor, "42", []string{"Admin", "Worker"}); err != nil {
		t.Fatalf("CreateRoles failed: %v", err)
	}
	if body.Company != "42" || len(body.Name) != 2 || body.Name[1].Name != "Worker" {
		t.Errorf("body = %+v", body)
	}
}

func TestErrorDecoding(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail", 409, `{"errors":[{"detail":"EstA compañia ya existe","message":"conflict"}]}`, "EstA compañia ya existe"},
		{"error message", 400, `{"errors":[{"message":"bad color"}]}`, "bad color"},
		{"top-level message", 422, `{"message":"quantity too large"}`, "quantity too large"},
		{"empty body", 500, ``, "Error: 500"},
		{"html body", 502, `<html>bad gateway</html>`, "Error: 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := client.CreateRoles(context.Background(), actor, "42", []string{"Admin"})
			var remoteErr *domain.RemoteError
			if !errors.As(err, &remoteErr) {
				t.Fatalf("expected RemoteError, got %v", err)
			}
			if remoteErr.Status != tt.status || remoteErr.Message != tt.want {
				t.Errorf("RemoteError = %+v, want message %q", remoteErr, tt.want)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := remote.New(url, time.Second)
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	err = client.CreateRoles(context.Background(), actor, "42", []string{"Admin"})
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if domain.UserMessage(err) != domain.TransportErrorMessage {
		t.Errorf("UserMessage = %q", domain.UserMessage(err))
	}
}

func TestNoTokenOmitsHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header should be omitted")
		}
		if r.Header.Get(remote.IdempotencyHeader) != "" {
			t.Error("GET requests carry no idempotency key")
		}
		_, _ = io.WriteString(w, `{"supervisores":[],"subordinados":[]}`)
	})

	if _, err := client.ReachableNodes(context.Background(), domain.Identity{SessionID: "s"}, "2"); err != nil {
		t.Fatalf("ReachableNodes failed: %v", err)
	}
}

func TestUserParameters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/parameters/42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{
			"roles": [{"id": 1, "name": "Admin"}],
			"functionsAvailable": ["approve"],
			"hierarchies": [{"nombre": "Equipo", "plazas": 10, "ocupadas": 4, "disponibles": 6}],
			"users": [{
				"id": 5, "username": "jdoe", "nombreCompleto": "John Doe", "cedula": "1020",
				"active": true, "role": {"id": 1, "name": "Admin"},
				"hierarchyNode": {"nombre": "Equipo"}, "valorContratado": 1000, "pagado": 400, "saldo": 600
			}]
		}`)
	})

	params, err := client.UserParameters(context.Background(), actor, "42")
	if err != nil {
		t.Fatalf("UserParameters failed: %v", err)
	}
	if len(params.Roles) != 1 || params.Roles[0].Name != "Admin" {
		t.Errorf("Roles = %+v", params.Roles)
	}
	if params.Hierarchies[0] != (domain.Seats{Name: "Equipo", Total: 10, Occupied: 4, Available: 6}) {
		t.Errorf("Hierarchies = %+v", params.Hierarchies)
	}
	u := params.Users[0]
	if u.FullName != "John Doe" || u.HierarchyName != "Equipo" || u.Role == nil || u.Balance != 600 {
		t.Errorf("User = %+v", u)
	}
}

func TestUploadUsersCSV(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("fileContent")
		if err != nil {
			t.Errorf("missing fileContent: %v", err)
			return
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		if hdr.Filename != "users.csv" || !strings.HasPrefix(string(content), "username") {
			t.Errorf("upload = %q %q", hdr.Filename, content)
		}
		_, _ = io.WriteString(w, `{"created": 1}`)
	})

	if err := client.UploadUsersCSV(context.Background(), actor, "users.csv", []byte("username\njdoe\n")); err != nil {
		t.Fatalf("UploadUsersCSV failed: %v", err)
	}
}

func TestReachableNodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hierarchy/nodes/user/2" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{
			"supervisores": [{"id": 1, "name": "Dirección", "idUser": 9, "nombreCompleto": "Ana"}],
			"subordinados": [{"id": "3", "name": "Equipo", "idUser": "4", "nombreCompleto": "Luis"}]
		}`)
	})

	nodes, err := client.ReachableNodes(context.Background(), actor, "2")
	if err != nil {
		t.Fatalf("ReachableNodes failed: %v", err)
	}
	if nodes.Supervisors[0] != (domain.NodeMember{NodeID: "1", NodeName: "Dirección", UserID: "9", FullName: "Ana"}) {
		t.Errorf("Supervisors = %+v", nodes.Supervisors)
	}
	if nodes.Subordinates[0].UserID != "4" {
		t.Errorf("Subordinates = %+v", nodes.Subordinates)
	}
}

func TestCreateTaskAndAttach(t *testing.T) {
	var record map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/task":
			_ = json.NewDecoder(r.Body).Decode(&record)
			_, _ = io.WriteString(w, `{"id": 77}`)
		case "/task/documents":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parsing form: %v", err)
				return
			}
			if r.FormValue("taskId") != "77" {
				t.Errorf("taskId = %q", r.FormValue("taskId"))
			}
			if files := r.MultipartForm.File["files"]; len(files) != 2 {
				t.Errorf("files = %d, want 2", len(files))
			}
			_, _ = io.WriteString(w, `{}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	})

	start := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	id, err := client.CreateTask(context.Background(), actor, domain.Task{
		Title: "Inventario", Status: domain.TaskPending, Priority: domain.PriorityHigh,
		StartDate: start, EndDate: start.AddDate(0, 0, 1), AssigneeIDs: []string{"12"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if id != "77" {
		t.Errorf("id = %q", id)
	}
	if record["startDate"] != "2024-05-02" || record["priority"] != "HIGH" {
		t.Errorf("record = %v", record)
	}
	if _, ok := record["id"]; ok {
		t.Error("id should not be sent on creation")
	}

	docs := []domain.Document{{Filename: "a.pdf", Content: []byte("a")}, {Filename: "b.pdf", Content: []byte("b")}}
	if err := client.AttachDocuments(context.Background(), actor, id, docs); err != nil {
		t.Fatalf("AttachDocuments failed: %v", err)
	}
}

func TestQueryTasks(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("startDate") != "2024-05-01" || q.Get("endDate") != "2024-05-15" || q.Get("hierarchyId") != "7" {
			t.Errorf("query = %v", q)
		}
		if q.Get("status") != "DONE" {
			t.Errorf("status = %q", q.Get("status"))
		}
		if q.Has("title") || q.Has("priority") || q.Has("recurrence") {
			t.Errorf("empty filters should be omitted: %v", q)
		}
		_, _ = io.WriteString(w, `[
			{"id": 1, "title": "A", "status": "DONE", "priority": "LOW", "startDate": "2024-05-02", "endDate": "2024-05-03"},
			{"id": 2, "title": "B", "status": "DONE", "priority": "HIGH", "startDate": "2024-05-04T09:30:00Z", "endDate": "2024-05-04T11:00:00Z"}
		]`)
	})

	tasks, err := client.QueryTasks(context.Background(), actor, domain.TaskFilter{
		Status:      domain.TaskDone,
		StartDate:   time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC),
		HierarchyID: "7",
	})
	if err != nil {
		t.Fatalf("QueryTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	if tasks[1].StartDate.Hour() != 9 || tasks[0].ID != "1" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestQueryTasks_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"not": "an array"}`)
	})

	_, err := client.QueryTasks(context.Background(), actor, domain.TaskFilter{})
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("expected TransportError, got %v", err)
	}
}
