package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// DateLayout is the date format used in task payloads and query strings.
const DateLayout = time.DateOnly

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

type taskRecord struct {
	ID               flexID   `json:"id,omitempty"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Status           string   `json:"status"`
	Priority         string   `json:"priority"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	StartTime        string   `json:"startTime,omitempty"`
	EndTime          string   `json:"endTime,omitempty"`
	RequiresApproval bool     `json:"requiresApproval"`
	Recurring        bool     `json:"recurring"`
	ApproverIDs      []string `json:"approverIds,omitempty"`
	AssigneeIDs      []string `json:"assigneeIds,omitempty"`
	CreatedAt        string   `json:"createdAt,omitempty"`
}

func fromTask(t domain.Task) taskRecord {
	return taskRecord{
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		StartDate:        t.StartDate.Format(DateLayout),
		EndDate:          t.EndDate.Format(DateLayout),
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		RequiresApproval: t.RequiresApproval,
		Recurring:        t.Recurring,
		ApproverIDs:      t.ApproverIDs,
		AssigneeIDs:      t.AssigneeIDs,
	}
}

func (r taskRecord) toTask() (domain.Task, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s startDate: %w", r.ID, err)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s endDate: %w", r.ID, err)
	}
	created, err := parseDate(r.CreatedAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s createdAt: %w", r.ID, err)
	}

	return domain.Task{
		ID:               string(r.ID),
		Title:            r.Title,
		Description:      r.Description,
		Status:           domain.TaskStatus(r.Status),
		Priority:         domain.Priority(r.Priority),
		StartDate:        start,
		EndDate:          end,
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		RequiresApproval: r.RequiresApproval,
		Recurring:        r.Recurring,
		ApproverIDs:      r.ApproverIDs,
		AssigneeIDs:      r.AssigneeIDs,
		CreatedAt:        created,
	}, nil
}

// parseDate accepts the layouts the remote API has been seen to emit. An
// empty value is the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// CreateTask posts a task record and returns the assigned id.
func (c *Client) CreateTask(ctx context.Context, actor domain.Identity, task domain.Task) (string, error) {
	r := request{method: http.MethodPost, path: "/task", jsonBody: fromTask(task)}

	var out createdResponse
	if err := c.do(ctx, actor, r, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &domain.TransportError{Op: r.op(), Err: errors.New("response carried no id")}
	}
	return string(out.ID), nil
}

// AttachDocuments uploads files for an existing task in one multipart request.
func (c *Client) AttachDocuments(ctx context.Context, actor domain.Identity, taskID string, docs []domain.Document) error {
	form := (&multipartForm{}).field("taskId", taskID)
	for _, d := range docs {
		form.file("files", d.Filename, d.Content)
	}
	return c.do(ctx, actor, request{method: http.MethodPost, path: "/task/documents", form: form}, nil)
}

// QueryTasks fetches the tasks matching filter. Empty text filters are omitted;
// the date range and hierarchy are always sent.
func (c *Client) QueryTasks(ctx context.Context, actor domain.Identity, filter domain.TaskFilter) ([]domain.Task, error) {
	q := url.Values{}
	if filter.Title != "" {
		q.Set("title", filter.Title)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		q.Set("priority", string(filter.Priority))
	}
	q.Set("startDate", filter.StartDate.Format(DateLayout))
	q.Set("endDate", filter.EndDate.Format(DateLayout))
	q.Set("hierarchyId", filter.HierarchyID)
	if filter.Recurrence {
		q.Set("recurrence", "true")
	}

	r := request{method: http.MethodGet, path: "/task/all", query: q}

	var out []taskRecord
	if err := c.do(ctx, actor, r, &out); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(out))
	for _, rec := range out {
		t, err := rec.toTask()
		if err != nil {
			return nil, &domain.TransportError{Op: r.op(), Err: err}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
