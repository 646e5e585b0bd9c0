package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neomorfeo/orgconsole/internal/domain"
)

// DefaultLookbackDays is how far back a task query reaches when no start date is given.
const DefaultLookbackDays = 15

// DefaultPageSize is the number of tasks shown per page.
const DefaultPageSize = 3

// TaskService creates and queries tasks.
type TaskService struct {
	gateway domain.TaskGateway
	now     func() time.Time
}

// NewTaskService creates a service with the given gateway.
func NewTaskService(gateway domain.TaskGateway) *TaskService {
	return &TaskService{gateway: gateway, now: time.Now}
}

// WithClock replaces the time source used for default date ranges.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Create validates and creates a task, then attaches any documents.
// A failed attachment is reported but the task itself stays created.
func (s *TaskService) Create(ctx context.Context, actor domain.Identity, task domain.Task, docs []domain.Document) (domain.Task, error) {
	if err := actor.Allows(domain.RoleAdmin, domain.RoleUser); err != nil {
		return domain.Task{}, err
	}

	task.Title = strings.TrimSpace(task.Title)
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	if err := validateStruct(task); err != nil {
		return domain.Task{}, err
	}
	for _, d := range docs {
		if len(d.Content) == 0 {
			return domain.Task{}, &domain.ValidationError{Field: "files", Message: fmt.Sprintf("document %q is empty", d.Filename)}
		}
	}

	id, err := s.gateway.CreateTask(ctx, actor, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("creating task: %w", err)
	}
	task.ID = id

	if len(docs) > 0 {
		if err := s.gateway.AttachDocuments(ctx, actor, id, docs); err != nil {
			slog.WarnContext(ctx, "attaching task documents", "task_id", id, "files", len(docs), "error", err)
			return task, fmt.Errorf("attaching documents to task %s: %w", id, err)
		}
	}

	return task, nil
}

// Query fetches tasks. Missing dates default to the DefaultLookbackDays
// window ending today; a missing hierarchy defaults to the actor's.
func (s *TaskService) Query(ctx context.Context, actor domain.Identity, filter domain.TaskFilter) ([]domain.Task, error) {
	if err := actor.Allows(domain.RoleAdmin, domain.RoleUser); err != nil {
		return nil, err
	}

	today := truncateDay(s.now())
	if filter.StartDate.IsZero() {
		filter.StartDate = today.AddDate(0, 0, -DefaultLookbackDays)
	}
	if filter.EndDate.IsZero() {
		filter.EndDate = today
	}
	if filter.EndDate.Before(filter.StartDate) {
		return nil, &domain.ValidationError{Field: "endDate", Message: "must not be before startDate"}
	}
	if filter.HierarchyID == "" {
		filter.HierarchyID = actor.HierarchyID
	}

	tasks, err := s.gateway.QueryTasks(ctx, actor, filter)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// Page is one slice of a paginated result.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	TotalItems int
}

// Paginate returns the 1-based page of items. Out-of-range pages are clamped.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	totalPages := (len(items) + perPage - 1) / perPage
	page = max(page, 1)
	if totalPages > 0 {
		page = min(page, totalPages)
	}

	start := min((page-1)*perPage, len(items))
	end := min(start+perPage, len(items))

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalItems: len(items),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
