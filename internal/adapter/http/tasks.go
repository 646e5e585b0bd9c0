package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/orgconsole/internal/app"
	"github.com/neomorfeo/orgconsole/internal/calendar"
	"github.com/neomorfeo/orgconsole/internal/domain"
)

const (
	dateLayout  = time.DateOnly
	monthLayout = "2006-01"
)

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Status           string   `json:"status"`
	Priority         string   `json:"priority"`
	StartDate        string   `json:"startDate" doc:"YYYY-MM-DD"`
	EndDate          string   `json:"endDate" doc:"YYYY-MM-DD"`
	StartTime        string   `json:"startTime,omitempty" doc:"HH:MM"`
	EndTime          string   `json:"endTime,omitempty" doc:"HH:MM"`
	RequiresApproval bool     `json:"requiresApproval"`
	Recurring        bool     `json:"recurring"`
	ApproverIDs      []string `json:"approverIds"`
	AssigneeIDs      []string `json:"assigneeIds"`
}

func toTaskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		StartDate:        t.StartDate.Format(dateLayout),
		EndDate:          t.EndDate.Format(dateLayout),
		StartTime:        t.StartTime,
		EndTime:          t.EndTime,
		RequiresApproval: t.RequiresApproval,
		Recurring:        t.Recurring,
		ApproverIDs:      nonNil(t.ApproverIDs),
		AssigneeIDs:      nonNil(t.AssigneeIDs),
	}
}

func toTaskResponses(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// parseDate parses an optional YYYY-MM-DD value.
func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", value)}
	}
	return t, nil
}

// --- Create Task ---

type DocumentInput struct {
	Filename string `json:"filename" minLength:"1"`
	Content  []byte `json:"content" doc:"File content, base64 encoded"`
}

type CreateTaskInput struct {
	SessionInput
	Body struct {
		Title            string          `json:"title" doc:"Task title"`
		Description      string          `json:"description,omitempty"`
		Status           string          `json:"status,omitempty" enum:"PENDING,IN_PROGRESS,DONE" doc:"Defaults to PENDING"`
		Priority         string          `json:"priority" enum:"LOW,MEDIUM,HIGH"`
		StartDate        string          `json:"startDate" doc:"YYYY-MM-DD"`
		EndDate          string          `json:"endDate" doc:"YYYY-MM-DD"`
		StartTime        string          `json:"startTime,omitempty" doc:"HH:MM"`
		EndTime          string          `json:"endTime,omitempty" doc:"HH:MM"`
		RequiresApproval bool            `json:"requiresApproval,omitempty"`
		Recurring        bool            `json:"recurring,omitempty"`
		ApproverIDs      []string        `json:"approverIds,omitempty"`
		AssigneeIDs      []string        `json:"assigneeIds"`
		Documents        []DocumentInput `json:"documents,omitempty"`
	}
}

type CreateTaskOutput struct {
	Body struct {
		TaskResponse
		DocumentsError string `json:"documentsError,omitempty" doc:"Set when the task was created but its documents were not attached"`
	}
}

// --- Query Tasks ---

type QueryTasksInput struct {
	SessionInput
	Title       string `query:"title" required:"false"`
	Status      string `query:"status" required:"false"`
	Priority    string `query:"priority" required:"false"`
	StartDate   string `query:"startDate" required:"false" doc:"YYYY-MM-DD, defaults to 15 days ago"`
	EndDate     string `query:"endDate" required:"false" doc:"YYYY-MM-DD, defaults to today"`
	HierarchyID string `query:"hierarchyId" required:"false" doc:"Defaults to the actor's hierarchy"`
	Recurrence  bool   `query:"recurrence" required:"false"`
	Page        int    `query:"page" required:"false" default:"1"`
	PerPage     int    `query:"perPage" required:"false" default:"3"`
}

type TaskPageResponse struct {
	Items      []TaskResponse `json:"items"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	TotalItems int            `json:"totalItems"`
}

type QueryTasksOutput struct {
	Body TaskPageResponse
}

// --- Calendar ---

type CalendarInput struct {
	SessionInput
	Month       string   `query:"month" required:"false" doc:"YYYY-MM, defaults to the current month"`
	Selected    []string `query:"selected" required:"false" doc:"Selected YYYY-MM-DD dates"`
	HierarchyID string   `query:"hierarchyId" required:"false"`
}

// CalendarCell is one day of the month grid. Padding cells have an empty date.
type CalendarCell struct {
	Date  string `json:"date"`
	Tasks int    `json:"tasks"`
}

type SelectedDay struct {
	Date  string         `json:"date"`
	Tasks []TaskResponse `json:"tasks"`
}

type CalendarResponse struct {
	Month    string           `json:"month"`
	Weeks    [][]CalendarCell `json:"weeks" doc:"Sunday-first weeks of seven cells"`
	Busy     []string         `json:"busy" doc:"Dates with at least one task"`
	Selected []SelectedDay    `json:"selected"`
}

type CalendarOutput struct {
	Body CalendarResponse
}

func registerTasks(api huma.API, svc Services) {
	tasks := svc.Tasks
	tags := []string{"Tasks"}

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/api/v1/tasks",
		Summary:       "Create a task and attach its documents",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}

		b := input.Body
		start, err := parseDate("startDate", b.StartDate)
		if err != nil {
			return nil, toHumaError(err)
		}
		end, err := parseDate("endDate", b.EndDate)
		if err != nil {
			return nil, toHumaError(err)
		}

		docs := make([]domain.Document, len(b.Documents))
		for i, d := range b.Documents {
			docs[i] = domain.Document{Filename: d.Filename, Content: d.Content}
		}

		task, err := tasks.Create(ctx, actor, domain.Task{
			Title:            b.Title,
			Description:      b.Description,
			Status:           domain.TaskStatus(b.Status),
			Priority:         domain.Priority(b.Priority),
			StartDate:        start,
			EndDate:          end,
			StartTime:        b.StartTime,
			EndTime:          b.EndTime,
			RequiresApproval: b.RequiresApproval,
			Recurring:        b.Recurring,
			ApproverIDs:      b.ApproverIDs,
			AssigneeIDs:      b.AssigneeIDs,
		}, docs)
		if err != nil && task.ID == "" {
			return nil, toHumaError(err)
		}

		out := &CreateTaskOutput{}
		out.Body.TaskResponse = toTaskResponse(task)
		if err != nil {
			out.Body.DocumentsError = domain.UserMessage(err)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "query-tasks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks",
		Summary:     "Query tasks in a date range",
		Tags:        tags,
	}, func(ctx context.Context, input *QueryTasksInput) (*QueryTasksOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}

		start, err := parseDate("startDate", input.StartDate)
		if err != nil {
			return nil, toHumaError(err)
		}
		end, err := parseDate("endDate", input.EndDate)
		if err != nil {
			return nil, toHumaError(err)
		}

		found, err := tasks.Query(ctx, actor, domain.TaskFilter{
			Title:       input.Title,
			Status:      domain.TaskStatus(input.Status),
			Priority:    domain.Priority(input.Priority),
			StartDate:   start,
			EndDate:     end,
			HierarchyID: input.HierarchyID,
			Recurrence:  input.Recurrence,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		page := app.Paginate(found, input.Page, input.PerPage)
		return &QueryTasksOutput{Body: TaskPageResponse{
			Items:      toTaskResponses(page.Items),
			Page:       page.Page,
			TotalPages: page.TotalPages,
			TotalItems: page.TotalItems,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-calendar",
		Method:      http.MethodGet,
		Path:        "/api/v1/calendar",
		Summary:     "Lay a month of tasks out on a week grid",
		Tags:        tags,
	}, func(ctx context.Context, input *CalendarInput) (*CalendarOutput, error) {
		actor, err := actorFor(ctx, svc.Sessions, input.SessionInput)
		if err != nil {
			return nil, err
		}

		month := time.Now()
		if input.Month != "" {
			month, err = time.Parse(monthLayout, input.Month)
			if err != nil {
				return nil, toHumaError(&domain.ValidationError{Field: "month", Message: fmt.Sprintf("%q is not a YYYY-MM month", input.Month)})
			}
		}
		selected := make([]time.Time, 0, len(input.Selected))
		for _, s := range input.Selected {
			d, err := parseDate("selected", s)
			if err != nil {
				return nil, toHumaError(err)
			}
			selected = append(selected, d)
		}

		first, last := calendar.MonthRange(month)
		found, err := tasks.Query(ctx, actor, domain.TaskFilter{
			StartDate:   first,
			EndDate:     last,
			HierarchyID: input.HierarchyID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		dates := calendar.DatesInRange(first, last)
		resp := CalendarResponse{
			Month:    first.Format(monthLayout),
			Busy:     []string{},
			Selected: []SelectedDay{},
		}
		for _, week := range calendar.WeekGrid(dates) {
			cells := make([]CalendarCell, len(week))
			for i, d := range week {
				if d.IsZero() {
					continue
				}
				cells[i] = CalendarCell{Date: d.Format(dateLayout), Tasks: len(calendar.TasksForDay(found, d))}
			}
			resp.Weeks = append(resp.Weeks, cells)
		}
		for _, d := range calendar.BusyDates(found, dates) {
			resp.Busy = append(resp.Busy, d.Format(dateLayout))
		}
		for _, day := range calendar.GroupBySelectedDates(found, selected) {
			resp.Selected = append(resp.Selected, SelectedDay{
				Date:  day.Date.Format(dateLayout),
				Tasks: toTaskResponses(day.Tasks),
			})
		}
		return &CalendarOutput{Body: resp}, nil
	})
}
