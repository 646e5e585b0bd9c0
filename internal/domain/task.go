package domain

import "time"

// TaskStatus is the lifecycle state of a task on the remote API.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Task is an activity assigned to users of a company.
type Task struct {
	ID               string
	Title            string     `validate:"required,max=255"`
	Description      string     `validate:"max=4000"`
	Status           TaskStatus `validate:"required,oneof=PENDING IN_PROGRESS DONE"`
	Priority         Priority   `validate:"required,oneof=LOW MEDIUM HIGH"`
	StartDate        time.Time  `validate:"required"`
	EndDate          time.Time  `validate:"required,gtefield=StartDate"`
	StartTime        string     `validate:"omitempty,datetime=15:04"`
	EndTime          string     `validate:"omitempty,datetime=15:04"`
	RequiresApproval bool
	Recurring        bool
	ApproverIDs      []string `validate:"required_if=RequiresApproval true"`
	AssigneeIDs      []string `validate:"min=1"`
	CreatedAt        time.Time
}

// Document is a file attached to a task.
type Document struct {
	Filename string
	Content  []byte
}

// TaskFilter narrows a task query. Zero values are omitted from the request,
// except the date range and hierarchy which are always sent.
type TaskFilter struct {
	Title       string
	Status      TaskStatus
	Priority    Priority
	StartDate   time.Time
	EndDate     time.Time
	HierarchyID string
	Recurrence  bool
}

// ReachableNodes lists the hierarchy members above and below a user.
type ReachableNodes struct {
	Supervisors  []NodeMember
	Subordinates []NodeMember
}

// NodeMember is a user placed in a hierarchy node.
type NodeMember struct {
	NodeID   string
	NodeName string
	UserID   string
	FullName string
}
