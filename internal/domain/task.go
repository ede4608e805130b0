package domain

import "time"

// TaskStatus enumerates task board columns.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusOnHold     TaskStatus = "On Hold"
)

// TaskStatuses lists board columns in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusToDo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusCompleted,
	TaskStatusOnHold,
}

// Valid reports whether s is a known column.
func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// TaskPriority enumerates urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh
}

// Task is a unit of project work.
type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Assignees   []string     `json:"assignee"`
	Tags        []string     `json:"tags"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Overdue reports whether the task is past due and not completed.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != TaskStatusCompleted && t.DueDate.Before(now)
}

// Project groups tasks.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
