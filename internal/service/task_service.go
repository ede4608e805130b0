package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/validation"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// TaskService backs the task board.
type TaskService struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	now      func() time.Time
	publisher
}

// TaskDependencies encapsulates task service requirements.
type TaskDependencies struct {
	TaskRepo    repository.TaskRepository
	ProjectRepo repository.ProjectRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks:     deps.TaskRepo,
		projects:  deps.ProjectRepo,
		now:       now,
		publisher: publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
	}
}

// TaskInput is the create/edit task form.
type TaskInput struct {
	ProjectID   string              `json:"projectId" validate:"required" label:"Project"`
	Title       string              `json:"title" validate:"required,max=200" label:"Task Title"`
	Description string              `json:"description" validate:"max=5000" label:"Description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	Assignees   []string            `json:"assignee"`
	Tags        []string            `json:"tags"`
}

func (in *TaskInput) normalize() {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = domain.TaskStatusToDo
	}
	if in.Priority == "" {
		in.Priority = domain.TaskPriorityMedium
	}
	in.Assignees = compact(in.Assignees)
	in.Tags = compact(in.Tags)
}

// TaskListFilter narrows the task board.
type TaskListFilter struct {
	ProjectID *string              `json:"projectId,omitempty"`
	Status    *domain.TaskStatus   `json:"status,omitempty"`
	Priority  *domain.TaskPriority `json:"priority,omitempty"`
	Search    string               `json:"search,omitempty"`
	Limit     int                  `json:"limit,omitempty"`
	Offset    int                  `json:"offset,omitempty"`
}

// TaskBoard is the payload of the task screen.
type TaskBoard struct {
	Tasks        []domain.Task             `json:"tasks"`
	StatusCounts map[domain.TaskStatus]int `json:"statusCounts"`
	Total        int                       `json:"total"`
	Overdue      int                       `json:"overdue"`
}

// GetAllData returns matching tasks together with per-column counts.
func (s *TaskService) GetAllData(ctx context.Context, filter TaskListFilter) (*TaskBoard, error) {
	repoFilter := repository.TaskFilter{
		ProjectID: trimmedOrNil(filter.ProjectID),
		Status:    filter.Status,
		Priority:  filter.Priority,
		Search:    filter.Search,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	tasks, err := s.tasks.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	counts, err := s.tasks.CountByStatus(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	board := &TaskBoard{
		Tasks:        tasks,
		StatusCounts: make(map[domain.TaskStatus]int, len(domain.TaskStatuses)),
	}
	if board.Tasks == nil {
		board.Tasks = []domain.Task{}
	}
	for _, status := range domain.TaskStatuses {
		board.StatusCounts[status] = counts[status]
		board.Total += counts[status]
	}
	now := s.now()
	for _, t := range tasks {
		if t.Overdue(now) {
			board.Overdue++
		}
	}
	return board, nil
}

// Create adds a task to an existing project.
func (s *TaskService) Create(ctx context.Context, actor *domain.ConsoleUser, in TaskInput) (*domain.Task, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	t := &domain.Task{}
	applyTask(t, in)
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventTaskChanged, events.ActionCreated, t.ID, nil)
	return t, nil
}

// Update replaces a task.
func (s *TaskService) Update(ctx context.Context, actor *domain.ConsoleUser, id string, in TaskInput) (*domain.Task, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "task", map[string]any{"id": id})
	}
	applyTask(t, in)
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, apperrors.NotFoundOr(err, "task", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventTaskChanged, events.ActionUpdated, id, nil)
	return t, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return apperrors.NotFoundOr(err, "task", map[string]any{"id": id})
	}
	s.publish(ctx, actor, events.EventTaskChanged, events.ActionDeleted, id, nil)
	return nil
}

func (s *TaskService) validate(ctx context.Context, in *TaskInput) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return apperrors.NewValidationError("Status is invalid", map[string]any{"status": "Status is invalid"})
	}
	if !in.Priority.Valid() {
		return apperrors.NewValidationError("Priority is invalid", map[string]any{"priority": "Priority is invalid"})
	}
	if _, err := s.projects.GetByID(ctx, in.ProjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("Selected project does not exist", map[string]any{
				"projectId": "Selected project does not exist",
			})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func applyTask(t *domain.Task, in TaskInput) {
	t.ProjectID = in.ProjectID
	t.Title = in.Title
	t.Description = in.Description
	t.Status = in.Status
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	t.Assignees = in.Assignees
	t.Tags = in.Tags
}

// compact trims entries and drops blanks and duplicates, keeping order.
func compact(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
