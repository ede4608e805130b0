package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hr-console/internal/domain"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

func newTaskFixture() (*TaskService, *ProjectService, *fakeTasks, *fakeProjects) {
	tasks := &fakeTasks{items: map[string]*domain.Task{}}
	projects := &fakeProjects{items: map[string]*domain.Project{}}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewTaskService(TaskDependencies{
		TaskRepo:    tasks,
		ProjectRepo: projects,
		Dispatcher:  &recordingDispatcher{},
		Now:         func() time.Time { return now },
	})
	return svc, NewProjectService(projects, &recordingDispatcher{}, nil), tasks, projects
}

func TestTaskCreate(t *testing.T) {
	svc, projects, _, _ := newTaskFixture()
	ctx := context.Background()

	p, err := projects.Create(ctx, testActor, ProjectInput{Name: "Onboarding"})
	require.NoError(t, err)
	require.Equal(t, "Active", p.Status)

	task, err := svc.Create(ctx, testActor, TaskInput{
		ProjectID: p.ID,
		Title:     " Prepare laptop ",
		Assignees: []string{"emp-1", " ", "emp-1", "emp-2"},
	})
	require.NoError(t, err)
	require.Equal(t, "Prepare laptop", task.Title)
	require.Equal(t, domain.TaskStatusToDo, task.Status)
	require.Equal(t, domain.TaskPriorityMedium, task.Priority)
	require.Equal(t, []string{"emp-1", "emp-2"}, task.Assignees)
	require.Equal(t, []string{}, task.Tags)

	_, err = svc.Create(ctx, testActor, TaskInput{ProjectID: "missing", Title: "x"})
	require.Equal(t, "Selected project does not exist", apperrors.ToDomainError(err).Message)

	_, err = svc.Create(ctx, testActor, TaskInput{ProjectID: p.ID, Title: "x", Status: "Blocked"})
	require.Equal(t, "Status is invalid", apperrors.ToDomainError(err).Message)

	_, err = svc.Create(ctx, testActor, TaskInput{ProjectID: p.ID})
	require.Equal(t, "Task Title is required", apperrors.ToDomainError(err).Message)
}

func TestTaskGetAllData(t *testing.T) {
	svc, projects, _, _ := newTaskFixture()
	ctx := context.Background()
	p, err := projects.Create(ctx, testActor, ProjectInput{Name: "Payroll"})
	require.NoError(t, err)

	yesterday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []TaskInput{
		{ProjectID: p.ID, Title: "a", DueDate: &yesterday},
		{ProjectID: p.ID, Title: "b", Status: domain.TaskStatusCompleted, DueDate: &yesterday},
		{ProjectID: p.ID, Title: "c", Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityHigh},
	} {
		_, err := svc.Create(ctx, testActor, in)
		require.NoError(t, err)
	}

	board, err := svc.GetAllData(ctx, TaskListFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	require.Len(t, board.Tasks, 3)
	require.Equal(t, 3, board.Total)
	require.Equal(t, 1, board.Overdue)
	require.Equal(t, 1, board.StatusCounts[domain.TaskStatusToDo])
	require.Equal(t, 0, board.StatusCounts[domain.TaskStatusReview])
	require.Len(t, board.StatusCounts, len(domain.TaskStatuses))

	status := domain.TaskStatusCompleted
	board, err = svc.GetAllData(ctx, TaskListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, board.Tasks, 1)
	require.Equal(t, 3, board.Total)
}

func TestTaskUpdateDelete(t *testing.T) {
	svc, projects, tasks, _ := newTaskFixture()
	ctx := context.Background()
	p, _ := projects.Create(ctx, testActor, ProjectInput{Name: "Hiring"})
	task, err := svc.Create(ctx, testActor, TaskInput{ProjectID: p.ID, Title: "Post job"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, testActor, task.ID, TaskInput{ProjectID: p.ID, Title: "Post job", Status: domain.TaskStatusReview})
	require.NoError(t, err)
	require.Equal(t, domain.TaskStatusReview, updated.Status)

	require.NoError(t, svc.Delete(ctx, testActor, task.ID))
	require.Empty(t, tasks.items)

	_, err = svc.Update(ctx, testActor, task.ID, TaskInput{ProjectID: p.ID, Title: "Post job"})
	require.Equal(t, apperrors.CodeNotFound, apperrors.ToDomainError(err).Code)
}

func TestProjectCreate_Validation(t *testing.T) {
	_, projects, _, _ := newTaskFixture()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := projects.Create(context.Background(), testActor, ProjectInput{})
	require.Equal(t, "Project Name is required", apperrors.ToDomainError(err).Message)

	_, err = projects.Create(context.Background(), testActor, ProjectInput{Name: "X", StartDate: &start, EndDate: &end})
	require.Equal(t, "End date cannot be earlier than start date", apperrors.ToDomainError(err).Message)

	list, err := projects.GetAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []domain.Project{}, list)
}
