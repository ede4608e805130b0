package handlers

import (
	"context"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/service"
)

// TaskService is implemented by *service.TaskService.
type TaskService interface {
	GetAllData(ctx context.Context, filter service.TaskListFilter) (*service.TaskBoard, error)
	Create(ctx context.Context, actor *domain.ConsoleUser, in service.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, actor *domain.ConsoleUser, id string, in service.TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error
}

// ProjectService is implemented by *service.ProjectService.
type ProjectService interface {
	GetAll(ctx context.Context) ([]domain.Project, error)
	Create(ctx context.Context, actor *domain.ConsoleUser, in service.ProjectInput) (*domain.Project, error)
}

type taskHandlers struct {
	tasks    TaskService
	projects ProjectService
}

func (h *taskHandlers) register(r *socket.Router, mutating socket.RouteOption) {
	r.Handle("task:getAllData", h.board, listLoad)
	r.Handle("task:create", h.create, mutating)
	r.Handle("task:update", h.update, mutating)
	r.Handle("task:delete", h.delete, mutating)
	r.Handle("project:getAll", h.projectsList, listLoad)
	r.Handle("project:create", h.createProject, mutating)
}

func (h *taskHandlers) board(ctx context.Context, req *socket.Request) (any, error) {
	var filter service.TaskListFilter
	if err := req.Decode(&filter); err != nil {
		return nil, err
	}
	return h.tasks.GetAllData(ctx, filter)
}

func (h *taskHandlers) create(ctx context.Context, req *socket.Request) (any, error) {
	var in service.TaskInput
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	return h.tasks.Create(ctx, req.User, in)
}

func (h *taskHandlers) update(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.TaskUpdateRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.tasks.Update(ctx, req.User, id, in.TaskInput)
}

func (h *taskHandlers) delete(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.IDRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	if err := h.tasks.Delete(ctx, req.User, id); err != nil {
		return nil, err
	}
	return deleted{ID: id}, nil
}

func (h *taskHandlers) projectsList(ctx context.Context, _ *socket.Request) (any, error) {
	return h.projects.GetAll(ctx)
}

func (h *taskHandlers) createProject(ctx context.Context, req *socket.Request) (any, error) {
	var in service.ProjectInput
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	return h.projects.Create(ctx, req.User, in)
}
