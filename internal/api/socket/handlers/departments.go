package handlers

import (
	"context"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/service"
)

// DepartmentService is implemented by *service.DepartmentService.
type DepartmentService interface {
	Add(ctx context.Context, actor *domain.ConsoleUser, in service.DepartmentInput) (*domain.Department, error)
	Update(ctx context.Context, actor *domain.ConsoleUser, id string, in service.DepartmentInput) (*domain.Department, error)
	Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error
	ReassignAndDelete(ctx context.Context, actor *domain.ConsoleUser, sourceID, targetID string) error
	Stats(ctx context.Context, status *domain.Status) (*service.DepartmentStatsResult, error)
	List(ctx context.Context, status *domain.Status) ([]domain.Department, error)
}

type departmentHandlers struct {
	service DepartmentService
}

func (h *departmentHandlers) register(r *socket.Router, mutating socket.RouteOption) {
	r.Handle("hr/departments/add", h.add, mutating)
	r.Handle("hr/departmentsStats/get", h.stats, listLoad)
	r.Handle("hr/departments/get", h.list, listLoad)
	r.Handle("hrm/departments/update", h.update, mutating)
	r.Handle("hrm/departments/delete", h.delete, mutating)
	r.Handle("hrm/departments/reassign-delete", h.reassignDelete, mutating)
}

func (h *departmentHandlers) add(ctx context.Context, req *socket.Request) (any, error) {
	var in service.DepartmentInput
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	return h.service.Add(ctx, req.User, in)
}

func (h *departmentHandlers) stats(ctx context.Context, req *socket.Request) (any, error) {
	var filter dto.StatusFilter
	if err := req.Decode(&filter); err != nil {
		return nil, err
	}
	return h.service.Stats(ctx, filter.Status)
}

func (h *departmentHandlers) list(ctx context.Context, req *socket.Request) (any, error) {
	var filter dto.StatusFilter
	if err := req.Decode(&filter); err != nil {
		return nil, err
	}
	return h.service.List(ctx, filter.Status)
}

func (h *departmentHandlers) update(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.DepartmentUpdateRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.service.Update(ctx, req.User, id, in.DepartmentInput)
}

func (h *departmentHandlers) delete(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.IDRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	if err := h.service.Delete(ctx, req.User, id); err != nil {
		return nil, err
	}
	return deleted{ID: id}, nil
}

func (h *departmentHandlers) reassignDelete(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.ReassignRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	source, err := requireID("sourceId", in.SourceID)
	if err != nil {
		return nil, err
	}
	if err := h.service.ReassignAndDelete(ctx, req.User, source, in.TargetID); err != nil {
		return nil, err
	}
	return deleted{ID: source}, nil
}
