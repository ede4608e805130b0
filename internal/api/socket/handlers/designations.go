package handlers

import (
	"context"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/service"
)

// DesignationService is implemented by *service.DesignationService.
type DesignationService interface {
	Add(ctx context.Context, actor *domain.ConsoleUser, in service.DesignationInput) (*domain.Designation, error)
	Update(ctx context.Context, actor *domain.ConsoleUser, id string, in service.DesignationInput) (*domain.Designation, error)
	Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error
	ReassignAndDelete(ctx context.Context, actor *domain.ConsoleUser, sourceID, targetID string) error
	List(ctx context.Context, filter service.DesignationListFilter) ([]service.DesignationView, error)
}

type designationHandlers struct {
	service DesignationService
}

func (h *designationHandlers) register(r *socket.Router, mutating socket.RouteOption) {
	r.Handle("hrm/designations/add", h.add, mutating)
	r.Handle("hrm/designations/get", h.list, listLoad)
	r.Handle("hrm/designations/update", h.update, mutating)
	r.Handle("hrm/designations/delete", h.delete, mutating)
	r.Handle("hrm/designations/reassign-delete", h.reassignDelete, mutating)
}

func (h *designationHandlers) add(ctx context.Context, req *socket.Request) (any, error) {
	var in service.DesignationInput
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	return h.service.Add(ctx, req.User, in)
}

func (h *designationHandlers) list(ctx context.Context, req *socket.Request) (any, error) {
	var filter service.DesignationListFilter
	if err := req.Decode(&filter); err != nil {
		return nil, err
	}
	return h.service.List(ctx, filter)
}

func (h *designationHandlers) update(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.DesignationUpdateRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.service.Update(ctx, req.User, id, in.DesignationInput)
}

func (h *designationHandlers) delete(ctx context.Context, req *socket.Request) (any, error) {
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

func (h *designationHandlers) reassignDelete(ctx context.Context, req *socket.Request) (any, error) {
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
