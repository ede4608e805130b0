package handlers

import (
	"context"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/service"
)

// PolicyService is implemented by *service.PolicyService.
type PolicyService interface {
	Add(ctx context.Context, actor *domain.ConsoleUser, in service.PolicyInput) (*domain.Policy, error)
	Update(ctx context.Context, actor *domain.ConsoleUser, id string, in service.PolicyInput) (*domain.Policy, error)
	Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error
	List(ctx context.Context, filter service.PolicyListFilter) ([]domain.Policy, error)
}

type policyHandlers struct {
	service PolicyService
}

func (h *policyHandlers) register(r *socket.Router, mutating socket.RouteOption) {
	r.Handle("hr/policy/add", h.add, mutating)
	r.Handle("hr/policy/get", h.list, listLoad)
	r.Handle("hr/policy/update", h.update, mutating)
	r.Handle("hr/policy/delete", h.delete, mutating)
}

func (h *policyHandlers) add(ctx context.Context, req *socket.Request) (any, error) {
	var in service.PolicyInput
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	return h.service.Add(ctx, req.User, in)
}

func (h *policyHandlers) list(ctx context.Context, req *socket.Request) (any, error) {
	var filter service.PolicyListFilter
	if err := req.Decode(&filter); err != nil {
		return nil, err
	}
	return h.service.List(ctx, filter)
}

func (h *policyHandlers) update(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.PolicyUpdateRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.service.Update(ctx, req.User, id, in.PolicyInput)
}

func (h *policyHandlers) delete(ctx context.Context, req *socket.Request) (any, error) {
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
