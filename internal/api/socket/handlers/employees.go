package handlers

import (
	"context"

	"github.com/spec-kit/hr-console/internal/api/dto"
	"github.com/spec-kit/hr-console/internal/api/socket"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/service"
)

// EmployeeService is implemented by *service.EmployeeService.
type EmployeeService interface {
	Add(ctx context.Context, actor *domain.ConsoleUser, in service.EmployeeInput) (*domain.Employee, error)
	List(ctx context.Context, filter service.EmployeeListFilter) ([]domain.Employee, error)
	GetDetails(ctx context.Context, id string) (*service.EmployeeDetails, error)
	UpdateProfile(ctx context.Context, actor *domain.ConsoleUser, id string, in service.EmployeeInput) (*domain.Employee, error)
	UpdateBank(ctx context.Context, actor *domain.ConsoleUser, id string, bank domain.BankInfo) (*domain.Employee, error)
	UpdatePersonal(ctx context.Context, actor *domain.ConsoleUser, id string, info domain.PersonalInfo) (*domain.Employee, error)
	UpdateFamily(ctx context.Context, actor *domain.ConsoleUser, id string, members []domain.FamilyMember) (*domain.Employee, error)
	UpdateEducation(ctx context.Context, actor *domain.ConsoleUser, id string, items []domain.Education) (*domain.Employee, error)
	UpdateExperience(ctx context.Context, actor *domain.ConsoleUser, id string, items []domain.Experience) (*domain.Employee, error)
	UpdateEmergency(ctx context.Context, actor *domain.ConsoleUser, id string, contacts []domain.EmergencyContact) (*domain.Employee, error)
	UpdateAbout(ctx context.Context, actor *domain.ConsoleUser, id, about string) (*domain.Employee, error)
	UpdatePermissions(ctx context.Context, actor *domain.ConsoleUser, id string, perms domain.Permissions) (*domain.Employee, error)
	Delete(ctx context.Context, actor *domain.ConsoleUser, id string) error
}

type employeeHandlers struct {
	service EmployeeService
}

func (h *employeeHandlers) register(r *socket.Router, mutating socket.RouteOption) {
	r.Handle("hrm/employees/add", h.add, mutating)
	r.Handle("hrm/employees/list", h.list, listLoad)
	r.Handle("hrm/employees/get-details", h.details)
	r.Handle("hrm/employees/update", h.update, mutating)
	r.Handle("hrm/employees/update-bank", section(h.service.UpdateBank), mutating)
	r.Handle("hrm/employees/update-personal", section(h.service.UpdatePersonal), mutating)
	r.Handle("hrm/employees/update-family", section(h.service.UpdateFamily), mutating)
	r.Handle("hrm/employees/update-education", section(h.service.UpdateEducation), mutating)
	r.Handle("hrm/employees/update-experience", section(h.service.UpdateExperience), mutating)
	r.Handle("hrm/employees/update-emergency", section(h.service.UpdateEmergency), mutating)
	r.Handle("hrm/employees/update-permissions", section(h.service.UpdatePermissions), mutating)
	r.Handle("hrm/employees/update-about", h.updateAbout, mutating)
	r.Handle("hrm/employees/delete", h.delete, mutating)
}

// section adapts a profile section update to a socket handler whose payload
// is {id, data}.
func section[T any](update func(context.Context, *domain.ConsoleUser, string, T) (*domain.Employee, error)) socket.HandlerFunc {
	return func(ctx context.Context, req *socket.Request) (any, error) {
		var in dto.SectionUpdate[T]
		if err := req.Decode(&in); err != nil {
			return nil, err
		}
		id, err := requireID("id", in.ID)
		if err != nil {
			return nil, err
		}
		return update(ctx, req.User, id, in.Data)
	}
}

func (h *employeeHandlers) add(ctx context.Context, req *socket.Request) (any, error) {
	var in service.EmployeeInput
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	return h.service.Add(ctx, req.User, in)
}

func (h *employeeHandlers) list(ctx context.Context, req *socket.Request) (any, error) {
	var filter service.EmployeeListFilter
	if err := req.Decode(&filter); err != nil {
		return nil, err
	}
	return h.service.List(ctx, filter)
}

func (h *employeeHandlers) details(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.IDRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.service.GetDetails(ctx, id)
}

func (h *employeeHandlers) update(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.EmployeeUpdateRequest
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.service.UpdateProfile(ctx, req.User, id, in.EmployeeInput)
}

func (h *employeeHandlers) updateAbout(ctx context.Context, req *socket.Request) (any, error) {
	var in dto.AboutUpdate
	if err := req.Decode(&in); err != nil {
		return nil, err
	}
	id, err := requireID("id", in.ID)
	if err != nil {
		return nil, err
	}
	return h.service.UpdateAbout(ctx, req.User, id, in.About)
}

func (h *employeeHandlers) delete(ctx context.Context, req *socket.Request) (any, error) {
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
