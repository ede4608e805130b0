package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/validation"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// ProjectService lists and creates projects for the task board.
type ProjectService struct {
	projects repository.ProjectRepository
	publisher
}

// NewProjectService constructs the service.
func NewProjectService(projects repository.ProjectRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, publisher: publisher{dispatcher: dispatcher, logger: logger}}
}

// ProjectInput is the create project form.
type ProjectInput struct {
	Name        string     `json:"name" validate:"required,max=150" label:"Project Name"`
	Description string     `json:"description" validate:"max=5000" label:"Description"`
	Status      string     `json:"status" validate:"omitempty,oneof=Active Completed Archived" label:"Status"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// GetAll returns every project.
func (s *ProjectService) GetAll(ctx context.Context) ([]domain.Project, error) {
	list, err := s.projects.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if list == nil {
		list = []domain.Project{}
	}
	return list, nil
}

// Create adds a project.
func (s *ProjectService) Create(ctx context.Context, actor *domain.ConsoleUser, in ProjectInput) (*domain.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = "Active"
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := checkPeriod("endDate", in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	p := &domain.Project{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.EventTaskChanged, events.ActionCreated, p.ID, map[string]string{"kind": "project"})
	return p, nil
}
