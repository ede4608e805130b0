package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/repository"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// AuditService records administrative changes made outside the console.
type AuditService struct {
	entries repository.AuditRepository
	logger  *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(entries repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{entries: entries, logger: logger}
}

// Record stores one audit entry. actor, action and target are required.
func (s *AuditService) Record(ctx context.Context, actor, action, target string, before, after map[string]any) (*domain.AuditEntry, error) {
	entry := &domain.AuditEntry{
		Actor:  strings.TrimSpace(actor),
		Action: strings.TrimSpace(action),
		Target: strings.TrimSpace(target),
		Before: before,
		After:  after,
	}
	if entry.Actor == "" || entry.Action == "" || entry.Target == "" {
		return nil, apperrors.NewValidationError("actor, action and target are required", nil)
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.logger != nil {
		s.logger.Info("audit entry recorded",
			zap.String("audit_id", entry.ID),
			zap.String("actor", entry.Actor),
			zap.String("action", entry.Action),
			zap.String("target", entry.Target))
	}
	return entry, nil
}

// History lists entries recorded against target, oldest first.
func (s *AuditService) History(ctx context.Context, target string) ([]domain.AuditEntry, error) {
	list, err := s.entries.ListByTarget(ctx, target)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}
