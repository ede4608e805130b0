package domain

import (
	"strings"

	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// DeleteRoute selects which confirmation flow a deletion must go through.
type DeleteRoute string

const (
	DeleteDirect   DeleteRoute = "direct"
	DeleteReassign DeleteRoute = "reassign"
)

// PlanDepartmentDeletion routes departments with no dependents to a plain
// delete and everything else to reassignment.
func PlanDepartmentDeletion(stats DepartmentStats) DeleteRoute {
	if stats.HasDependents() {
		return DeleteReassign
	}
	return DeleteDirect
}

// PlanDesignationDeletion routes designations that still have employees to reassignment.
func PlanDesignationDeletion(stats DesignationStats) DeleteRoute {
	if stats.EmployeeCount > 0 {
		return DeleteReassign
	}
	return DeleteDirect
}

// ValidateReassignTarget checks the reassignment target chosen for a deletion.
// kind is the human name of the resource, e.g. "department".
func ValidateReassignTarget(kind, sourceID, targetID string) error {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		msg := "Please select a " + kind + " to reassign to"
		return apperrors.NewValidationError(msg, map[string]any{"targetId": msg})
	}
	if targetID == sourceID {
		msg := "Cannot reassign a " + kind + " to itself"
		return apperrors.NewValidationError(msg, map[string]any{"targetId": msg})
	}
	return nil
}
