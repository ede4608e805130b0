package domain

import (
	"sort"
	"time"

	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// Policy is an HR policy assigned to all employees or to selected departments.
type Policy struct {
	ID            string             `json:"id"`
	Name          string             `json:"policyName"`
	Description   string             `json:"description"`
	EffectiveDate time.Time          `json:"effectiveDate"`
	ApplyToAll    bool               `json:"applyToAll"`
	Assignments   []PolicyAssignment `json:"assignTo"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// PolicyAssignment targets a department, either whole or a designation subset.
type PolicyAssignment struct {
	DepartmentID    string   `json:"departmentId"`
	AllDesignations bool     `json:"allDesignations"`
	DesignationIDs  []string `json:"designationIds"`
}

// AppliesTo reports whether the policy covers an employee placed in the given
// department and designation. Either may be empty.
func (p Policy) AppliesTo(departmentID, designationID string) bool {
	if p.ApplyToAll {
		return true
	}
	for _, a := range p.Assignments {
		if a.DepartmentID != departmentID {
			continue
		}
		if a.AllDesignations {
			return true
		}
		for _, id := range a.DesignationIDs {
			if id == designationID {
				return true
			}
		}
	}
	return false
}

// ValidateEffectiveDate rejects dates earlier than today. Only the calendar
// date in loc is compared.
func ValidateEffectiveDate(date, now time.Time, loc *time.Location) error {
	if date.IsZero() {
		return apperrors.NewValidationError("Effective Date is required", map[string]any{
			"effectiveDate": "Effective Date is required",
		})
	}
	if loc == nil {
		loc = time.UTC
	}
	if dateOnly(date, loc).Before(dateOnly(now, loc)) {
		return apperrors.NewValidationError("Effective date cannot be earlier than today", map[string]any{
			"effectiveDate": "Effective date cannot be earlier than today",
		})
	}
	return nil
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// OrgCatalog is the department/designation tree a policy selection is checked against.
type OrgCatalog struct {
	Departments []CatalogDepartment
}

// CatalogDepartment lists a department's designations.
type CatalogDepartment struct {
	ID             string
	Active         bool
	DesignationIDs []string
}

func (c OrgCatalog) department(id string) (CatalogDepartment, bool) {
	for _, d := range c.Departments {
		if d.ID == id {
			return d, true
		}
	}
	return CatalogDepartment{}, false
}

// PolicySelection is the assignment state edited on the policy form.
type PolicySelection struct {
	ApplyToAll  bool
	Assignments []PolicyAssignment
}

// SetApplyToAll switches the Apply to All flag. Turning it on drops every
// department and designation selection; turning it off leaves the selection empty.
func (s *PolicySelection) SetApplyToAll(on bool) {
	s.ApplyToAll = on
	if on {
		s.Assignments = nil
	}
}

// ToggleDepartment selects or clears a whole department.
func (s *PolicySelection) ToggleDepartment(catalog OrgCatalog, departmentID string, on bool) {
	s.remove(departmentID)
	if on {
		s.Assignments = append(s.Assignments, PolicyAssignment{DepartmentID: departmentID, AllDesignations: true})
	}
	s.Normalize(catalog)
}

// ToggleDesignation selects or clears a single designation of a department.
func (s *PolicySelection) ToggleDesignation(catalog OrgCatalog, departmentID, designationID string, on bool) {
	idx := s.index(departmentID)
	if idx < 0 {
		if !on {
			return
		}
		s.Assignments = append(s.Assignments, PolicyAssignment{DepartmentID: departmentID})
		idx = len(s.Assignments) - 1
	}
	a := &s.Assignments[idx]
	if a.AllDesignations {
		if dept, ok := catalog.department(departmentID); ok {
			a.DesignationIDs = append([]string(nil), dept.DesignationIDs...)
		}
		a.AllDesignations = false
	}
	a.DesignationIDs = removeString(a.DesignationIDs, designationID)
	if on {
		a.DesignationIDs = append(a.DesignationIDs, designationID)
	}
	s.Normalize(catalog)
}

// Normalize folds the selection against catalog: duplicate departments are
// merged, unknown designations dropped, a department whose designations are
// all selected switches to AllDesignations, and selecting every active
// department switches to ApplyToAll.
func (s *PolicySelection) Normalize(catalog OrgCatalog) {
	if s.ApplyToAll {
		s.Assignments = nil
		return
	}

	merged := make([]PolicyAssignment, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		if i := indexOf(merged, a.DepartmentID); i >= 0 {
			merged[i].AllDesignations = merged[i].AllDesignations || a.AllDesignations
			merged[i].DesignationIDs = append(merged[i].DesignationIDs, a.DesignationIDs...)
			continue
		}
		merged = append(merged, PolicyAssignment{
			DepartmentID:    a.DepartmentID,
			AllDesignations: a.AllDesignations,
			DesignationIDs:  append([]string(nil), a.DesignationIDs...),
		})
	}

	out := merged[:0]
	for _, a := range merged {
		dept, known := catalog.department(a.DepartmentID)
		if known && !a.AllDesignations {
			a.DesignationIDs = intersect(a.DesignationIDs, dept.DesignationIDs)
			if len(dept.DesignationIDs) > 0 && len(a.DesignationIDs) == len(dept.DesignationIDs) {
				a.AllDesignations = true
			}
		}
		if a.AllDesignations {
			a.DesignationIDs = nil
		} else {
			a.DesignationIDs = dedupe(a.DesignationIDs)
		}
		if !a.AllDesignations && len(a.DesignationIDs) == 0 {
			continue
		}
		out = append(out, a)
	}
	s.Assignments = out

	if coversAllActive(catalog, s.Assignments) {
		s.ApplyToAll = true
		s.Assignments = nil
	}
}

// Validate checks that the selection targets somebody and only references
// departments that exist.
func (s PolicySelection) Validate(catalog OrgCatalog) error {
	if s.ApplyToAll {
		return nil
	}
	if len(s.Assignments) == 0 {
		msg := "Select at least one department or enable Apply to All"
		return apperrors.NewValidationError(msg, map[string]any{"assignTo": msg})
	}
	for _, a := range s.Assignments {
		if _, ok := catalog.department(a.DepartmentID); !ok {
			msg := "Selected department does not exist"
			return apperrors.NewValidationError(msg, map[string]any{"assignTo": msg})
		}
	}
	return nil
}

func coversAllActive(catalog OrgCatalog, assignments []PolicyAssignment) bool {
	active := 0
	for _, d := range catalog.Departments {
		if !d.Active {
			continue
		}
		active++
		i := indexOf(assignments, d.ID)
		if i < 0 || !assignments[i].AllDesignations {
			return false
		}
	}
	return active > 0
}

func (s *PolicySelection) index(departmentID string) int {
	return indexOf(s.Assignments, departmentID)
}

func (s *PolicySelection) remove(departmentID string) {
	if i := s.index(departmentID); i >= 0 {
		s.Assignments = append(s.Assignments[:i], s.Assignments[i+1:]...)
	}
}

func indexOf(assignments []PolicyAssignment, departmentID string) int {
	for i := range assignments {
		if assignments[i].DepartmentID == departmentID {
			return i
		}
	}
	return -1
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func intersect(list, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(list))
	for _, id := range list {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return dedupe(out)
}

func dedupe(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, id := range list {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
