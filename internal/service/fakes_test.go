package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/events"
	"github.com/spec-kit/hr-console/internal/repository"
)

var seq int

func nextID(prefix string) string {
	seq++
	return prefix + "-" + strconv.Itoa(seq)
}

// fakeOrg backs the department, designation and employee fakes with shared state.
type fakeOrg struct {
	departments  map[string]*domain.Department
	designations map[string]*domain.Designation
	employees    map[string]*domain.Employee
	policyCount  map[string]int
	calls        []string
	reassignErr  error
}

func newFakeOrg() *fakeOrg {
	return &fakeOrg{
		departments:  map[string]*domain.Department{},
		designations: map[string]*domain.Designation{},
		employees:    map[string]*domain.Employee{},
		policyCount:  map[string]int{},
	}
}

func (o *fakeOrg) addDepartment(name string, status domain.Status) *domain.Department {
	d := &domain.Department{ID: nextID("dept"), Name: name, Status: status}
	o.departments[d.ID] = d
	return d
}

func (o *fakeOrg) addDesignation(name, departmentID string) *domain.Designation {
	d := &domain.Designation{ID: nextID("desig"), Name: name, DepartmentID: departmentID, Status: domain.StatusActive}
	o.designations[d.ID] = d
	return d
}

func (o *fakeOrg) addEmployee(departmentID, designationID string) *domain.Employee {
	e := &domain.Employee{ID: nextID("emp"), FirstName: "Test", Status: domain.EmployeeStatusActive}
	if departmentID != "" {
		e.DepartmentID = &departmentID
	}
	if designationID != "" {
		e.DesignationID = &designationID
	}
	o.employees[e.ID] = e
	return e
}

type fakeDepartments struct{ *fakeOrg }

func (f fakeDepartments) Create(_ context.Context, d *domain.Department) error {
	f.calls = append(f.calls, "department.create")
	d.ID = nextID("dept")
	d.CreatedAt = time.Now()
	cp := *d
	f.departments[d.ID] = &cp
	return nil
}

func (f fakeDepartments) Update(_ context.Context, d *domain.Department) error {
	f.calls = append(f.calls, "department.update")
	if _, ok := f.departments[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *d
	f.departments[d.ID] = &cp
	return nil
}

func (f fakeDepartments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (f fakeDepartments) GetByName(_ context.Context, name string) (*domain.Department, error) {
	for _, d := range f.departments {
		if strings.EqualFold(d.Name, name) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeDepartments) stats(d *domain.Department) domain.DepartmentStats {
	s := domain.DepartmentStats{Department: *d, PolicyCount: f.policyCount[d.ID]}
	for _, e := range f.employees {
		if e.DepartmentID != nil && *e.DepartmentID == d.ID {
			s.EmployeeCount++
		}
	}
	for _, g := range f.designations {
		if g.DepartmentID == d.ID {
			s.DesignationCount++
		}
	}
	return s
}

func (f fakeDepartments) GetStats(_ context.Context, id string) (*domain.DepartmentStats, error) {
	d, ok := f.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	s := f.stats(d)
	return &s, nil
}

func (f fakeDepartments) List(_ context.Context, status *domain.Status) ([]domain.Department, error) {
	var out []domain.Department
	for _, d := range f.departments {
		if status == nil || d.Status == *status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f fakeDepartments) ListStats(_ context.Context, status *domain.Status) ([]domain.DepartmentStats, error) {
	var out []domain.DepartmentStats
	for _, d := range f.departments {
		if status == nil || d.Status == *status {
			out = append(out, f.stats(d))
		}
	}
	return out, nil
}

func (f fakeDepartments) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "department.delete")
	if _, ok := f.departments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.departments, id)
	return nil
}

func (f fakeDepartments) Reassign(_ context.Context, sourceID, targetID string) error {
	f.calls = append(f.calls, "department.reassign")
	if f.reassignErr != nil {
		return f.reassignErr
	}
	merged := map[string]string{}
	for _, g := range f.designations {
		if g.DepartmentID != sourceID {
			continue
		}
		for _, t := range f.designations {
			if t.DepartmentID == targetID && strings.EqualFold(t.Name, g.Name) {
				merged[g.ID] = t.ID
			}
		}
	}
	for _, e := range f.employees {
		if e.DepartmentID != nil && *e.DepartmentID == sourceID {
			t := targetID
			e.DepartmentID = &t
		}
		if e.DesignationID != nil {
			if to, ok := merged[*e.DesignationID]; ok {
				e.DesignationID = &to
			}
		}
	}
	for id := range merged {
		delete(f.designations, id)
	}
	for _, g := range f.designations {
		if g.DepartmentID == sourceID {
			g.DepartmentID = targetID
		}
	}
	f.policyCount[targetID] += f.policyCount[sourceID]
	delete(f.policyCount, sourceID)
	delete(f.departments, sourceID)
	return nil
}

type fakeDesignations struct{ *fakeOrg }

func (f fakeDesignations) Create(_ context.Context, d *domain.Designation) error {
	f.calls = append(f.calls, "designation.create")
	d.ID = nextID("desig")
	cp := *d
	f.designations[d.ID] = &cp
	return nil
}

func (f fakeDesignations) Update(_ context.Context, d *domain.Designation) error {
	f.calls = append(f.calls, "designation.update")
	cp := *d
	f.designations[d.ID] = &cp
	return nil
}

func (f fakeDesignations) GetByID(_ context.Context, id string) (*domain.Designation, error) {
	d, ok := f.designations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (f fakeDesignations) stats(d *domain.Designation) domain.DesignationStats {
	s := domain.DesignationStats{Designation: *d}
	if dept, ok := f.departments[d.DepartmentID]; ok {
		s.DepartmentName = dept.Name
	}
	for _, e := range f.employees {
		if e.DesignationID != nil && *e.DesignationID == d.ID {
			s.EmployeeCount++
		}
	}
	return s
}

func (f fakeDesignations) GetStats(_ context.Context, id string) (*domain.DesignationStats, error) {
	d, ok := f.designations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	s := f.stats(d)
	return &s, nil
}

func (f fakeDesignations) ListStats(_ context.Context, filter repository.DesignationFilter) ([]domain.DesignationStats, error) {
	var out []domain.DesignationStats
	for _, d := range f.designations {
		if filter.DepartmentID != nil && d.DepartmentID != *filter.DepartmentID {
			continue
		}
		out = append(out, f.stats(d))
	}
	return out, nil
}

func (f fakeDesignations) ListByDepartments(_ context.Context, ids []string) ([]domain.Designation, error) {
	var out []domain.Designation
	for _, d := range f.designations {
		if ids == nil || containsString(ids, d.DepartmentID) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f fakeDesignations) ExistsInDepartment(_ context.Context, name, departmentID, excludeID string) (bool, error) {
	for _, d := range f.designations {
		if d.DepartmentID == departmentID && strings.EqualFold(d.Name, name) && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeDesignations) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "designation.delete")
	if _, ok := f.designations[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.designations, id)
	return nil
}

func (f fakeDesignations) Reassign(_ context.Context, sourceID, targetID string) error {
	f.calls = append(f.calls, "designation.reassign")
	if f.reassignErr != nil {
		return f.reassignErr
	}
	for _, e := range f.employees {
		if e.DesignationID != nil && *e.DesignationID == sourceID {
			t := targetID
			e.DesignationID = &t
		}
	}
	delete(f.designations, sourceID)
	return nil
}

type fakeEmployees struct {
	*fakeOrg
	sections map[string]map[repository.EmployeeSection]any
}

func newFakeEmployees(org *fakeOrg) *fakeEmployees {
	return &fakeEmployees{fakeOrg: org, sections: map[string]map[repository.EmployeeSection]any{}}
}

func (f *fakeEmployees) Create(_ context.Context, e *domain.Employee) error {
	for _, existing := range f.employees {
		if existing.EmployeeCode == e.EmployeeCode || strings.EqualFold(existing.Email, e.Email) {
			return repository.ErrDuplicate
		}
	}
	e.ID = nextID("emp")
	cp := *e
	f.employees[e.ID] = &cp
	return nil
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEmployees) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range f.employees {
		if filter.DepartmentID != nil && (e.DepartmentID == nil || *e.DepartmentID != *filter.DepartmentID) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEmployees) UpdateProfile(_ context.Context, e *domain.Employee) error {
	if _, ok := f.employees[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *e
	f.employees[e.ID] = &cp
	return nil
}

func (f *fakeEmployees) UpdateSection(_ context.Context, id string, section repository.EmployeeSection, value any) error {
	e, ok := f.employees[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if f.sections[id] == nil {
		f.sections[id] = map[repository.EmployeeSection]any{}
	}
	f.sections[id][section] = value
	switch v := value.(type) {
	case domain.BankInfo:
		e.Bank = v
	case domain.Permissions:
		e.Permissions = v
	case string:
		e.About = v
	case []domain.Experience:
		e.Experience = v
	case []domain.FamilyMember:
		e.Family = v
	}
	return nil
}

func (f *fakeEmployees) Delete(_ context.Context, id string) error {
	if _, ok := f.employees[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.employees, id)
	return nil
}

type fakePolicies struct {
	items map[string]*domain.Policy
}

func newFakePolicies() *fakePolicies {
	return &fakePolicies{items: map[string]*domain.Policy{}}
}

func (f *fakePolicies) Create(_ context.Context, p *domain.Policy) error {
	p.ID = nextID("policy")
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakePolicies) Update(_ context.Context, p *domain.Policy) error {
	if _, ok := f.items[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakePolicies) GetByID(_ context.Context, id string) (*domain.Policy, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePolicies) List(_ context.Context, filter repository.PolicyFilter) ([]domain.Policy, error) {
	var out []domain.Policy
	for _, p := range f.items {
		if filter.DepartmentID != nil {
			desig := ""
			if filter.DesignationID != nil {
				desig = *filter.DesignationID
			}
			if !p.AppliesTo(*filter.DepartmentID, desig) {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePolicies) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeTasks struct {
	items map[string]*domain.Task
}

func (f *fakeTasks) Create(_ context.Context, t *domain.Task) error {
	t.ID = nextID("task")
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTasks) Update(_ context.Context, t *domain.Task) error {
	if _, ok := f.items[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasks) match(t *domain.Task, filter repository.TaskFilter, withStatus bool) bool {
	if filter.ProjectID != nil && t.ProjectID != *filter.ProjectID {
		return false
	}
	if withStatus && filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && t.Priority != *filter.Priority {
		return false
	}
	return true
}

func (f *fakeTasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range f.items {
		if f.match(t, filter, true) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTasks) CountByStatus(_ context.Context, filter repository.TaskFilter) (map[domain.TaskStatus]int, error) {
	counts := map[domain.TaskStatus]int{}
	for _, t := range f.items {
		if f.match(t, filter, false) {
			counts[t.Status]++
		}
	}
	return counts, nil
}

func (f *fakeTasks) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeProjects struct {
	items map[string]*domain.Project
}

func (f *fakeProjects) Create(_ context.Context, p *domain.Project) error {
	p.ID = nextID("project")
	cp := *p
	f.items[p.ID] = &cp
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) List(context.Context) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.items {
		out = append(out, *p)
	}
	return out, nil
}

type fakeUsers struct {
	byID map[string]*domain.ConsoleUser
}

func (f *fakeUsers) Create(_ context.Context, u *domain.ConsoleUser) error {
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	u.ID = nextID("user")
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *domain.ConsoleUser) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.ConsoleUser, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.ConsoleUser, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUsers) List(context.Context, repository.ConsoleUserFilter) ([]domain.ConsoleUser, error) {
	var out []domain.ConsoleUser
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
}

func (f *fakeAudit) Create(_ context.Context, e *domain.AuditEntry) error {
	e.ID = nextID("audit")
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudit) ListByTarget(_ context.Context, target string) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	for _, e := range f.entries {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out, nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) SubscribeAll(events.EventHandler) {}

func (d *recordingDispatcher) last() events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.events) == 0 {
		return events.Event{}
	}
	return d.events[len(d.events)-1]
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

var testActor = &domain.ConsoleUser{ID: "user-1", Name: "Priya", Role: domain.RoleHR, Active: true}
