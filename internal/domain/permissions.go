package domain

import "sort"

// Modules covered by the employee permission matrix.
const (
	ModuleHolidays     = "holidays"
	ModuleLeaves       = "leaves"
	ModuleClients      = "clients"
	ModuleProjects     = "projects"
	ModuleTasks        = "tasks"
	ModuleChats        = "chats"
	ModuleAssets       = "assets"
	ModuleTimingSheets = "timingSheets"
)

// PermissionModules lists every module in display order.
var PermissionModules = []string{
	ModuleHolidays,
	ModuleLeaves,
	ModuleClients,
	ModuleProjects,
	ModuleTasks,
	ModuleChats,
	ModuleAssets,
	ModuleTimingSheets,
}

// PermissionActions is one row of the permission matrix.
type PermissionActions struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Create bool `json:"create"`
	Delete bool `json:"delete"`
	Import bool `json:"import"`
	Export bool `json:"export"`
}

// All reports whether every action is granted.
func (a PermissionActions) All() bool {
	return a.Read && a.Write && a.Create && a.Delete && a.Import && a.Export
}

// Permissions is the module x action matrix attached to an employee.
type Permissions struct {
	EnabledModules map[string]bool              `json:"enabledModules"`
	Modules        map[string]PermissionActions `json:"permissions"`
}

// IsKnownModule reports whether name is part of the matrix.
func IsKnownModule(name string) bool {
	for _, m := range PermissionModules {
		if m == name {
			return true
		}
	}
	return false
}

// UnknownModules returns the module names in p that are not part of the matrix.
func (p Permissions) UnknownModules() []string {
	seen := map[string]struct{}{}
	for name := range p.EnabledModules {
		if !IsKnownModule(name) {
			seen[name] = struct{}{}
		}
	}
	for name := range p.Modules {
		if !IsKnownModule(name) {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Normalize returns a copy with a row for every module and with the actions
// of disabled modules cleared.
func (p Permissions) Normalize() Permissions {
	out := Permissions{
		EnabledModules: make(map[string]bool, len(PermissionModules)),
		Modules:        make(map[string]PermissionActions, len(PermissionModules)),
	}
	for _, name := range PermissionModules {
		enabled := p.EnabledModules[name]
		out.EnabledModules[name] = enabled
		if enabled {
			out.Modules[name] = p.Modules[name]
		} else {
			out.Modules[name] = PermissionActions{}
		}
	}
	return out
}

// Allows reports whether action is granted on module.
func (p Permissions) Allows(module, action string) bool {
	if !p.EnabledModules[module] {
		return false
	}
	row := p.Modules[module]
	switch action {
	case "read":
		return row.Read
	case "write":
		return row.Write
	case "create":
		return row.Create
	case "delete":
		return row.Delete
	case "import":
		return row.Import
	case "export":
		return row.Export
	}
	return false
}
