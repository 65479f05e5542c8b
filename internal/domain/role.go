package domain

// Role enumerates portal roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleDeptHead Role = "DEPT_HEAD"
	RoleStaff    Role = "STAFF"
)

// Capability names an action a role may perform.
type Capability string

const (
	CapViewIssues          Capability = "view_issues"
	CapTriageIssues        Capability = "triage_issues"
	CapAssignAnyDepartment Capability = "assign_any_department"
	CapManageOrg           Capability = "manage_org"
	CapViewAnalytics       Capability = "view_analytics"
	CapExportData          Capability = "export_data"
)

// Capabilities lists every capability in display order.
var Capabilities = []Capability{
	CapViewIssues,
	CapTriageIssues,
	CapAssignAnyDepartment,
	CapManageOrg,
	CapViewAnalytics,
	CapExportData,
}

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin:    capSet(CapViewIssues, CapTriageIssues, CapAssignAnyDepartment, CapManageOrg, CapViewAnalytics, CapExportData),
	RoleDeptHead: capSet(CapViewIssues, CapTriageIssues, CapAssignAnyDepartment, CapViewAnalytics, CapExportData),
	RoleStaff:    capSet(CapViewIssues, CapTriageIssues, CapViewAnalytics),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}
