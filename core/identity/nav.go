package identity

// NavItem is a sidebar entry of the admin panel.
type NavItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var (
	// items visible to everyone
	commonNav = []NavItem{
		{Key: "/admin", Label: "Dashboard"},
	}

	studentNav = []NavItem{
		{Key: "/admin/my-enrollments", Label: "My Enrollments"},
		{Key: "/admin/my-queries", Label: "My Queries"},
	}

	instructorNav = []NavItem{
		{Key: "/admin/my-courses", Label: "My Courses"},
		{Key: "/admin/queries", Label: "Student Queries"},
		{Key: "/admin/assignments", Label: "Assignments"},
		{Key: "/admin/enrollments", Label: "Enrollments"},
		{Key: "/admin/announcements", Label: "Announcements"},
		{Key: "/admin/activities", Label: "Activities"},
		{Key: "/admin/reports", Label: "Reports"},
	}

	adminNav = []NavItem{
		{Key: "/admin/courses", Label: "Courses"},
		{Key: "/admin/users", Label: "Users"},
		{Key: "/admin/roles", Label: "Roles"},
	}
)

// NavItems builds the sidebar entries visible to the given normalized role.
// Admins see everything: instructor features + student features + admin features.
// Role differentiation happens here, not at the routing layer.
func NavItems(role string) []NavItem {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		items := make([]NavItem, 0, len(commonNav)+len(instructorNav)+len(studentNav)+len(adminNav))
		items = append(items, commonNav...)
		items = append(items, instructorNav...)
		items = append(items, studentNav...)
		items = append(items, adminNav...)
		return items
	case RoleInstructor:
		return append(append([]NavItem{}, commonNav...), instructorNav...)
	case RoleStudent:
		return append(append([]NavItem{}, commonNav...), studentNav...)
	default: // VIEWER or unknown
		return append([]NavItem{}, commonNav...)
	}
}
