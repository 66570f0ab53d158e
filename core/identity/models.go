package identity

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/darasahq/darasa/core"
)

// Roles
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
	RoleStudent    = "STUDENT"
	RoleViewer     = "VIEWER"
)

var (
	AllRoles = []string{RoleSuperAdmin, RoleAdmin, RoleInstructor, RoleStudent, RoleViewer}

	// Role hierarchy as defined by the API:
	// SUPER_ADMIN (4) / ADMIN (3) -> everything
	// INSTRUCTOR (2)              -> own courses, activities, reports, student queries
	// STUDENT (1)                 -> enrolled courses, submit queries
	// VIEWER (1)                  -> read-only dashboard
	rolePriorities = map[string]int{
		RoleSuperAdmin: 4,
		RoleAdmin:      3,
		RoleInstructor: 2,
		RoleStudent:    1,
		RoleViewer:     1,
	}
)

// RolePriority returns the hierarchy level of a normalized role name.
// An unknown or missing role has priority 0: no elevated access.
func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsKnownRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

// RoleRef is a user's role as returned by the API. Older API versions return
// a bare role name string while newer ones return a {id, name} object; both
// shapes are accepted and the name is normalized to uppercase on ingestion so
// every downstream consumer sees one canonical form.
type RoleRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func (r *RoleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RoleRef{}
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = RoleRef{Name: name}
		r.normalize()
		return nil
	}

	type roleRef RoleRef // drop methods to avoid recursion
	var ref roleRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*r = RoleRef(ref)
	r.normalize()
	return nil
}

func (r *RoleRef) normalize() {
	r.Name = normalizeRoleName(r.Name)
}

func normalizeRoleName(name string) string {
	return strings.ToUpper(core.CleanString(name))
}

// Identity is the authenticated user's profile data and role.
type Identity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email,omitempty"`
	Username string  `json:"username,omitempty"`
	Role     RoleRef `json:"role"`
}

// Ref points at a user embedded in another record (notification, activity).
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// RoleName returns the canonical uppercase role name, "" when none.
func (usr Identity) RoleName() string { return usr.Role.Name }

func (usr Identity) IsAdmin() bool {
	return RolePriority(usr.RoleName()) >= rolePriorities[RoleAdmin]
}

func (usr Identity) IsInstructor() bool { return usr.RoleName() == RoleInstructor }

func (usr Identity) IsStudent() bool { return usr.RoleName() == RoleStudent }
