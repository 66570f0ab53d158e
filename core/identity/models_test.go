package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want RoleRef
	}{
		{"object shape", `{"id":"r1","name":"INSTRUCTOR"}`, RoleRef{ID: "r1", Name: "INSTRUCTOR"}},
		{"bare string shape", `"INSTRUCTOR"`, RoleRef{Name: "INSTRUCTOR"}},
		{"lowercase is normalized", `"instructor"`, RoleRef{Name: "INSTRUCTOR"}},
		{"object lowercase is normalized", `{"name":"admin"}`, RoleRef{Name: "ADMIN"}},
		{"surrounding whitespace", `" admin "`, RoleRef{Name: "ADMIN"}},
		{"null", `null`, RoleRef{}},
		{"empty object", `{}`, RoleRef{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref RoleRef
			if err := json.Unmarshal([]byte(tt.data), &ref); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			assert.Equal(t, tt.want, ref)
		})
	}
}

// Both historical role shapes must normalize to the same canonical string
// used for menu-item selection.
func TestRoleRef_shapesConverge(t *testing.T) {
	var fromObj, fromStr Identity
	if err := json.Unmarshal([]byte(`{"id":"1","name":"A","role":{"name":"INSTRUCTOR"}}`), &fromObj); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"id":"1","name":"A","role":"INSTRUCTOR"}`), &fromStr); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	assert.Equal(t, fromObj.RoleName(), fromStr.RoleName())
	assert.Equal(t, NavItems(fromObj.RoleName()), NavItems(fromStr.RoleName()))
}

func TestRolePriority(t *testing.T) {
	assert.Equal(t, 4, RolePriority(RoleSuperAdmin))
	assert.Equal(t, 3, RolePriority(RoleAdmin))
	assert.Equal(t, 2, RolePriority(RoleInstructor))
	assert.Equal(t, 1, RolePriority(RoleStudent))
	assert.Equal(t, 1, RolePriority(RoleViewer))

	// unknown or missing roles get no elevated access
	assert.Equal(t, 0, RolePriority(""))
	assert.Equal(t, 0, RolePriority("JANITOR"))
	// comparison is case-sensitive post-normalization
	assert.Equal(t, 0, RolePriority("admin"))
}

func TestIdentity_IsAdmin(t *testing.T) {
	assert.True(t, Identity{Role: RoleRef{Name: RoleSuperAdmin}}.IsAdmin())
	assert.True(t, Identity{Role: RoleRef{Name: RoleAdmin}}.IsAdmin())
	assert.False(t, Identity{Role: RoleRef{Name: RoleInstructor}}.IsAdmin())
	assert.False(t, Identity{}.IsAdmin())
}
