package graphql_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/services/graphql"
	"github.com/darasahq/darasa/services/graphql/gqltest"
	"github.com/darasahq/darasa/storage/credmem"
	testutil "github.com/darasahq/darasa/tests"
)

func setup(t *testing.T) (*gqltest.Server, *graphql.Client, *credmem.Store) {
	t.Helper()
	api := gqltest.NewServer("secret")
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := credmem.NewStore()
	client := graphql.NewClient(graphql.Options{
		URL:             srv.URL + "/graphql",
		SubscriptionURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/graphql",
		Store:           store,
	})
	return api, client, store
}

func signIn(t *testing.T, api *gqltest.Server, store *credmem.Store, usr gqltest.User) {
	t.Helper()
	rec := identity.Identity{ID: usr.ID, Name: usr.Name, Email: usr.Email, Role: identity.RoleRef{Name: usr.Role}}
	if err := store.Write(rec, api.Token(usr)); err != nil {
		t.Fatalf("signIn() failed: %v", err)
	}
}

func TestClient_Authenticate(t *testing.T) {
	api, client, _ := setup(t)
	api.AddUser("Admin User", "admin", "admin@darasa.io", "admin123", identity.RoleAdmin, false)

	usr, token, err := client.Authenticate(context.Background(), session.Credentials{
		Username: "admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	assert.NotEmpty(t, token)
	assert.Equal(t, "Admin User", usr.Name)
	assert.Equal(t, identity.RoleAdmin, usr.RoleName())
}

// Clients of different vintages receive the role as an object or as a bare
// string; both must come out of authentication with the same canonical role.
func TestClient_Authenticate_roleShapes(t *testing.T) {
	api, client, _ := setup(t)
	api.AddUser("Obj Role", "objrole", "", "pwd123", identity.RoleInstructor, false)
	api.AddUser("Bare Role", "barerole", "", "pwd123", identity.RoleInstructor, true)

	fromObj, _, err := client.Authenticate(context.Background(), session.Credentials{Username: "objrole", Password: "pwd123"})
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}
	fromBare, _, err := client.Authenticate(context.Background(), session.Credentials{Username: "barerole", Password: "pwd123"})
	if err != nil {
		t.Fatalf("Authenticate() failed: %v", err)
	}

	assert.Equal(t, identity.RoleInstructor, fromObj.RoleName())
	assert.Equal(t, fromObj.RoleName(), fromBare.RoleName(),
		"role shapes diverged:\n%s", testutil.JSONDiff(t, fromObj.Role, fromBare.Role))
}

func TestClient_Authenticate_rejected(t *testing.T) {
	api, client, _ := setup(t)
	api.AddUser("Admin User", "admin", "", "admin123", identity.RoleAdmin, false)

	_, _, err := client.Authenticate(context.Background(), session.Credentials{
		Username: "admin",
		Password: "wrong",
	})
	assert.Error(t, err)

	vErr, ok := err.(*core.ValidationError)
	if assert.True(t, ok, "want a displayable validation error, got %T", err) {
		assert.Equal(t, "invalid credentials", vErr.Error())
	}
}

func TestClient_Me(t *testing.T) {
	api, client, store := setup(t)
	usr := api.AddUser("Admin User", "admin", "admin@darasa.io", "admin123", identity.RoleAdmin, false)

	// unauthenticated calls go out without credentials and the server rejects them
	_, err := client.Me(context.Background())
	assert.Error(t, err)

	// the binder reads the store directly: no in-memory session needed
	signIn(t, api, store, usr)
	me, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() failed: %v", err)
	}
	assert.Equal(t, usr.ID, me.ID)
	assert.Equal(t, identity.RoleAdmin, me.RoleName())
}

func TestClient_Register(t *testing.T) {
	_, client, _ := setup(t)

	usr, token, err := client.Register(context.Background(), graphql.RegisterInput{
		Name:     "New Student",
		Email:    "student@darasa.io",
		Username: "student1",
		Password: "pwd123",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	assert.NotEmpty(t, token)
	assert.Equal(t, identity.RoleStudent, usr.RoleName())

	// duplicate username is rejected by the API
	_, _, err = client.Register(context.Background(), graphql.RegisterInput{
		Name: "Dup", Email: "other@darasa.io", Username: "student1", Password: "pwd123",
	})
	assert.Error(t, err)
}

func TestClient_Notifications(t *testing.T) {
	api, client, store := setup(t)
	usr := api.AddUser("Admin User", "admin", "", "admin123", identity.RoleAdmin, false)
	signIn(t, api, store, usr)

	first := api.AddNotification(usr, "Assignment graded")
	api.AddNotification(usr, "New enrollment")

	list, err := client.Notifications(context.Background())
	if err != nil {
		t.Fatalf("Notifications() failed: %v", err)
	}
	assert.Len(t, list, 2)

	done, err := client.MarkNotificationRead(context.Background(), first.ID, false)
	if err != nil {
		t.Fatalf("MarkNotificationRead() failed: %v", err)
	}
	assert.True(t, done)

	list, err = client.Notifications(context.Background())
	if err != nil {
		t.Fatalf("Notifications() failed: %v", err)
	}
	var read int
	for _, n := range list {
		if n.IsRead {
			read++
		}
	}
	assert.Equal(t, 1, read)

	done, err = client.MarkNotificationRead(context.Background(), "", true)
	if err != nil {
		t.Fatalf("MarkNotificationRead() failed: %v", err)
	}
	assert.True(t, done)
}

func TestClient_Activities(t *testing.T) {
	api, client, store := setup(t)
	usr := api.AddUser("Instructor", "teach", "", "pwd123", identity.RoleInstructor, false)
	other := api.AddUser("Other", "other1", "", "pwd123", identity.RoleInstructor, false)
	signIn(t, api, store, usr)

	api.AddActivity(usr, "MDB Reply", "Completed")
	api.AddActivity(usr, "Assignment Upload", "Pending")
	api.AddActivity(other, "Ticket Response", "Pending")

	list, err := client.Activities(context.Background(), graphql.ActivityFilter{UserID: usr.ID})
	if err != nil {
		t.Fatalf("Activities() failed: %v", err)
	}
	assert.Len(t, list, 2)

	list, err = client.Activities(context.Background(), graphql.ActivityFilter{Status: "Pending"})
	if err != nil {
		t.Fatalf("Activities() failed: %v", err)
	}
	assert.Len(t, list, 2)

	list, err = client.Activities(context.Background(), graphql.ActivityFilter{Limit: 1})
	if err != nil {
		t.Fatalf("Activities() failed: %v", err)
	}
	assert.Len(t, list, 1)
}

func TestClient_LogActivityAndStats(t *testing.T) {
	api, client, store := setup(t)
	usr := api.AddUser("Instructor", "teach", "", "pwd123", identity.RoleInstructor, false)
	signIn(t, api, store, usr)

	logged, err := client.LogActivity(context.Background(), graphql.LogActivityInput{
		Type:     "MDB Reply",
		Metadata: map[string]interface{}{"note": "sample"},
	})
	if err != nil {
		t.Fatalf("LogActivity() failed: %v", err)
	}
	assert.NotEmpty(t, logged.ID)
	assert.Equal(t, "Pending", logged.Status)
	assert.Equal(t, usr.ID, logged.User.ID)

	api.AddActivity(usr, "Ticket Response", "Completed")

	stats, err := client.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats() failed: %v", err)
	}
	assert.Equal(t, 2, stats.TotalActivities)
	assert.Equal(t, 1, stats.CompletedActivities)
	assert.Equal(t, 1, stats.PendingActivities)
	assert.Len(t, stats.PerType, 2)
}
