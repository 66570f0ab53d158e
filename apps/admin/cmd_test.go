package main

import (
	"bytes"
	"io/ioutil"
	"log"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/services/graphql"
	"github.com/darasahq/darasa/services/graphql/gqltest"
	logsvc "github.com/darasahq/darasa/services/logger"
	"github.com/darasahq/darasa/storage/credfile"
)

func newTestCLI(t *testing.T) (*gqltest.Server, *commandLine, *bytes.Buffer) {
	t.Helper()

	api := gqltest.NewServer("secret")
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := credfile.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	client := graphql.NewClient(graphql.Options{
		URL:             srv.URL + "/graphql",
		SubscriptionURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/graphql",
		Store:           store,
	})

	validate := validator.New()
	core.InitValidators(validate, newTranslator())

	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
	sess := session.NewManager(store, client, validate, logger)

	out := &bytes.Buffer{}
	return api, &commandLine{sess: sess, api: client, out: out}, out
}

func withPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func TestCLI_usage(t *testing.T) {
	_, cli, out := newTestCLI(t)

	err := cli.run([]string{"admin"})
	assert.Equal(t, errHelp, err)
	assert.Contains(t, out.String(), "Usage:")

	out.Reset()
	err = cli.run([]string{"admin", "nonsense"})
	assert.Equal(t, errHelp, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestCLI_login(t *testing.T) {
	api, cli, out := newTestCLI(t)
	api.AddUser("Admin User", "admin", "admin@darasa.io", "admin123", identity.RoleAdmin, false)
	withPassword(t, "admin123")

	err := cli.run([]string{"admin", "login", "-username", "admin"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	assert.Contains(t, out.String(), "Signed in as Admin User (ADMIN)")
	assert.True(t, cli.sess.State().Authenticated())
}

func TestCLI_login_badPassword(t *testing.T) {
	api, cli, out := newTestCLI(t)
	api.AddUser("Admin User", "admin", "", "admin123", identity.RoleAdmin, false)
	withPassword(t, "nope")

	err := cli.run([]string{"admin", "login", "-username", "admin"})
	assert.Error(t, err)
	assert.Contains(t, out.String(), "invalid credentials")
	assert.False(t, cli.sess.State().Authenticated())
}

func TestCLI_login_missingUsername(t *testing.T) {
	_, cli, _ := newTestCLI(t)
	withPassword(t, "pwd")

	err := cli.run([]string{"admin", "login"})
	assert.Equal(t, errHelp, err)
}

func TestCLI_logout(t *testing.T) {
	api, cli, out := newTestCLI(t)
	api.AddUser("Admin User", "admin", "", "admin123", identity.RoleAdmin, false)
	withPassword(t, "admin123")

	if err := cli.run([]string{"admin", "login", "-username", "admin"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	err := cli.run([]string{"admin", "logout"})
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	assert.Contains(t, out.String(), "Signed out")
	assert.False(t, cli.sess.State().Authenticated())
}

func TestCLI_whoami(t *testing.T) {
	api, cli, out := newTestCLI(t)
	api.AddUser("Teacher", "teach", "teach@darasa.io", "pwd123", identity.RoleInstructor, false)
	withPassword(t, "pwd123")

	// unauthenticated
	err := cli.run([]string{"admin", "whoami"})
	assert.Equal(t, session.ErrNotAuthenticated, err)

	if err := cli.run([]string{"admin", "login", "-username", "teach"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out.Reset()

	err = cli.run([]string{"admin", "whoami"})
	if err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	got := out.String()
	assert.Contains(t, got, "Teacher <teach@darasa.io>")
	assert.Contains(t, got, "Role: INSTRUCTOR")
	assert.Contains(t, got, "/admin/my-courses")
	assert.NotContains(t, got, "/admin/roles")
}

func TestCLI_activities(t *testing.T) {
	api, cli, out := newTestCLI(t)
	usr := api.AddUser("Teacher", "teach", "", "pwd123", identity.RoleInstructor, false)
	withPassword(t, "pwd123")
	api.AddActivity(usr, "MDB Reply", "Completed")
	api.AddActivity(usr, "Assignment Upload", "Pending")

	if err := cli.run([]string{"admin", "login", "-username", "teach"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out.Reset()

	err := cli.run([]string{"admin", "activities", "-status", "Pending"})
	if err != nil {
		t.Fatalf("activities failed: %v", err)
	}
	got := out.String()
	assert.Contains(t, got, "Assignment Upload")
	assert.NotContains(t, got, "MDB Reply")
}

func TestCLI_stats(t *testing.T) {
	api, cli, out := newTestCLI(t)
	usr := api.AddUser("Teacher", "teach", "", "pwd123", identity.RoleInstructor, false)
	withPassword(t, "pwd123")
	api.AddActivity(usr, "MDB Reply", "Completed")
	api.AddActivity(usr, "Ticket Response", "Pending")

	if err := cli.run([]string{"admin", "login", "-username", "teach"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out.Reset()

	err := cli.run([]string{"admin", "stats"})
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	got := out.String()
	assert.Contains(t, got, "Activities: 2 total, 1 completed, 1 pending")
	assert.Contains(t, got, "MDB Reply")
	assert.Contains(t, got, "Ticket Response")
}

func TestCLI_users(t *testing.T) {
	api, cli, out := newTestCLI(t)
	api.AddUser("Admin User", "admin", "admin@darasa.io", "admin123", identity.RoleAdmin, false)
	api.AddUser("Teacher", "teach", "teach@darasa.io", "pwd123", identity.RoleInstructor, false)
	withPassword(t, "admin123")

	// unauthenticated
	err := cli.run([]string{"admin", "users"})
	assert.Equal(t, session.ErrNotAuthenticated, err)

	if err := cli.run([]string{"admin", "login", "-username", "admin"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out.Reset()

	err = cli.run([]string{"admin", "users"})
	if err != nil {
		t.Fatalf("users failed: %v", err)
	}
	got := out.String()
	assert.Contains(t, got, "admin@darasa.io")
	assert.Contains(t, got, "teach@darasa.io")
	assert.Contains(t, got, "INSTRUCTOR")

	out.Reset()
	err = cli.run([]string{"admin", "roles"})
	if err != nil {
		t.Fatalf("roles failed: %v", err)
	}
	got = out.String()
	assert.Contains(t, got, "ADMIN")
	assert.Contains(t, got, "INSTRUCTOR")
}

func TestCLI_courses(t *testing.T) {
	api, cli, out := newTestCLI(t)
	api.AddUser("Admin User", "admin", "admin@darasa.io", "admin123", identity.RoleAdmin, false)
	teacher := api.AddUser("Teacher", "teach", "teach@darasa.io", "pwd123", identity.RoleInstructor, false)
	api.AddCourse("Algorithms", "CS-301", &teacher)
	api.AddCourse("Databases", "CS-302", nil)
	withPassword(t, "admin123")

	if err := cli.run([]string{"admin", "login", "-username", "admin"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out.Reset()

	err := cli.run([]string{"admin", "courses"})
	if err != nil {
		t.Fatalf("courses failed: %v", err)
	}
	got := out.String()
	assert.Contains(t, got, "CS-301")
	assert.Contains(t, got, "Teacher")
	assert.Contains(t, got, "unassigned")
}

func TestCLI_reports(t *testing.T) {
	api, cli, out := newTestCLI(t)
	admin := api.AddUser("Admin User", "admin", "admin@darasa.io", "admin123", identity.RoleAdmin, false)
	teacher := api.AddUser("Teacher", "teach", "teach@darasa.io", "pwd123", identity.RoleInstructor, false)
	api.AddReport(teacher, "Attendance", "2026-08-01", "2026-08-31")
	api.AddReport(admin, "Performance", "2026-08-01", "2026-08-31")
	withPassword(t, "admin123")

	if err := cli.run([]string{"admin", "login", "-username", "admin"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	out.Reset()

	err := cli.run([]string{"admin", "reports", "-user", teacher.ID})
	if err != nil {
		t.Fatalf("reports failed: %v", err)
	}
	got := out.String()
	assert.Contains(t, got, "Attendance")
	assert.Contains(t, got, "Attendance report for Teacher")
	assert.NotContains(t, got, "Performance")
}
