// Package gqltest is an in-process double of the external Darasa GraphQL
// API, for tests and DEV sandboxes: the HTTP operation set plus a
// graphql-transport-ws subscription endpoint over one in-memory fixture
// store.
package gqltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/websocket"

	"github.com/darasahq/darasa/core/activity"
	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/notify"
	"github.com/darasahq/darasa/core/report"
)

// User is a fixture account.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	Role         string // normalized uppercase role name
	RoleID       string
	BareRole     bool // serialize role as a bare string, as older API versions do
	PasswordHash []byte
}

func (u User) ref() identity.Ref {
	return identity.Ref{ID: u.ID, Name: u.Name}
}

// Claims mirror what the real API puts in its bearer tokens.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Server implements http.Handler: POST /graphql for queries and mutations,
// GET /graphql (websocket upgrade) for subscriptions.
type Server struct {
	app       *echo.Echo
	secretKey []byte

	mu            sync.Mutex
	users         []User
	roles         []identity.RoleRef
	courses       []course.Course
	reports       []report.Report
	notifications []notify.Notification
	activities    []activity.Activity
	subs          map[*wsSession]struct{}
}

func NewServer(secretKey string) *Server {
	s := &Server{
		app:       echo.New(),
		secretKey: []byte(secretKey),
		subs:      make(map[*wsSession]struct{}),
	}
	s.app.HideBanner = true
	s.app.POST("/graphql", s.execute)
	s.app.GET("/graphql", echo.WrapHandler(websocket.Server{
		Handshake: func(cfg *websocket.Config, _ *http.Request) error {
			cfg.Protocol = []string{"graphql-transport-ws"}
			return nil
		},
		Handler: s.handleWS,
	}))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// AddUser registers a fixture account and returns it.
func (s *Server) AddUser(name, username, email, password, role string, bareRole bool) User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	usr := User{
		ID:           uuid.New().String(),
		Name:         name,
		Username:     username,
		Email:        email,
		Role:         role,
		RoleID:       uuid.New().String(),
		BareRole:     bareRole,
		PasswordHash: hash,
	}
	s.mu.Lock()
	for _, r := range s.roles {
		if r.Name == role {
			usr.RoleID = r.ID
			break
		}
	}
	if usr.RoleID == "" || s.roleByID(usr.RoleID) == nil {
		s.roles = append(s.roles, identity.RoleRef{ID: usr.RoleID, Name: role})
	}
	s.users = append(s.users, usr)
	s.mu.Unlock()
	return usr
}

// roleByID looks a role up under s.mu.
func (s *Server) roleByID(id string) *identity.RoleRef {
	for i := range s.roles {
		if s.roles[i].ID == id {
			return &s.roles[i]
		}
	}
	return nil
}

// AddNotification seeds a notification and broadcasts it to open
// NotificationReceived streams.
func (s *Server) AddNotification(usr User, message string) notify.Notification {
	n := notify.Notification{
		ID:        uuid.New().String(),
		User:      usr.ref(),
		Message:   message,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.notifications = append([]notify.Notification{n}, s.notifications...)
	s.mu.Unlock()
	s.broadcast("NotificationReceived", map[string]interface{}{"notificationReceived": n})
	return n
}

// AddActivity seeds an activity and broadcasts it to open NewActivityLogged
// streams.
func (s *Server) AddActivity(usr User, typ, status string) activity.Activity {
	a := activity.Activity{
		ID:        uuid.New().String(),
		User:      usr.ref(),
		Type:      typ,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.activities = append(s.activities, a)
	s.mu.Unlock()
	s.broadcast("NewActivityLogged", map[string]interface{}{"newActivityLogged": a})
	return a
}

// Token signs a bearer token for the fixture user.
func (s *Server) Token(usr User) string {
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.ID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
		Username: usr.Username,
		Role:     usr.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		panic(err)
	}
	return token
}

// GraphQL plumbing

type gqlRequest struct {
	Query         string                     `json:"query"`
	OperationName string                     `json:"operationName"`
	Variables     map[string]json.RawMessage `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

func dataResponse(ctx echo.Context, data map[string]interface{}) error {
	return ctx.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

func errResponse(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusOK, map[string]interface{}{"errors": []gqlError{{Message: msg}}})
}

// userJSON serializes a fixture user the way the API version under test
// would: role as {id, name} or as a bare name string.
func (s *Server) userJSON(usr User) map[string]interface{} {
	out := map[string]interface{}{
		"id":    usr.ID,
		"name":  usr.Name,
		"email": usr.Email,
	}
	if usr.BareRole {
		out["role"] = usr.Role
	} else {
		out["role"] = map[string]interface{}{"id": usr.RoleID, "name": usr.Role}
	}
	return out
}

func (s *Server) execute(ctx echo.Context) error {
	var req gqlRequest
	if err := ctx.Bind(&req); err != nil {
		return errResponse(ctx, "malformed request")
	}

	switch req.OperationName {
	case "Login":
		return s.login(ctx, req)
	case "Register":
		return s.register(ctx, req)
	case "Me":
		return s.me(ctx)
	case "Notifications":
		return s.listNotifications(ctx)
	case "MarkNotificationAsRead":
		return s.markNotificationRead(ctx, req)
	case "Activities":
		return s.listActivities(ctx, req)
	case "LogActivity":
		return s.logActivity(ctx, req)
	case "GetDashboardStats":
		return s.dashboardStats(ctx)
	case "Users":
		return s.listUsers(ctx)
	case "User":
		return s.getUser(ctx, req)
	case "CreateUser":
		return s.createUser(ctx, req)
	case "UpdateUser":
		return s.updateUser(ctx, req)
	case "DeleteUser":
		return s.deleteUser(ctx, req)
	case "Roles":
		return s.listRoles(ctx)
	case "CreateRole":
		return s.createRole(ctx, req)
	case "UpdateRole":
		return s.updateRole(ctx, req)
	case "DeleteRole":
		return s.deleteRole(ctx, req)
	case "Courses":
		return s.listCourses(ctx)
	case "Course":
		return s.getCourse(ctx, req)
	case "CreateCourse":
		return s.createCourse(ctx, req)
	case "UpdateCourse":
		return s.updateCourse(ctx, req)
	case "AssignInstructor":
		return s.assignInstructor(ctx, req)
	case "RemoveInstructor":
		return s.removeInstructor(ctx, req)
	case "Reports":
		return s.listReports(ctx, req)
	case "Report":
		return s.getReport(ctx, req)
	case "CreateReport":
		return s.createReport(ctx, req)
	case "UpdateReport":
		return s.updateReport(ctx, req)
	case "DeleteReport":
		return s.deleteReport(ctx, req)
	default:
		return errResponse(ctx, fmt.Sprintf("unknown operation %q", req.OperationName))
	}
}

func (s *Server) login(ctx echo.Context, req gqlRequest) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, usr := range s.users {
		if usr.Username != input.Username && usr.Email != input.Username {
			continue
		}
		if bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(input.Password)) != nil {
			break
		}
		return dataResponse(ctx, map[string]interface{}{
			"login": map[string]interface{}{"token": s.Token(usr), "user": s.userJSON(usr)},
		})
	}
	return errResponse(ctx, "invalid credentials")
}

func (s *Server) register(ctx echo.Context, req gqlRequest) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}
	if input.Username == "" || input.Password == "" {
		return errResponse(ctx, "username and password are required")
	}

	s.mu.Lock()
	for _, usr := range s.users {
		if usr.Username == input.Username || (usr.Email != "" && usr.Email == input.Email) {
			s.mu.Unlock()
			return errResponse(ctx, "a user with this username already exists")
		}
	}
	s.mu.Unlock()

	usr := s.AddUser(input.Name, input.Username, input.Email, input.Password, identity.RoleStudent, false)
	return dataResponse(ctx, map[string]interface{}{
		"register": map[string]interface{}{"token": s.Token(usr), "user": s.userJSON(usr)},
	})
}

func (s *Server) me(ctx echo.Context) error {
	usr, err := s.authenticate(ctx.Request())
	if err != nil {
		return errResponse(ctx, err.Error())
	}
	return dataResponse(ctx, map[string]interface{}{"me": s.userJSON(usr)})
}

func (s *Server) listNotifications(ctx echo.Context) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	list := make([]notify.Notification, len(s.notifications))
	copy(list, s.notifications)
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"notifications": list})
}

func (s *Server) markNotificationRead(ctx echo.Context, req gqlRequest) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	var id string
	var all bool
	if raw, ok := req.Variables["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	if raw, ok := req.Variables["all"]; ok {
		_ = json.Unmarshal(raw, &all)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var done bool
	for i := range s.notifications {
		if all || s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			done = true
		}
	}
	return dataResponse(ctx, map[string]interface{}{"markNotificationAsRead": done})
}

func (s *Server) listActivities(ctx echo.Context, req gqlRequest) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	var userID, status string
	var limit int
	if raw, ok := req.Variables["userId"]; ok {
		_ = json.Unmarshal(raw, &userID)
	}
	if raw, ok := req.Variables["status"]; ok {
		_ = json.Unmarshal(raw, &status)
	}
	if raw, ok := req.Variables["limit"]; ok {
		_ = json.Unmarshal(raw, &limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]activity.Activity, 0, len(s.activities))
	for _, a := range s.activities {
		if userID != "" && a.User.ID != userID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		list = append(list, a)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return dataResponse(ctx, map[string]interface{}{"activities": list})
}

func (s *Server) logActivity(ctx echo.Context, req gqlRequest) error {
	usr, err := s.authenticate(ctx.Request())
	if err != nil {
		return errResponse(ctx, err.Error())
	}
	var input struct {
		Type     string          `json:"type"`
		Status   string          `json:"status"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}
	if input.Status == "" {
		input.Status = "Pending"
	}

	a := activity.Activity{
		ID:        uuid.New().String(),
		User:      usr.ref(),
		Type:      input.Type,
		Status:    input.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata:  input.Metadata,
	}
	s.mu.Lock()
	s.activities = append(s.activities, a)
	s.mu.Unlock()
	s.broadcast("NewActivityLogged", map[string]interface{}{"newActivityLogged": a})
	return dataResponse(ctx, map[string]interface{}{"logActivity": a})
}

func (s *Server) dashboardStats(ctx echo.Context) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := activity.Stats{TotalActivities: len(s.activities)}
	counts := make(map[string]int)
	for _, a := range s.activities {
		switch a.Status {
		case "Completed":
			stats.CompletedActivities++
		case "Pending":
			stats.PendingActivities++
		}
		counts[a.Type]++
	}
	for typ, n := range counts {
		stats.PerType = append(stats.PerType, activity.TypeCount{Type: typ, Count: n})
	}
	return dataResponse(ctx, map[string]interface{}{"getDashboardStats": stats})
}

func (s *Server) authenticate(r *http.Request) (User, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") || header == "Bearer " {
		return User{}, fmt.Errorf("not authenticated")
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return User{}, fmt.Errorf("invalid or expired token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, usr := range s.users {
		if usr.ID == claims.Subject {
			return usr, nil
		}
	}
	return User{}, fmt.Errorf("user not found")
}

// Subscription transport

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// wsSession is one connected subscriber.
type wsSession struct {
	conn *websocket.Conn

	mu  sync.Mutex        // serializes writes; broadcasts race the read loop replies
	ops map[string]string // subscription id -> operation name
}

func (sess *wsSession) send(msg wsMessage) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return websocket.JSON.Send(sess.conn, msg)
}

func (s *Server) handleWS(conn *websocket.Conn) {
	defer conn.Close() //nolint:errcheck

	var init wsMessage
	if err := websocket.JSON.Receive(conn, &init); err != nil || init.Type != "connection_init" {
		return
	}
	sess := &wsSession{conn: conn, ops: make(map[string]string)}
	if err := sess.send(wsMessage{Type: "connection_ack"}); err != nil {
		return
	}

	s.mu.Lock()
	s.subs[sess] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, sess)
		s.mu.Unlock()
	}()

	for {
		var msg wsMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return
		}
		switch msg.Type {
		case "subscribe":
			var payload struct {
				OperationName string `json:"operationName"`
			}
			_ = json.Unmarshal(msg.Payload, &payload)
			sess.mu.Lock()
			sess.ops[msg.ID] = payload.OperationName
			sess.mu.Unlock()
		case "complete":
			sess.mu.Lock()
			delete(sess.ops, msg.ID)
			sess.mu.Unlock()
		case "ping":
			_ = sess.send(wsMessage{Type: "pong"})
		}
	}
}

// broadcast pushes a next frame to every stream subscribed to op.
func (s *Server) broadcast(op string, data map[string]interface{}) {
	payload, err := json.Marshal(map[string]interface{}{"data": data})
	if err != nil {
		return
	}

	s.mu.Lock()
	sessions := make([]*wsSession, 0, len(s.subs))
	for sess := range s.subs {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		ids := make([]string, 0, len(sess.ops))
		for id, name := range sess.ops {
			if name == op {
				ids = append(ids, id)
			}
		}
		sess.mu.Unlock()
		for _, id := range ids {
			_ = sess.send(wsMessage{ID: id, Type: "next", Payload: payload})
		}
	}
}
