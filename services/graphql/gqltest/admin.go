package gqltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/report"
)

// requireAdmin authenticates the request and checks for an admin-level role.
func (s *Server) requireAdmin(r *http.Request) (User, error) {
	usr, err := s.authenticate(r)
	if err != nil {
		return User{}, err
	}
	if identity.RolePriority(usr.Role) < identity.RolePriority(identity.RoleAdmin) {
		return User{}, fmt.Errorf("permission denied")
	}
	return usr, nil
}

func stringVar(req gqlRequest, name string) string {
	var s string
	if raw, ok := req.Variables[name]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// Users

func (s *Server) listUsers(ctx echo.Context) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	out := make([]map[string]interface{}, 0, len(s.users))
	for _, usr := range s.users {
		out = append(out, s.userJSON(usr))
	}
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"users": out})
}

func (s *Server) getUser(ctx echo.Context, req gqlRequest) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, usr := range s.users {
		if usr.ID == id {
			return dataResponse(ctx, map[string]interface{}{"user": s.userJSON(usr)})
		}
	}
	return errResponse(ctx, "user not found")
}

func (s *Server) createUser(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		RoleName string `json:"roleName"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}
	if input.Name == "" || input.Email == "" {
		return errResponse(ctx, "name and email are required")
	}

	s.mu.Lock()
	for _, usr := range s.users {
		if usr.Email == input.Email {
			s.mu.Unlock()
			return errResponse(ctx, "a user with this email already exists")
		}
	}
	s.mu.Unlock()

	username := strings.SplitN(input.Email, "@", 2)[0]
	role := strings.ToUpper(strings.TrimSpace(input.RoleName))
	usr := s.AddUser(input.Name, username, input.Email, input.Password, role, false)
	return dataResponse(ctx, map[string]interface{}{"createUser": s.userJSON(usr)})
}

func (s *Server) updateUser(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		RoleName string `json:"roleName"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		if input.Name != "" {
			s.users[i].Name = input.Name
		}
		if input.Email != "" {
			s.users[i].Email = input.Email
		}
		if input.RoleName != "" {
			s.users[i].Role = strings.ToUpper(strings.TrimSpace(input.RoleName))
		}
		return dataResponse(ctx, map[string]interface{}{"updateUser": s.userJSON(s.users[i])})
	}
	return errResponse(ctx, "user not found")
}

func (s *Server) deleteUser(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	s.mu.Lock()
	kept := s.users[:0]
	for _, usr := range s.users {
		if usr.ID != id {
			kept = append(kept, usr)
		}
	}
	s.users = kept
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"deleteUser": true})
}

// Roles

func (s *Server) listRoles(ctx echo.Context) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	list := make([]identity.RoleRef, len(s.roles))
	copy(list, s.roles)
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"roles": list})
}

func (s *Server) createRole(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	name := strings.ToUpper(strings.TrimSpace(stringVar(req, "name")))
	if name == "" {
		return errResponse(ctx, "name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == name {
			return errResponse(ctx, "a role with this name already exists")
		}
	}
	role := identity.RoleRef{ID: uuid.New().String(), Name: name}
	s.roles = append(s.roles, role)
	return dataResponse(ctx, map[string]interface{}{"createRole": role})
}

func (s *Server) updateRole(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	name := strings.ToUpper(strings.TrimSpace(stringVar(req, "name")))
	s.mu.Lock()
	defer s.mu.Unlock()
	role := s.roleByID(id)
	if role == nil {
		return errResponse(ctx, "role not found")
	}
	role.Name = name
	return dataResponse(ctx, map[string]interface{}{"updateRole": *role})
}

func (s *Server) deleteRole(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	s.mu.Lock()
	kept := s.roles[:0]
	for _, r := range s.roles {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.roles = kept
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"deleteRole": true})
}

// Courses

// AddCourse seeds a course fixture.
func (s *Server) AddCourse(title, code string, instructor *User) course.Course {
	now := time.Now().UTC().Format(time.RFC3339)
	c := course.Course{
		ID:        uuid.New().String(),
		Title:     title,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if instructor != nil {
		ref := identity.Ref{ID: instructor.ID, Name: instructor.Name, Email: instructor.Email}
		c.Instructor = &ref
	}
	s.mu.Lock()
	s.courses = append(s.courses, c)
	s.mu.Unlock()
	return c
}

// courseByID looks a course up under s.mu.
func (s *Server) courseByID(id string) *course.Course {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return &s.courses[i]
		}
	}
	return nil
}

func (s *Server) listCourses(ctx echo.Context) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	list := make([]course.Course, len(s.courses))
	copy(list, s.courses)
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"courses": list})
}

func (s *Server) getCourse(ctx echo.Context, req gqlRequest) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.courseByID(stringVar(req, "id"))
	if c == nil {
		return errResponse(ctx, "course not found")
	}
	return dataResponse(ctx, map[string]interface{}{"course": *c})
}

func (s *Server) createCourse(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	var input struct {
		Title        string `json:"title"`
		Code         string `json:"code"`
		Description  string `json:"description"`
		Credits      int    `json:"credits"`
		Semester     string `json:"semester"`
		Schedule     string `json:"schedule"`
		InstructorID string `json:"instructorId"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}
	if input.Title == "" || input.Code == "" {
		return errResponse(ctx, "title and code are required")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	c := course.Course{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Code:        input.Code,
		Description: input.Description,
		Credits:     input.Credits,
		Semester:    input.Semester,
		Schedule:    input.Schedule,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	if input.InstructorID != "" {
		for _, usr := range s.users {
			if usr.ID == input.InstructorID {
				ref := identity.Ref{ID: usr.ID, Name: usr.Name, Email: usr.Email}
				c.Instructor = &ref
				break
			}
		}
	}
	s.courses = append(s.courses, c)
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"createCourse": c})
}

func (s *Server) updateCourse(ctx echo.Context, req gqlRequest) error {
	usr, err := s.authenticate(ctx.Request())
	if err != nil {
		return errResponse(ctx, err.Error())
	}
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Credits     int    `json:"credits"`
		Semester    string `json:"semester"`
		Schedule    string `json:"schedule"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.courseByID(stringVar(req, "id"))
	if c == nil {
		return errResponse(ctx, "course not found")
	}
	// instructors may only change their own courses
	isAdmin := identity.RolePriority(usr.Role) >= identity.RolePriority(identity.RoleAdmin)
	if !isAdmin && (c.Instructor == nil || c.Instructor.ID != usr.ID) {
		return errResponse(ctx, "permission denied")
	}
	if input.Title != "" {
		c.Title = input.Title
	}
	if input.Description != "" {
		c.Description = input.Description
	}
	if input.Credits != 0 {
		c.Credits = input.Credits
	}
	if input.Semester != "" {
		c.Semester = input.Semester
	}
	if input.Schedule != "" {
		c.Schedule = input.Schedule
	}
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return dataResponse(ctx, map[string]interface{}{"updateCourse": *c})
}

func (s *Server) assignInstructor(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.courseByID(stringVar(req, "courseId"))
	if c == nil {
		return errResponse(ctx, "course not found")
	}
	instructorID := stringVar(req, "instructorId")
	for _, usr := range s.users {
		if usr.ID == instructorID {
			ref := identity.Ref{ID: usr.ID, Name: usr.Name, Email: usr.Email}
			c.Instructor = &ref
			c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			return dataResponse(ctx, map[string]interface{}{"assignInstructor": *c})
		}
	}
	return errResponse(ctx, "instructor not found")
}

func (s *Server) removeInstructor(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.courseByID(stringVar(req, "courseId"))
	if c == nil {
		return errResponse(ctx, "course not found")
	}
	c.Instructor = nil
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return dataResponse(ctx, map[string]interface{}{"removeInstructor": *c})
}

// Reports

// AddReport seeds a report fixture.
func (s *Server) AddReport(usr User, typ, startDate, endDate string) report.Report {
	r := report.Report{
		ID:        uuid.New().String(),
		User:      usr.ref(),
		StartDate: startDate,
		EndDate:   endDate,
		Type:      typ,
		Content:   fmt.Sprintf("%s report for %s", typ, usr.Name),
	}
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	return r
}

func (s *Server) listReports(ctx echo.Context, req gqlRequest) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	userID := stringVar(req, "userId")
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]report.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if userID != "" && r.User.ID != userID {
			continue
		}
		list = append(list, r)
	}
	return dataResponse(ctx, map[string]interface{}{"reports": list})
}

func (s *Server) getReport(ctx echo.Context, req gqlRequest) error {
	if _, err := s.authenticate(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ID == id {
			return dataResponse(ctx, map[string]interface{}{"report": r})
		}
	}
	return errResponse(ctx, "report not found")
}

func (s *Server) createReport(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	var input struct {
		UserID    string `json:"userId"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Type      string `json:"type"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}

	s.mu.Lock()
	var subject *User
	for i := range s.users {
		if s.users[i].ID == input.UserID {
			subject = &s.users[i]
			break
		}
	}
	s.mu.Unlock()
	if subject == nil {
		return errResponse(ctx, "user not found")
	}

	r := s.AddReport(*subject, input.Type, input.StartDate, input.EndDate)
	return dataResponse(ctx, map[string]interface{}{"createReport": r})
}

func (s *Server) updateReport(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	var input struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Type      string `json:"type"`
	}
	if raw, ok := req.Variables["input"]; ok {
		_ = json.Unmarshal(raw, &input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID != id {
			continue
		}
		if input.StartDate != "" {
			s.reports[i].StartDate = input.StartDate
		}
		if input.EndDate != "" {
			s.reports[i].EndDate = input.EndDate
		}
		if input.Type != "" {
			s.reports[i].Type = input.Type
		}
		return dataResponse(ctx, map[string]interface{}{"updateReport": s.reports[i]})
	}
	return errResponse(ctx, "report not found")
}

func (s *Server) deleteReport(ctx echo.Context, req gqlRequest) error {
	if _, err := s.requireAdmin(ctx.Request()); err != nil {
		return errResponse(ctx, err.Error())
	}
	id := stringVar(req, "id")
	s.mu.Lock()
	kept := s.reports[:0]
	for _, r := range s.reports {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.reports = kept
	s.mu.Unlock()
	return dataResponse(ctx, map[string]interface{}{"deleteReport": map[string]string{"id": id}})
}
