// Package course holds the course catalog records returned by the API:
// courses with their instructor, assignments, student queries, announcements
// and enrollments.
package course

import "github.com/darasahq/darasa/core/identity"

type Course struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Code                 string         `json:"code"`
	Description          string         `json:"description,omitempty"`
	Credits              int            `json:"credits"`
	Semester             string         `json:"semester,omitempty"`
	Schedule             string         `json:"schedule,omitempty"`
	EnrolledStudentCount int            `json:"enrolledStudentCount"`
	Instructor           *identity.Ref  `json:"instructor"`
	Assignments          []Assignment   `json:"assignments,omitempty"`
	StudentQueries       []Query        `json:"studentQueries,omitempty"`
	Announcements        []Announcement `json:"announcements,omitempty"`
	Enrollments          []Enrollment   `json:"enrollments,omitempty"`
	CreatedAt            string         `json:"createdAt,omitempty"`
	UpdatedAt            string         `json:"updatedAt,omitempty"`
}

type Assignment struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
	TotalMarks  int    `json:"totalMarks,omitempty"`
	Submissions int    `json:"submissions,omitempty"`
}

// Query is a student's question on a course.
type Query struct {
	ID       string       `json:"id"`
	Subject  string       `json:"subject"`
	Status   string       `json:"status"`
	Priority string       `json:"priority,omitempty"`
	Category string       `json:"category,omitempty"`
	Student  identity.Ref `json:"student,omitempty"`
}

type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Priority  string `json:"priority,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Enrollment struct {
	ID         string       `json:"id"`
	Student    identity.Ref `json:"student"`
	Grade      string       `json:"grade,omitempty"`
	Attendance int          `json:"attendance,omitempty"`
	EnrolledAt string       `json:"enrolledAt,omitempty"`
}
