package graphql

import (
	"context"

	"github.com/darasahq/darasa/core/course"
)

// Course catalog operations.
const (
	coursesDoc = `query Courses {
  courses {
    id title code description credits semester schedule enrolledStudentCount
    instructor { id name email }
    assignments { id title status dueDate }
    studentQueries { id subject status priority }
    announcements { id title priority }
    enrollments { id student { name } grade attendance }
    createdAt updatedAt
  }
}`

	courseDoc = `query Course($id: ID!) {
  course(id: $id) {
    id title code description credits semester schedule enrolledStudentCount
    instructor { id name email }
    assignments { id title status dueDate totalMarks submissions }
    studentQueries { id subject status priority category student { name } }
    announcements { id title content priority createdAt }
    enrollments { id student { name } grade attendance enrolledAt }
    createdAt updatedAt
  }
}`

	createCourseDoc = `mutation CreateCourse($input: CreateCourseInput!) {
  createCourse(input: $input) {
    id title code credits semester schedule instructor { id name } createdAt
  }
}`

	updateCourseDoc = `mutation UpdateCourse($id: ID!, $input: UpdateCourseInput!) {
  updateCourse(id: $id, input: $input) {
    id title description credits semester schedule instructor { id name }
  }
}`

	assignInstructorDoc = `mutation AssignInstructor($courseId: ID!, $instructorId: ID!) {
  assignInstructor(courseId: $courseId, instructorId: $instructorId) {
    id title code instructor { id name email }
  }
}`

	removeInstructorDoc = `mutation RemoveInstructor($courseId: ID!) {
  removeInstructor(courseId: $courseId) {
    id title code instructor { id name }
  }
}`
)

func (c *Client) Courses(ctx context.Context) ([]course.Course, error) {
	var out struct {
		Courses []course.Course `json:"courses"`
	}
	err := c.Do(ctx, coursesDoc, "Courses", nil, &out)
	return out.Courses, err
}

func (c *Client) Course(ctx context.Context, id string) (course.Course, error) {
	var out struct {
		Course course.Course `json:"course"`
	}
	err := c.Do(ctx, courseDoc, "Course", map[string]interface{}{"id": id}, &out)
	return out.Course, err
}

type CreateCourseInput struct {
	Title        string `json:"title" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Description  string `json:"description,omitempty"`
	Credits      int    `json:"credits,omitempty"`
	Semester     string `json:"semester,omitempty"`
	Schedule     string `json:"schedule,omitempty"`
	InstructorID string `json:"instructorId,omitempty"`
}

func (c *Client) CreateCourse(ctx context.Context, input CreateCourseInput) (course.Course, error) {
	var out struct {
		CreateCourse course.Course `json:"createCourse"`
	}
	err := c.Do(ctx, createCourseDoc, "CreateCourse", map[string]interface{}{"input": input}, &out)
	return out.CreateCourse, err
}

type UpdateCourseInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Credits     int    `json:"credits,omitempty"`
	Semester    string `json:"semester,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
}

func (c *Client) UpdateCourse(ctx context.Context, id string, input UpdateCourseInput) (course.Course, error) {
	var out struct {
		UpdateCourse course.Course `json:"updateCourse"`
	}
	vars := map[string]interface{}{"id": id, "input": input}
	err := c.Do(ctx, updateCourseDoc, "UpdateCourse", vars, &out)
	return out.UpdateCourse, err
}

func (c *Client) AssignInstructor(ctx context.Context, courseID, instructorID string) (course.Course, error) {
	var out struct {
		AssignInstructor course.Course `json:"assignInstructor"`
	}
	vars := map[string]interface{}{"courseId": courseID, "instructorId": instructorID}
	err := c.Do(ctx, assignInstructorDoc, "AssignInstructor", vars, &out)
	return out.AssignInstructor, err
}

func (c *Client) RemoveInstructor(ctx context.Context, courseID string) (course.Course, error) {
	var out struct {
		RemoveInstructor course.Course `json:"removeInstructor"`
	}
	vars := map[string]interface{}{"courseId": courseID}
	err := c.Do(ctx, removeInstructorDoc, "RemoveInstructor", vars, &out)
	return out.RemoveInstructor, err
}
