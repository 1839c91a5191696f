package repository

import (
	"context"
	"fmt"
	"net/http"

	"course-client/src/models"
	"course-client/src/schemas"
)

// CoursesRepository handles all HTTP operations for courses and enrollment.
// Roster payloads are normalized at this boundary: models.Student accepts
// both the object shape and bare ids, so callers only ever see one shape.
type CoursesRepository struct {
	client *Client
}

func NewCoursesRepository(client *Client) *CoursesRepository {
	return &CoursesRepository{client: client}
}

// List fetches the full course collection.
func (r *CoursesRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.client.doJSON(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Get fetches a single course directly, bypassing any client-side cache.
func (r *CoursesRepository) Get(ctx context.Context, id int) (*models.Course, error) {
	var course models.Course
	if err := r.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create creates a course owned by teacherID.
func (r *CoursesRepository) Create(ctx context.Context, title, description string, teacherID int) (*models.Course, error) {
	var course models.Course
	err := r.client.doJSON(ctx, http.MethodPost, "/courses", schemas.CourseRequest{
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
	}, &course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update replaces a course's title and description.
func (r *CoursesRepository) Update(ctx context.Context, id int, title, description string, teacherID int) (*models.Course, error) {
	var course models.Course
	err := r.client.doJSON(ctx, http.MethodPut, fmt.Sprintf("/courses/%d", id), schemas.CourseRequest{
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
	}, &course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete removes a course.
func (r *CoursesRepository) Delete(ctx context.Context, id int) error {
	return r.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d", id), nil, nil)
}

// Enroll enrolls userID into the course. The server enforces uniqueness on
// (course, student); a duplicate surfaces as a fault, not a conflict, which
// the reconciler classifies.
func (r *CoursesRepository) Enroll(ctx context.Context, courseID, userID int) error {
	return r.client.doJSON(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/enroll", courseID),
		schemas.EnrollRequest{UserID: userID}, nil)
}

// Unenroll removes userID from the course. DELETE with a body, as the
// backend requires.
func (r *CoursesRepository) Unenroll(ctx context.Context, courseID, userID int) error {
	return r.client.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/courses/%d/unenroll", courseID),
		schemas.EnrollRequest{UserID: userID}, nil)
}

// EnrolledCourseIDs fetches the authoritative set of course ids the user is
// enrolled in.
func (r *CoursesRepository) EnrolledCourseIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	if err := r.client.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d/enrolled-courses", userID), nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
