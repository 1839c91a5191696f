package service

import (
	"context"
	"sync"

	"course-client/src/models"
	"course-client/src/schemas"
)

// LessonAPI is the slice of the repository the lesson service depends on.
type LessonAPI interface {
	List(ctx context.Context, courseID int) ([]models.Lesson, error)
	Get(ctx context.Context, courseID, lessonID int) (*models.Lesson, error)
	Create(ctx context.Context, courseID int, payload schemas.LessonRequest) (*models.Lesson, error)
	Update(ctx context.Context, courseID, lessonID int, payload schemas.LessonRequest) (*models.Lesson, error)
	Delete(ctx context.Context, courseID, lessonID int) error
}

// LessonService handles lesson CRUD. Mutations are guarded client-side so a
// non-owner never even presents the action; the server enforces the real
// authorization. Lesson counts seen by List are remembered so the
// enrollment guard can answer HasLessons without another round-trip.
type LessonService struct {
	mu      sync.Mutex
	counts  map[int]int
	api     LessonAPI
	courses *CourseCache
	session SessionInfo
}

func NewLessonService(api LessonAPI, courses *CourseCache, session SessionInfo) *LessonService {
	return &LessonService{
		counts:  map[int]int{},
		api:     api,
		courses: courses,
		session: session,
	}
}

// List fetches the lessons of a course and records the count.
func (s *LessonService) List(ctx context.Context, courseID int) ([]models.Lesson, error) {
	lessons, err := s.api.List(ctx, courseID)
	if err != nil {
		return nil, err
	}
	s.remember(courseID, len(lessons))
	return lessons, nil
}

// Get fetches one lesson directly.
func (s *LessonService) Get(ctx context.Context, courseID, lessonID int) (*models.Lesson, error) {
	return s.api.Get(ctx, courseID, lessonID)
}

// HasLessons answers from the last known count when available and only then
// falls back to a fetch. An enroll click on a course whose detail view
// already listed its lessons therefore costs no extra request.
func (s *LessonService) HasLessons(ctx context.Context, courseID int) (bool, error) {
	s.mu.Lock()
	count, known := s.counts[courseID]
	s.mu.Unlock()
	if known {
		return count > 0, nil
	}

	lessons, err := s.List(ctx, courseID)
	if err != nil {
		return false, err
	}
	return len(lessons) > 0, nil
}

// Create adds a lesson to a course owned by the current user.
func (s *LessonService) Create(ctx context.Context, courseID int, title, content string, order int) (*models.Lesson, error) {
	if err := s.requireOwner(ctx, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.api.Create(ctx, courseID, schemas.LessonRequest{Title: title, Content: content, Order: order})
	if err != nil {
		return nil, err
	}
	s.forget(courseID)
	return lesson, nil
}

// Update edits a lesson on a course owned by the current user.
func (s *LessonService) Update(ctx context.Context, courseID, lessonID int, title, content string, order int) (*models.Lesson, error) {
	if err := s.requireOwner(ctx, courseID); err != nil {
		return nil, err
	}
	return s.api.Update(ctx, courseID, lessonID, schemas.LessonRequest{Title: title, Content: content, Order: order})
}

// Delete removes a lesson from a course owned by the current user.
func (s *LessonService) Delete(ctx context.Context, courseID, lessonID int) error {
	if err := s.requireOwner(ctx, courseID); err != nil {
		return err
	}
	if err := s.api.Delete(ctx, courseID, lessonID); err != nil {
		return err
	}
	s.forget(courseID)
	return nil
}

func (s *LessonService) requireOwner(ctx context.Context, courseID int) error {
	if !s.session.Authenticated() {
		return models.ErrNotLoggedIn
	}
	if s.session.Role() != models.RoleTeacher {
		return models.ErrNotCourseOwner
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.TeacherID != s.session.UserID() {
		return models.ErrNotCourseOwner
	}
	return nil
}

func (s *LessonService) remember(courseID, count int) {
	s.mu.Lock()
	s.counts[courseID] = count
	s.mu.Unlock()
}

// forget drops the remembered count after a mutation so the next guard
// check refetches.
func (s *LessonService) forget(courseID int) {
	s.mu.Lock()
	delete(s.counts, courseID)
	s.mu.Unlock()
}
