package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"course-client/logger"
	"course-client/src/models"
	"course-client/src/schemas"
)

// DefaultCourseCacheTTL matches the 5-minute freshness window the course
// list is allowed to be served from memory.
const DefaultCourseCacheTTL = 5 * time.Minute

// CourseAPI is the slice of the repository the cache depends on.
type CourseAPI interface {
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id int) (*models.Course, error)
	Create(ctx context.Context, title, description string, teacherID int) (*models.Course, error)
	Update(ctx context.Context, id int, title, description string, teacherID int) (*models.Course, error)
	Delete(ctx context.Context, id int) error
}

// SessionInfo is the read-only session view the course layer needs.
type SessionInfo interface {
	UserID() int
	Role() models.Role
	Authenticated() bool
}

// CourseCache fronts the course endpoints with a time-bounded, invalidating
// cache of the full collection. Concurrent readers during a fetch share the
// one outstanding request; snapshot and fetch time are always replaced
// together, so readers see either the old pair or the new one.
type CourseCache struct {
	mu        sync.RWMutex
	api       CourseAPI
	session   SessionInfo
	ttl       time.Duration
	snapshot  []models.Course
	fetchedAt time.Time
	group     singleflight.Group
	now       func() time.Time
}

// NewCourseCache creates the cache. ttl <= 0 selects the default 5 minutes.
func NewCourseCache(api CourseAPI, session SessionInfo, ttl time.Duration) *CourseCache {
	if ttl <= 0 {
		ttl = DefaultCourseCacheTTL
	}
	return &CourseCache{
		api:     api,
		session: session,
		ttl:     ttl,
		now:     time.Now,
	}
}

// List returns the course collection, fetching only when the cache is empty,
// stale or forceRefresh is set. The returned slice is a copy; callers must
// never mutate it in place.
func (c *CourseCache) List(ctx context.Context, forceRefresh bool) ([]models.Course, error) {
	if !forceRefresh {
		c.mu.RLock()
		fresh := c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl
		if fresh {
			out := copyCourses(c.snapshot)
			c.mu.RUnlock()
			return out, nil
		}
		c.mu.RUnlock()
	}

	result, err, _ := c.group.Do("courses", func() (any, error) {
		courses, err := c.api.List(ctx)
		if err != nil {
			return nil, err
		}
		c.decorate(courses)

		c.mu.Lock()
		c.snapshot = courses
		c.fetchedAt = c.now()
		c.mu.Unlock()

		logger.L().WithField("count", len(courses)).Debug("course cache refreshed")
		return courses, nil
	})
	if err != nil {
		return nil, err
	}
	return copyCourses(result.([]models.Course)), nil
}

// GetByID serves a course from the cached collection.
func (c *CourseCache) GetByID(ctx context.Context, id int) (*models.Course, error) {
	courses, err := c.List(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if courses[i].ID == id {
			return &courses[i], nil
		}
	}
	return nil, schemas.NewNotFoundError("course not found")
}

// FetchByID always hits the server; detail views use it so they never depend
// on the list cache being warm.
func (c *CourseCache) FetchByID(ctx context.Context, id int) (*models.Course, error) {
	course, err := c.api.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	single := []models.Course{*course}
	c.decorate(single)
	return &single[0], nil
}

// Invalidate discards the retained snapshot so the next List call refetches.
// Mutations call it synchronously before reporting success.
func (c *CourseCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// Create creates a course owned by the current user and invalidates the
// cache on success only.
func (c *CourseCache) Create(ctx context.Context, title, description string) (*models.Course, error) {
	if !c.session.Authenticated() {
		return nil, models.ErrNotLoggedIn
	}
	course, err := c.api.Create(ctx, title, description, c.session.UserID())
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return course, nil
}

// Update updates a course and invalidates the cache on success only.
func (c *CourseCache) Update(ctx context.Context, id int, title, description string) (*models.Course, error) {
	if !c.session.Authenticated() {
		return nil, models.ErrNotLoggedIn
	}
	course, err := c.api.Update(ctx, id, title, description, c.session.UserID())
	if err != nil {
		return nil, err
	}
	c.Invalidate()
	return course, nil
}

// Delete deletes a course and invalidates the cache on success only.
func (c *CourseCache) Delete(ctx context.Context, id int) error {
	if !c.session.Authenticated() {
		return models.ErrNotLoggedIn
	}
	if err := c.api.Delete(ctx, id); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

// MarkEnrolled flips the derived enrolled flag on the cached course without
// a refetch. The reconciler uses it for optimistic updates; the next refresh
// converges on server truth.
func (c *CourseCache) MarkEnrolled(courseID int, enrolled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.snapshot {
		if c.snapshot[i].ID == courseID {
			c.snapshot[i].Enrolled = enrolled
		}
	}
}

// FilterMine narrows a course list to the current user's view: teachers see
// the courses they own, students the ones they are enrolled in.
func (c *CourseCache) FilterMine(courses []models.Course) []models.Course {
	userID := c.session.UserID()
	if userID == 0 {
		return nil
	}

	var out []models.Course
	switch c.session.Role() {
	case models.RoleTeacher:
		for _, course := range courses {
			if course.TeacherID == userID {
				out = append(out, course)
			}
		}
	case models.RoleStudent:
		for _, course := range courses {
			if course.Enrolled || course.HasStudent(userID) {
				out = append(out, course)
			}
		}
	}
	return out
}

// decorate recomputes the derived fields against the current session: the
// enrolled flag must reflect roster membership, and the student count
// defaults to the roster length when the server omits it.
func (c *CourseCache) decorate(courses []models.Course) {
	userID := c.session.UserID()
	for i := range courses {
		if courses[i].Students != nil {
			courses[i].Enrolled = courses[i].HasStudent(userID)
		}
		if courses[i].EnrolledStudents == 0 {
			courses[i].EnrolledStudents = len(courses[i].Students)
		}
	}
}

func copyCourses(in []models.Course) []models.Course {
	out := make([]models.Course, len(in))
	copy(out, in)
	return out
}
