package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"course-client/src/apitest"
	"course-client/src/models"
)

func enrollableCourse(s *stack) int {
	courseID := s.api.AddCourse("Go", "basics", 999)
	s.api.AddLesson(courseID, "intro", "hello")
	return courseID
}

func TestEnroll_Success(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)

	if err := s.enrollment.Enroll(context.Background(), courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if !s.enrollment.IsEnrolled(courseID) {
		t.Error("expected local state Enrolled after success")
	}
	if !strings.Contains(s.lastNotice(t), "enrolled") {
		t.Errorf("expected a success notice, got %q", s.lastNotice(t))
	}
	// The authoritative enrolled set was refreshed from the server
	if got := s.api.CountRequests("GET", "/api/users"); got == 0 {
		t.Error("success must trigger a server-truth refresh of the enrolled set")
	}
}

func TestEnroll_NoLessonsRejectedLocally(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := s.api.AddCourse("Empty", "no content", 999)

	// The detail view already listed the (empty) lessons
	if _, err := s.lessons.List(context.Background(), courseID); err != nil {
		t.Fatalf("List lessons: %v", err)
	}
	s.api.ResetCounters()

	err := s.enrollment.Enroll(context.Background(), courseID)
	if !errors.Is(err, models.ErrNoLessons) {
		t.Fatalf("expected ErrNoLessons, got %v", err)
	}
	if !strings.Contains(s.lastNotice(t), "no lessons") {
		t.Errorf("expected the no-content notice, got %q", s.lastNotice(t))
	}
	if got := s.api.CountRequests("POST", "/api/courses"); got != 0 {
		t.Errorf("local rejection must make zero network calls, got %d", got)
	}
	if got := s.api.CountRequests("GET", "/api/courses"); got != 0 {
		t.Errorf("the lesson check must be answered locally, got %d requests", got)
	}
}

func TestEnroll_SecondCallWhilePendingIsIgnored(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)
	s.api.ResetCounters()

	// Hold the guard the way an in-flight request would
	if !s.enrollment.acquire(courseID) {
		t.Fatal("guard unexpectedly held")
	}

	err := s.enrollment.Enroll(context.Background(), courseID)
	if !errors.Is(err, models.ErrOperationInFlight) {
		t.Fatalf("expected ErrOperationInFlight, got %v", err)
	}
	if got := s.api.CountRequests("POST", "/api/courses"); got != 0 {
		t.Errorf("the ignored call must not reach the network, got %d requests", got)
	}

	s.enrollment.release(courseID)
	if err := s.enrollment.Enroll(context.Background(), courseID); err != nil {
		t.Fatalf("Enroll after release: %v", err)
	}
}

func TestEnroll_AlreadyEnrolledLocallyIsANoOp(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)

	if err := s.enrollment.Enroll(context.Background(), courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	s.api.ResetCounters()

	if err := s.enrollment.Enroll(context.Background(), courseID); err != nil {
		t.Fatalf("second Enroll: %v", err)
	}
	if !strings.Contains(s.lastNotice(t), "already enrolled") {
		t.Errorf("expected the already-enrolled notice, got %q", s.lastNotice(t))
	}
	if got := s.api.CountRequests("POST", "/api/courses"); got != 0 {
		t.Errorf("local guard must prevent the request, got %d", got)
	}
}

func TestEnroll_ServerFaultReclassifiedAsEnrolled(t *testing.T) {
	s, user := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)

	// Server already has the enrollment; the client does not know yet.
	// The duplicate insert will fail with the constraint fault.
	s.api.EnrollDirectly(courseID, user.ID)

	if err := s.enrollment.Enroll(context.Background(), courseID); err != nil {
		t.Fatalf("reclassified fault must not surface as an error, got %v", err)
	}
	if !s.enrollment.IsEnrolled(courseID) {
		t.Error("expected state Enrolled after reclassification")
	}
	if !strings.Contains(s.lastNotice(t), "already enrolled") {
		t.Errorf("expected a benign notice, not a failure, got %q", s.lastNotice(t))
	}
}

func TestUnenroll_Success(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)
	if err := s.enrollment.Enroll(context.Background(), courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if err := s.enrollment.Unenroll(context.Background(), courseID); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}
	if s.enrollment.IsEnrolled(courseID) {
		t.Error("expected NotEnrolled after unenroll")
	}
	if !strings.Contains(s.lastNotice(t), "left the course") {
		t.Errorf("expected the unenroll success notice, got %q", s.lastNotice(t))
	}
}

func TestUnenroll_NotEnrolledLocallyIsANoOp(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)

	// Load the authoritative (empty) enrolled set first
	if _, err := s.enrollment.EnrolledCourseIDs(context.Background()); err != nil {
		t.Fatalf("EnrolledCourseIDs: %v", err)
	}
	s.api.ResetCounters()

	if err := s.enrollment.Unenroll(context.Background(), courseID); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}
	if !strings.Contains(s.lastNotice(t), "not enrolled") {
		t.Errorf("expected the not-enrolled notice, got %q", s.lastNotice(t))
	}
	if got := s.api.CountRequests("DELETE", "/api/courses"); got != 0 {
		t.Errorf("local guard must prevent the request, got %d", got)
	}
}

func TestUnenroll_MissingEnrollmentReclassified(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)

	// Local state unknown, server has no enrollment: the DELETE 404s and
	// is read as "already not enrolled"
	if err := s.enrollment.Unenroll(context.Background(), courseID); err != nil {
		t.Fatalf("reclassified fault must not surface as an error, got %v", err)
	}
	if s.enrollment.IsEnrolled(courseID) {
		t.Error("expected NotEnrolled after reclassification")
	}
	if !strings.Contains(s.lastNotice(t), "not enrolled") {
		t.Errorf("expected a benign notice, got %q", s.lastNotice(t))
	}
}

func TestEnroll_RequiresLogin(t *testing.T) {
	api := apitest.NewServer()
	s := newStack(t, api, time.Minute)

	err := s.enrollment.Enroll(context.Background(), 1)
	if !errors.Is(err, models.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestEnroll_InvalidatesCourseCache(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := enrollableCourse(s)

	ctx := context.Background()
	if _, err := s.courses.List(ctx, false); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := s.enrollment.Enroll(ctx, courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	s.api.ResetCounters()

	courses, err := s.courses.List(ctx, false)
	if err != nil {
		t.Fatalf("List after enroll: %v", err)
	}
	if got := s.api.CountRequests("GET", "/api/courses"); got != 1 {
		t.Errorf("enroll must invalidate the course cache, got %d fetches", got)
	}
	for _, course := range courses {
		if course.ID == courseID && !course.Enrolled {
			t.Error("refetched course must carry the enrolled flag")
		}
	}
}
