package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"course-client/src/apitest"
	"course-client/src/repository"
	"course-client/src/store"
	"course-client/src/transport"
)

// stack wires the full client against an in-process fake API, the way main
// does, but with an in-memory token store and a notice recorder.
type stack struct {
	api        *apitest.Server
	tokens     *store.MemoryStore
	session    *SessionManager
	courses    *CourseCache
	lessons    *LessonService
	enrollment *EnrollmentReconciler
	users      *UserService
	notices    *NoticeRecorder
}

func newStack(t *testing.T, api *apitest.Server, ttl time.Duration) *stack {
	t.Helper()

	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	tokens := store.NewMemoryStore()
	httpClient := &http.Client{Transport: transport.NewAuthorizedRoundTripper(nil, tokens)}
	client := repository.NewClient(ts.URL+"/api", httpClient)

	session := NewSessionManager(tokens, repository.NewAuthRepository(client))
	coursesRepo := repository.NewCoursesRepository(client)
	courses := NewCourseCache(coursesRepo, session, ttl)
	lessons := NewLessonService(repository.NewLessonsRepository(client), courses, session)
	notices := &NoticeRecorder{}
	enrollment := NewEnrollmentReconciler(coursesRepo, courses, lessons, session, notices)
	users := NewUserService(repository.NewUsersRepository(client), session)

	return &stack{
		api:        api,
		tokens:     tokens,
		session:    session,
		courses:    courses,
		lessons:    lessons,
		enrollment: enrollment,
		users:      users,
		notices:    notices,
	}
}

func (s *stack) loginAs(t *testing.T, email, password string) {
	t.Helper()
	if err := s.session.Login(context.Background(), email, password); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func (s *stack) lastNotice(t *testing.T) string {
	t.Helper()
	if len(s.notices.Notices) == 0 {
		t.Fatal("expected at least one notice")
	}
	return s.notices.Notices[len(s.notices.Notices)-1]
}
