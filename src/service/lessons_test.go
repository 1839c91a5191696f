package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-client/src/apitest"
	"course-client/src/models"
)

func TestLessonService_CRUDAsOwner(t *testing.T) {
	api := apitest.NewServer()
	teacher := api.AddUser("Tea", "t@x.com", "secret", "teacher")
	courseID := api.AddCourse("Go", "basics", teacher.ID)
	s := newStack(t, api, time.Minute)
	s.loginAs(t, "t@x.com", "secret")

	ctx := context.Background()
	created, err := s.lessons.Create(ctx, courseID, "intro", "hello", 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.lessons.Update(ctx, courseID, created.ID, "intro", "hello world", 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "hello world" {
		t.Errorf("expected updated content, got %q", updated.Content)
	}

	lessons, err := s.lessons.List(ctx, courseID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(lessons))
	}

	if err := s.lessons.Delete(ctx, courseID, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	lessons, _ = s.lessons.List(ctx, courseID)
	if len(lessons) != 0 {
		t.Errorf("expected no lessons after delete, got %d", len(lessons))
	}
}

func TestLessonService_NonOwnerCannotMutate(t *testing.T) {
	api := apitest.NewServer()
	owner := api.AddUser("Tea", "t@x.com", "secret", "teacher")
	api.AddUser("Other", "o@x.com", "secret", "teacher")
	api.AddUser("Stu", "s@x.com", "secret", "student")
	courseID := api.AddCourse("Go", "basics", owner.ID)

	ctx := context.Background()

	other := newStack(t, api, time.Minute)
	other.loginAs(t, "o@x.com", "secret")
	if _, err := other.lessons.Create(ctx, courseID, "x", "y", 1); !errors.Is(err, models.ErrNotCourseOwner) {
		t.Errorf("a different teacher must be rejected locally, got %v", err)
	}

	student := newStack(t, api, time.Minute)
	student.loginAs(t, "s@x.com", "secret")
	api.ResetCounters()
	if _, err := student.lessons.Create(ctx, courseID, "x", "y", 1); !errors.Is(err, models.ErrNotCourseOwner) {
		t.Errorf("a student must be rejected locally, got %v", err)
	}
	if got := api.CountRequests("POST", "/api/courses"); got != 0 {
		t.Errorf("the student's attempt must never reach the network, got %d", got)
	}
}

func TestLessonService_HasLessonsServedFromKnownCount(t *testing.T) {
	s, _ := studentStack(t, time.Minute)
	courseID := s.api.AddCourse("Go", "basics", 999)
	s.api.AddLesson(courseID, "intro", "hello")

	ctx := context.Background()
	if _, err := s.lessons.List(ctx, courseID); err != nil {
		t.Fatalf("List: %v", err)
	}
	s.api.ResetCounters()

	has, err := s.lessons.HasLessons(ctx, courseID)
	if err != nil {
		t.Fatalf("HasLessons: %v", err)
	}
	if !has {
		t.Error("expected HasLessons true")
	}
	if got := s.api.CountRequests("GET", "/api/courses"); got != 0 {
		t.Errorf("known counts must be answered locally, got %d requests", got)
	}
}

func TestUserService_ProfileFlows(t *testing.T) {
	api := apitest.NewServer()
	api.AddUser("Dana", "a@x.com", "secret", "student")
	s := newStack(t, api, time.Minute)

	if _, err := s.users.Profile(context.Background()); !errors.Is(err, models.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn while logged out, got %v", err)
	}

	s.loginAs(t, "a@x.com", "secret")
	profile, err := s.users.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Email != "a@x.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	updated, err := s.users.UpdateProfile(context.Background(), "Dana L", "dana@x.com")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Dana L" || updated.Email != "dana@x.com" {
		t.Errorf("unexpected updated profile: %+v", updated)
	}
}
