package models

import (
	"encoding/json"
	"testing"
)

func TestStudent_UnmarshalJSON_ObjectShape(t *testing.T) {
	var s Student
	if err := json.Unmarshal([]byte(`{"id":7,"name":"Dana","email":"dana@example.com"}`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != 7 || s.Name != "Dana" || s.Email != "dana@example.com" {
		t.Errorf("unexpected student: %+v", s)
	}
}

func TestStudent_UnmarshalJSON_BareID(t *testing.T) {
	var s Student
	if err := json.Unmarshal([]byte(`42`), &s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != 42 || s.Name != "" || s.Email != "" {
		t.Errorf("expected bare id 42, got %+v", s)
	}
}

func TestStudent_UnmarshalJSON_MixedRoster(t *testing.T) {
	var c Course
	payload := `{"id":1,"title":"Go","students":[3,{"id":7,"name":"Dana","email":"d@x.com"},9]}`
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Students) != 3 {
		t.Fatalf("expected 3 students, got %d", len(c.Students))
	}
	if !c.HasStudent(3) || !c.HasStudent(7) || !c.HasStudent(9) {
		t.Errorf("roster membership broken: %+v", c.Students)
	}
	if c.HasStudent(4) {
		t.Error("HasStudent reported a user that is not on the roster")
	}
}

func TestParseRole_UnknownFallsBackToGuest(t *testing.T) {
	if got := ParseRole("admin"); got != RoleGuest {
		t.Errorf("expected guest for unknown role, got %q", got)
	}
	if got := ParseRole("teacher"); got != RoleTeacher {
		t.Errorf("expected teacher, got %q", got)
	}
}

func TestSession_Authenticated(t *testing.T) {
	if Guest().Authenticated() {
		t.Error("guest session must not be authenticated")
	}
	s := Session{Token: "t1", Role: RoleGuest}
	if !s.Authenticated() {
		t.Error("a session holding a token is authenticated even with a guest role")
	}
}
