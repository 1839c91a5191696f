package models

import "encoding/json"

// Student is a normalized student reference on a course roster.
type Student struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnmarshalJSON accepts both roster shapes the server is known to emit:
// a full {id, name, email} object or a bare numeric id.
func (s *Student) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*s = Student{ID: id}
		return nil
	}

	type studentAlias Student
	var full studentAlias
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*s = Student(full)
	return nil
}

// Course represents a course as seen by the client. Enrolled and
// EnrolledStudents are derived client-side; the rest comes from the server.
type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TeacherID   int       `json:"teacherId"`
	TeacherName string    `json:"teacherName,omitempty"`
	Students    []Student `json:"students,omitempty"`

	// Presentation metadata, defaulted when the server omits it
	Category string  `json:"category,omitempty"`
	Rating   float64 `json:"rating,omitempty"`

	// Derived, never trusted from the wire alone
	Enrolled         bool `json:"enrolled,omitempty"`
	EnrolledStudents int  `json:"enrolledStudents,omitempty"`
}

// HasStudent reports whether the given user appears on the roster.
func (c Course) HasStudent(userID int) bool {
	for _, s := range c.Students {
		if s.ID == userID {
			return true
		}
	}
	return false
}
