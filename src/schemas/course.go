package schemas

// CourseRequest represents the request body for creating or updating a course
type CourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   int    `json:"teacherId"`
}

// EnrollRequest represents the request body for enroll and unenroll calls.
// Unenroll is a DELETE with this body, which the backend requires.
type EnrollRequest struct {
	UserID int `json:"userId"`
}

// LessonRequest represents the request body for creating or updating a lesson
type LessonRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// UpdateUserRequest represents the request body for a profile update
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MessageResponse represents a bare confirmation message from the server
type MessageResponse struct {
	Message string `json:"message"`
}
