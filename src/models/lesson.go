package models

// Lesson belongs to a single course and is ordered within it.
type Lesson struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	CourseID int    `json:"courseId"`
	Order    int    `json:"order"`
}

// User is a full profile record as returned by the users endpoint.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
