package schemas

// LoginRequest represents the request body for the login endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the response body of a successful login.
// Name and email are optional; not every backend version returns them.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   int    `json:"userId"`
	Role     string `json:"role"`
	UserName string `json:"userName,omitempty"`
	Email    string `json:"userEmail,omitempty"`
}

// RegisterRequest represents the request body for the register endpoint
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterResponse represents the confirmation returned by the register
// endpoint. Registration does not establish a session.
type RegisterResponse struct {
	Message string `json:"message"`
}
