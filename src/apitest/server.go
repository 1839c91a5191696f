// Package apitest provides an in-process fake of the course REST API for
// integration tests. It reproduces the backend's observable quirks: duplicate
// enrollments and duplicate signups fail with the SQLite constraint message
// rather than a clean conflict status.
package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"course-client/src/models"
)

var signingKey = []byte("apitest-secret")

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// User is a registered account with its plaintext password (test fixture).
type User struct {
	ID       int
	Name     string
	Email    string
	Password string
	Role     string
}

// Server holds the in-memory state behind the fake API.
type Server struct {
	mu          sync.Mutex
	users       map[int]*User
	courses     map[int]*models.Course
	lessons     map[int][]models.Lesson
	enrollments map[int]map[int]bool // courseID -> userID set
	nextID      int

	// Request counters keyed by "METHOD path-prefix", see CountRequests
	requests map[string]int
	delay    time.Duration

	engine *gin.Engine
}

// NewServer creates the fake API with empty state.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		users:       map[int]*User{},
		courses:     map[int]*models.Course{},
		lessons:     map[int][]models.Lesson{},
		enrollments: map[int]map[int]bool{},
		nextID:      1,
		requests:    map[string]int{},
	}

	router := gin.New()
	api := router.Group("/api")
	api.Use(s.countRequests())

	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)

	authed := api.Group("", s.requireBearer())
	authed.GET("/courses", s.listCourses)
	authed.POST("/courses", s.createCourse)
	authed.GET("/courses/:id", s.getCourse)
	authed.PUT("/courses/:id", s.updateCourse)
	authed.DELETE("/courses/:id", s.deleteCourse)
	authed.POST("/courses/:id/enroll", s.enroll)
	authed.DELETE("/courses/:id/unenroll", s.unenroll)
	authed.GET("/courses/:id/lessons", s.listLessons)
	authed.POST("/courses/:id/lessons", s.createLesson)
	authed.GET("/courses/:id/lessons/:lessonId", s.getLesson)
	authed.PUT("/courses/:id/lessons/:lessonId", s.updateLesson)
	authed.DELETE("/courses/:id/lessons/:lessonId", s.deleteLesson)
	authed.GET("/users/:id", s.getUser)
	authed.PUT("/users/:id", s.updateUser)
	authed.GET("/users/:id/enrolled-courses", s.enrolledCourses)

	s.engine = router
	return s
}

// Handler returns the http.Handler to mount in httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// --- fixtures ---

// AddUser registers a fixture account and returns it.
func (s *Server) AddUser(name, email, password, role string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{ID: s.nextID, Name: name, Email: email, Password: password, Role: role}
	s.nextID++
	s.users[u.ID] = u
	return u
}

// AddCourse inserts a fixture course and returns its id.
func (s *Server) AddCourse(title, description string, teacherID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.courses[id] = &models.Course{ID: id, Title: title, Description: description, TeacherID: teacherID}
	s.enrollments[id] = map[int]bool{}
	return id
}

// AddLesson inserts a fixture lesson.
func (s *Server) AddLesson(courseID int, title, content string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.lessons[courseID] = append(s.lessons[courseID], models.Lesson{
		ID: id, Title: title, Content: content, CourseID: courseID, Order: len(s.lessons[courseID]) + 1,
	})
	return id
}

// EnrollDirectly records an enrollment server-side, bypassing the endpoint.
func (s *Server) EnrollDirectly(courseID, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments[courseID][userID] = true
}

// CountRequests returns how many requests matched "METHOD pathPrefix".
func (s *Server) CountRequests(method, pathPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for key, n := range s.requests {
		parts := strings.SplitN(key, " ", 2)
		if parts[0] == method && strings.HasPrefix(parts[1], pathPrefix) {
			total += n
		}
	}
	return total
}

// ResetCounters zeroes the request counters without touching state.
func (s *Server) ResetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = map[string]int{}
}

// TokenFor issues a signed token for the user, as the login endpoint would.
func (s *Server) TokenFor(u *User) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": u.ID,
		"role":   u.Role,
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// --- middleware ---

func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests[c.Request.Method+" "+c.Request.URL.Path]++
		delay := s.delay
		s.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		c.Next()
	}
}

// SetDelay makes every handler sleep before responding, so tests can hold a
// request in flight deterministically.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authorization token not provided"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
			return signingKey, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// --- handlers ---

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "email and password are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email && u.Password == req.Password {
			c.JSON(http.StatusOK, gin.H{
				"token":    s.TokenFor(u),
				"userId":   u.ID,
				"role":     u.Role,
				"userName": u.Name,
			})
			return
		}
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "invalid credentials"})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid registration payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email {
			// The real backend leaks its constraint error on duplicates
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Message: "SQLITE_CONSTRAINT: UNIQUE constraint failed: users.email",
			})
			return
		}
	}
	u := &User{ID: s.nextID, Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	s.nextID++
	s.users[u.ID] = u
	c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
}

func (s *Server) listCourses(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		out = append(out, s.withRosterLocked(course))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getCourse(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "course not found"})
		return
	}
	c.JSON(http.StatusOK, s.withRosterLocked(course))
}

func (s *Server) createCourse(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		TeacherID   int    `json:"teacherId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid course payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	course := &models.Course{ID: id, Title: req.Title, Description: req.Description, TeacherID: req.TeacherID}
	s.courses[id] = course
	s.enrollments[id] = map[int]bool{}
	c.JSON(http.StatusCreated, course)
}

func (s *Server) updateCourse(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid course payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "course not found"})
		return
	}
	course.Title = req.Title
	course.Description = req.Description
	c.JSON(http.StatusOK, course)
}

func (s *Server) deleteCourse(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "course not found"})
		return
	}
	delete(s.courses, id)
	delete(s.enrollments, id)
	delete(s.lessons, id)
	c.JSON(http.StatusOK, gin.H{"message": "course deleted"})
}

func (s *Server) enroll(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var req struct {
		UserID int `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "userId is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	roster, ok := s.enrollments[id]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "course not found"})
		return
	}
	if roster[req.UserID] {
		// Uniqueness violation surfaces as a raw server fault, like the
		// real backend
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "SQLITE_CONSTRAINT: UNIQUE constraint failed: enrollments.courseId, enrollments.userId",
		})
		return
	}
	roster[req.UserID] = true
	c.JSON(http.StatusOK, gin.H{"message": "enrolled"})
}

func (s *Server) unenroll(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var req struct {
		UserID int `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "userId is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	roster, ok := s.enrollments[id]
	if !ok || !roster[req.UserID] {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "enrollment not found"})
		return
	}
	delete(roster, req.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "unenrolled"})
}

func (s *Server) listLessons(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	lessons := s.lessons[id]
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	c.JSON(http.StatusOK, lessons)
}

func (s *Server) getLesson(c *gin.Context) {
	courseID, _ := strconv.Atoi(c.Param("id"))
	lessonID, _ := strconv.Atoi(c.Param("lessonId"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lesson := range s.lessons[courseID] {
		if lesson.ID == lessonID {
			c.JSON(http.StatusOK, lesson)
			return
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Message: "lesson not found"})
}

func (s *Server) createLesson(c *gin.Context) {
	courseID, _ := strconv.Atoi(c.Param("id"))
	var req struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content"`
		Order   int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid lesson payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[courseID]; !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "course not found"})
		return
	}
	id := s.nextID
	s.nextID++
	lesson := models.Lesson{ID: id, Title: req.Title, Content: req.Content, CourseID: courseID, Order: req.Order}
	s.lessons[courseID] = append(s.lessons[courseID], lesson)
	c.JSON(http.StatusCreated, lesson)
}

func (s *Server) updateLesson(c *gin.Context) {
	courseID, _ := strconv.Atoi(c.Param("id"))
	lessonID, _ := strconv.Atoi(c.Param("lessonId"))
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Order   int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid lesson payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, lesson := range s.lessons[courseID] {
		if lesson.ID == lessonID {
			s.lessons[courseID][i].Title = req.Title
			s.lessons[courseID][i].Content = req.Content
			s.lessons[courseID][i].Order = req.Order
			c.JSON(http.StatusOK, s.lessons[courseID][i])
			return
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Message: "lesson not found"})
}

func (s *Server) deleteLesson(c *gin.Context) {
	courseID, _ := strconv.Atoi(c.Param("id"))
	lessonID, _ := strconv.Atoi(c.Param("lessonId"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, lesson := range s.lessons[courseID] {
		if lesson.ID == lessonID {
			s.lessons[courseID] = append(s.lessons[courseID][:i], s.lessons[courseID][i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "lesson deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, ErrorResponse{Message: "lesson not found"})
}

func (s *Server) getUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role})
}

func (s *Server) updateUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid profile payload"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "user not found"})
		return
	}
	u.Name = req.Name
	u.Email = req.Email
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role})
}

func (s *Server) enrolledCourses(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []int{}
	for courseID, roster := range s.enrollments {
		if roster[id] {
			ids = append(ids, courseID)
		}
	}
	c.JSON(http.StatusOK, ids)
}

// withRosterLocked projects a course with its roster attached, as the list
// and detail endpoints return it.
func (s *Server) withRosterLocked(course *models.Course) models.Course {
	out := *course
	out.Students = nil
	for userID := range s.enrollments[course.ID] {
		student := models.Student{ID: userID}
		if u, ok := s.users[userID]; ok {
			student.Name = u.Name
			student.Email = u.Email
		}
		out.Students = append(out.Students, student)
	}
	return out
}
