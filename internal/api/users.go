package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/internal/user"
	"learnhub/pkg/models"
)

func (s *Server) handleListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, s.users.List(c.Request.Context()))
}

func (s *Server) handleSignup(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	u, err := s.users.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, user.ErrUserExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
		return
	}
	if err != nil {
		s.internalError(c, "Failed to create user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": u})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	u, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		s.internalError(c, "Failed to login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": u})
}

func (s *Server) handleMyCourses(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	courses, err := s.users.PurchasedCourses(c.Request.Context(), userID)
	if !s.userFound(c, err, "Failed to fetch courses") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchasedCourses": courses})
}

func (s *Server) handlePurchaseCourse(c *gin.Context) {
	var req struct {
		UserID     string `json:"userId"`
		CourseName string `json:"courseName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.CourseName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and courseName are required"})
		return
	}

	courses, added, err := s.users.PurchaseCourse(c.Request.Context(), req.UserID, req.CourseName)
	if !s.userFound(c, err, "Failed to purchase course") {
		return
	}
	if added {
		s.emitProgress(models.ProgressUpdate{Type: "purchase", UserID: req.UserID, Course: req.CourseName})
	}
	c.JSON(http.StatusOK, gin.H{"purchasedCourses": courses})
}

func (s *Server) handleGetProgress(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	progress, err := s.users.Progress(c.Request.Context(), userID)
	if !s.userFound(c, err, "Failed to fetch progress") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (s *Server) handleUpdateProgress(c *gin.Context) {
	var req struct {
		UserID    string          `json:"userId"`
		Language  string          `json:"language"`
		LessonID  string          `json:"lessonId"`
		Completed json.RawMessage `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.Language == "" || req.LessonID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, language and lessonId are required"})
		return
	}
	// objects and arrays are refused here; stored documents may still hold them
	completed, err := models.ParseLessonStatus(req.Completed)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := s.users.UpdateProgress(c.Request.Context(), req.UserID, req.Language, req.LessonID, completed)
	if !s.userFound(c, err, "Failed to update progress") {
		return
	}
	s.emitProgress(models.ProgressUpdate{
		Type:      "progress",
		UserID:    req.UserID,
		Language:  req.Language,
		LessonID:  req.LessonID,
		Completed: completed.String(),
	})
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// userFound writes the error response for err and reports whether the
// handler may continue.
func (s *Server) userFound(c *gin.Context, err error, failMsg string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		s.internalError(c, failMsg, err)
	}
	return false
}
