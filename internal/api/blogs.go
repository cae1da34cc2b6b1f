package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/internal/blog"
	"learnhub/pkg/models"
)

func (s *Server) handleListBlogs(c *gin.Context) {
	c.JSON(http.StatusOK, s.blogs.List(c.Request.Context()))
}

func (s *Server) handleCreateBlog(c *gin.Context) {
	var req struct {
		Title        string `json:"title"`
		Summary      string `json:"summary"`
		Content      string `json:"content"`
		Category     string `json:"category"`
		Author       string `json:"author"`
		AuthorID     string `json:"authorId"`
		ImagePreview string `json:"imagePreview"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.Title == "" || req.Summary == "" || req.Content == "" || req.Author == "" || req.AuthorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All required fields must be provided"})
		return
	}

	created, err := s.blogs.Create(c.Request.Context(), blog.Input{
		Title:        req.Title,
		Summary:      req.Summary,
		Content:      req.Content,
		Category:     req.Category,
		Author:       req.Author,
		AuthorID:     req.AuthorID,
		ImagePreview: req.ImagePreview,
	})
	if err != nil {
		s.internalError(c, "Failed to create blog", err)
		return
	}

	s.emitBlog(models.BlogEvent{Type: "created", Blog: &created, BlogID: created.ID})
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleDeleteBlog(c *gin.Context) {
	id := c.Param("id")
	err := s.blogs.Delete(c.Request.Context(), id)
	if errors.Is(err, blog.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blog not found"})
		return
	}
	if err != nil {
		s.internalError(c, "Failed to delete blog", err)
		return
	}

	s.emitBlog(models.BlogEvent{Type: "deleted", BlogID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully"})
}
