package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnhub/internal/blog"
	"learnhub/internal/logging"
	"learnhub/internal/user"
	"learnhub/pkg/models"
)

// BlogPublisher receives blog created/deleted events.
type BlogPublisher interface {
	Publish(evt models.BlogEvent)
}

type Server struct {
	users *user.Repo
	blogs *blog.Repo
	log   *zap.Logger

	progressCh chan<- models.ProgressUpdate // may be nil
	blogFeed   BlogPublisher                // may be nil
	feedRoute  gin.HandlerFunc              // may be nil
}

type Option func(*Server)

// WithProgressEvents sends purchase and progress events to ch without blocking.
func WithProgressEvents(ch chan<- models.ProgressUpdate) Option {
	return func(s *Server) { s.progressCh = ch }
}

// WithBlogFeed publishes blog events to pub and mounts handler at /ws/blogs.
func WithBlogFeed(pub BlogPublisher, handler gin.HandlerFunc) Option {
	return func(s *Server) {
		s.blogFeed = pub
		s.feedRoute = handler
	}
}

func NewServer(users *user.Repo, blogs *blog.Repo, log *zap.Logger, opts ...Option) *Server {
	s := &Server{users: users, blogs: blogs, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(s.log), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if s.feedRoute != nil {
		r.GET("/ws/blogs", s.feedRoute)
	}

	api := r.Group("/api")
	{
		// USERS
		api.GET("/users", s.handleListUsers)
		api.POST("/signup", s.handleSignup)
		api.POST("/login", s.handleLogin)

		// COURSES & PROGRESS
		api.GET("/my-courses", s.handleMyCourses)
		api.POST("/purchase-course", s.handlePurchaseCourse)
		api.GET("/progress", s.handleGetProgress)
		api.POST("/progress", s.handleUpdateProgress)

		// BLOGS
		api.GET("/blogs", s.handleListBlogs)
		api.POST("/blogs", s.handleCreateBlog)
		api.DELETE("/blogs/:id", s.handleDeleteBlog)
	}
	return r
}

func (s *Server) emitProgress(evt models.ProgressUpdate) {
	if s.progressCh == nil {
		return
	}
	evt.Timestamp = time.Now().Unix()
	select {
	case s.progressCh <- evt:
	default:
		s.log.Warn("progress channel full, dropping event", zap.String("user_id", evt.UserID), zap.String("type", evt.Type))
	}
}

func (s *Server) emitBlog(evt models.BlogEvent) {
	if s.blogFeed == nil {
		return
	}
	evt.Timestamp = time.Now().Unix()
	s.blogFeed.Publish(evt)
}

// internalError logs err and answers 500 with a generic message.
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	s.log.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
