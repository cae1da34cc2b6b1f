package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// users document
type UsersDocument struct {
	Users []User `json:"users"`
}

// Progress maps language -> lessonId -> completion value.
type Progress map[string]map[string]LessonStatus

type User struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	Password         string   `json:"password,omitempty"`
	CreatedAt        string   `json:"createdAt"`
	PurchasedCourses []string `json:"purchasedCourses,omitempty"`
	Progress         Progress `json:"progress,omitempty"`
}

// Public returns a copy without the password field.
func (u User) Public() User {
	u.Password = ""
	return u
}

// blogs document
type BlogsDocument struct {
	Blogs []Blog `json:"blogs"`
}

type Blog struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Content      string `json:"content"`
	Category     string `json:"category"`
	Author       string `json:"author"`
	AuthorID     string `json:"authorId"`
	ImagePreview string `json:"imagePreview,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// TimeLayout formats createdAt as ISO-8601 with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DefaultCategory is used for blogs created without a category.
const DefaultCategory = "Tips"

var ErrUnsupportedStatus = errors.New("completion value must be a boolean, number, string or null")

// LessonStatus is a lesson completion value. It holds a raw JSON scalar:
// boolean, number, string or null.
type LessonStatus struct {
	raw json.RawMessage
}

func BoolStatus(v bool) LessonStatus {
	if v {
		return LessonStatus{raw: json.RawMessage("true")}
	}
	return LessonStatus{raw: json.RawMessage("false")}
}

// ParseLessonStatus validates raw JSON; empty input means null.
func ParseLessonStatus(raw json.RawMessage) (LessonStatus, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return LessonStatus{raw: json.RawMessage("null")}, nil
	}
	switch trimmed[0] {
	case '{', '[':
		return LessonStatus{}, ErrUnsupportedStatus
	}
	if !json.Valid(trimmed) {
		return LessonStatus{}, ErrUnsupportedStatus
	}
	return LessonStatus{raw: append(json.RawMessage(nil), trimmed...)}, nil
}

func (s LessonStatus) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte("null"), nil
	}
	return s.raw, nil
}

func (s *LessonStatus) UnmarshalJSON(b []byte) error {
	// stored documents may carry any shape from older writers; keep them as-is
	s.raw = append(s.raw[:0], b...)
	return nil
}

// String returns the raw JSON text.
func (s LessonStatus) String() string {
	b, _ := s.MarshalJSON()
	return string(b)
}

// sent over TCP sync on purchases and progress updates
type ProgressUpdate struct {
	Type      string `json:"type"` // "progress" | "purchase"
	UserID    string `json:"user_id"`
	Language  string `json:"language,omitempty"`
	LessonID  string `json:"lesson_id,omitempty"`
	Course    string `json:"course,omitempty"`
	Completed string `json:"completed,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// pushed to websocket clients
type BlogEvent struct {
	Type      string `json:"type"` // "created" | "deleted"
	Blog      *Blog  `json:"blog,omitempty"`
	BlogID    string `json:"blog_id"`
	Timestamp int64  `json:"timestamp"`
}

// A nil list still serialises as [] so readers always get a container.
func (d UsersDocument) MarshalJSON() ([]byte, error) {
	type plain UsersDocument
	if d.Users == nil {
		d.Users = []User{}
	}
	return json.Marshal(plain(d))
}

func (d BlogsDocument) MarshalJSON() ([]byte, error) {
	type plain BlogsDocument
	if d.Blogs == nil {
		d.Blogs = []Blog{}
	}
	return json.Marshal(plain(d))
}
