package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"learnhub/pkg/database"
	"learnhub/pkg/models"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

// errUnchanged aborts an Update without writing.
var errUnchanged = errors.New("unchanged")

type Repo struct {
	doc    *database.Document[models.UsersDocument]
	hasher PasswordHasher

	now   func() time.Time
	newID func() string
}

func NewRepo(doc *database.Document[models.UsersDocument], hasher PasswordHasher) *Repo {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &Repo{
		doc:    doc,
		hasher: hasher,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns the users document as stored, passwords included.
func (r *Repo) List(ctx context.Context) models.UsersDocument {
	return r.doc.Read(ctx)
}

// Signup stores a new user. Any existing user with the same email or the
// same username blocks it. The returned record has no password.
func (r *Repo) Signup(ctx context.Context, username, email, password string) (models.User, error) {
	stored, err := r.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	var created models.User
	err = r.doc.Update(ctx, func(d *models.UsersDocument) error {
		for _, u := range d.Users {
			if u.Email == email || u.Username == username {
				return ErrUserExists
			}
		}
		created = models.User{
			ID:        r.newID(),
			Username:  username,
			Email:     email,
			Password:  stored,
			CreatedAt: r.now().UTC().Format(models.TimeLayout),
		}
		d.Users = append(d.Users, created)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return created.Public(), nil
}

func (r *Repo) Login(ctx context.Context, email, password string) (models.User, error) {
	d := r.doc.Read(ctx)
	for _, u := range d.Users {
		if u.Email == email && r.hasher.Matches(u.Password, password) {
			return u.Public(), nil
		}
	}
	return models.User{}, ErrInvalidCredentials
}

// PurchasedCourses never returns nil for an existing user.
func (r *Repo) PurchasedCourses(ctx context.Context, userID string) ([]string, error) {
	u, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.PurchasedCourses == nil {
		return []string{}, nil
	}
	return u.PurchasedCourses, nil
}

// PurchaseCourse adds courseName once. Buying a course twice is a no-op;
// added reports whether the list changed.
func (r *Repo) PurchaseCourse(ctx context.Context, userID, courseName string) (courses []string, added bool, err error) {
	err = r.doc.Update(ctx, func(d *models.UsersDocument) error {
		u := findUser(d, userID)
		if u == nil {
			return ErrNotFound
		}
		if u.PurchasedCourses == nil {
			u.PurchasedCourses = []string{}
		}
		courses = u.PurchasedCourses
		for _, c := range u.PurchasedCourses {
			if c == courseName {
				return errUnchanged
			}
		}
		u.PurchasedCourses = append(u.PurchasedCourses, courseName)
		courses = u.PurchasedCourses
		added = true
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return courses, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return courses, added, nil
}

// Progress never returns nil for an existing user.
func (r *Repo) Progress(ctx context.Context, userID string) (models.Progress, error) {
	u, err := r.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Progress == nil {
		return models.Progress{}, nil
	}
	return u.Progress, nil
}

// UpdateProgress sets progress[language][lessonID], overwriting any prior
// value, and returns the user's whole progress map.
func (r *Repo) UpdateProgress(ctx context.Context, userID, language, lessonID string, completed models.LessonStatus) (models.Progress, error) {
	var progress models.Progress
	err := r.doc.Update(ctx, func(d *models.UsersDocument) error {
		u := findUser(d, userID)
		if u == nil {
			return ErrNotFound
		}
		if u.Progress == nil {
			u.Progress = models.Progress{}
		}
		if u.Progress[language] == nil {
			u.Progress[language] = map[string]models.LessonStatus{}
		}
		u.Progress[language][lessonID] = completed
		progress = u.Progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *Repo) find(ctx context.Context, userID string) (models.User, error) {
	d := r.doc.Read(ctx)
	if u := findUser(&d, userID); u != nil {
		return *u, nil
	}
	return models.User{}, ErrNotFound
}

func findUser(d *models.UsersDocument, id string) *models.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}
