package blog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"learnhub/pkg/database"
	"learnhub/pkg/models"
)

var ErrNotFound = errors.New("blog not found")

type Input struct {
	Title        string
	Summary      string
	Content      string
	Category     string
	Author       string
	AuthorID     string
	ImagePreview string
}

type Repo struct {
	doc *database.Document[models.BlogsDocument]

	now   func() time.Time
	newID func() string
}

func NewRepo(doc *database.Document[models.BlogsDocument]) *Repo {
	return &Repo{
		doc:   doc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (r *Repo) List(ctx context.Context) models.BlogsDocument {
	return r.doc.Read(ctx)
}

// Create appends a blog; an empty category becomes models.DefaultCategory.
func (r *Repo) Create(ctx context.Context, in Input) (models.Blog, error) {
	category := in.Category
	if category == "" {
		category = models.DefaultCategory
	}

	var created models.Blog
	err := r.doc.Update(ctx, func(d *models.BlogsDocument) error {
		created = models.Blog{
			ID:           r.newID(),
			Title:        in.Title,
			Summary:      in.Summary,
			Content:      in.Content,
			Category:     category,
			Author:       in.Author,
			AuthorID:     in.AuthorID,
			ImagePreview: in.ImagePreview,
			CreatedAt:    r.now().UTC().Format(models.TimeLayout),
		}
		d.Blogs = append(d.Blogs, created)
		return nil
	})
	if err != nil {
		return models.Blog{}, err
	}
	return created, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	return r.doc.Update(ctx, func(d *models.BlogsDocument) error {
		for i := range d.Blogs {
			if d.Blogs[i].ID == id {
				d.Blogs = append(d.Blogs[:i], d.Blogs[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}
