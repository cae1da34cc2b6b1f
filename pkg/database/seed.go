package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"learnhub/pkg/models"
)

// LoadBlogsFromJSON accepts either a bare array of blogs or a {"blogs": [...]} document.
func LoadBlogsFromJSON(jsonPath string) ([]models.Blog, error) {
	b, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read blogs json: %w", err)
	}

	var list []models.Blog
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}

	var doc models.BlogsDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal blogs json: %w", err)
	}
	return doc.Blogs, nil
}

// SeedBlogs appends blogs whose id is not stored yet and reports how many were added.
func SeedBlogs(ctx context.Context, doc *Document[models.BlogsDocument], blogs []models.Blog) (int, error) {
	inserted := 0
	err := doc.Update(ctx, func(d *models.BlogsDocument) error {
		seen := make(map[string]struct{}, len(d.Blogs))
		for _, b := range d.Blogs {
			seen[b.ID] = struct{}{}
		}
		for _, b := range blogs {
			if b.ID == "" {
				return fmt.Errorf("seed blog %q has no id", b.Title)
			}
			if _, ok := seen[b.ID]; ok {
				continue
			}
			if b.Category == "" {
				b.Category = models.DefaultCategory
			}
			d.Blogs = append(d.Blogs, b)
			seen[b.ID] = struct{}{}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
