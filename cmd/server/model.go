package main

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Category buckets posts in the demo model.
type Category string

func (Category) EnumValues() []string {
	return []string{"article", "tutorial", "note"}
}

// Block is one section of a post body. Exactly one variant is set; Kind
// names which.
type Block struct {
	Kind      string     `json:"kind" cms:"discriminator"`
	Paragraph *Paragraph `json:"paragraph,omitempty" cms:"variant"`
	Quote     *Quote     `json:"quote,omitempty" cms:"variant"`
	Embed     *Embed     `json:"embed,omitempty" cms:"variant"`
}

type Paragraph struct {
	Text simplecms.Markdown `json:"text"`
}

type Quote struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type Embed struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// Post is the main demo content type.
type Post struct {
	ID        uuid.UUID          `json:"id" cms:"id" gorm:"type:uuid;primaryKey"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug" cms:"skipinput"`
	Category  Category           `json:"category"`
	Content   simplecms.Markdown `json:"content"`
	Blocks    []Block            `json:"blocks" gorm:"serializer:json"`
	Cover     *simplecms.Image   `json:"cover,omitempty"`
	Published time.Time          `json:"published"`
	Draft     bool               `json:"draft"`
}

// OnCreate derives the slug from the title and stamps the publication time.
func (p *Post) OnCreate(ctx context.Context) error {
	if p.Slug == "" {
		p.Slug = slugify(p.Title)
	}
	if p.Published.IsZero() {
		p.Published = time.Now().UTC()
	}
	return nil
}

// Author writes posts.
type Author struct {
	ID     uuid.UUID          `json:"id" cms:"id" gorm:"type:uuid;primaryKey"`
	Name   string             `json:"name"`
	Bio    simplecms.Markdown `json:"bio"`
	Avatar *simplecms.Image   `json:"avatar,omitempty"`
}

// slugify reduces a title to a lowercase hyphenated URL segment.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
