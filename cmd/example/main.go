// Command example walks through the simple-cms library API without any HTTP
// server: it registers an entity type, then creates, decodes, filters,
// updates and deletes content against an in-memory repository.
package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
)

// Article is the content type used by the walkthrough.
type Article struct {
	ID      uuid.UUID          `json:"id" cms:"id"`
	Title   string             `json:"title"`
	Slug    string             `json:"slug" cms:"skipinput"`
	Status  Status             `json:"status"`
	Body    simplecms.Markdown `json:"body"`
	Minutes int                `json:"minutes"`
}

type Status string

func (Status) EnumValues() []string { return []string{"draft", "published"} }

// OnCreate derives the slug from the title.
func (a *Article) OnCreate(ctx context.Context) error {
	if a.Slug == "" {
		a.Slug = strings.ReplaceAll(strings.ToLower(a.Title), " ", "-")
	}
	return nil
}

func main() {
	svc, err := simplecms.New(
		simplecms.WithRepository(memoryrepo.New()),
		simplecms.WithEntity(&Article{}),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	if err := executeContentFlow(context.Background(), svc); err != nil {
		log.Fatalf("Content flow failed: %v", err)
	}

	log.Println("Content flow completed successfully!")
}

func executeContentFlow(ctx context.Context, svc simplecms.Service) error {
	schema, ok := svc.Registry().ByName("article")
	if !ok {
		return fmt.Errorf("article entity not registered")
	}
	log.Printf("Registered entity %q (table %s, API path /api/v1/%s)",
		schema.Name, schema.Table(), schema.PluralPath)

	// 1. Create an article from a typed struct
	log.Println("Creating an article from Go code...")
	first := &Article{Title: "Getting Started", Status: "published", Body: "Welcome!", Minutes: 4}
	created, err := svc.CreateEntity(ctx, simplecms.CreateEntityRequest{Name: "article", Entity: first})
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	log.Printf("Created article %s with slug %q", first.ID, created.(*Article).Slug)

	// 2. Create another one the way the JSON API does
	log.Println("Creating an article from a JSON body...")
	body := strings.NewReader(`{"title":"Deep Dive","status":"draft","body":"...","minutes":12}`)
	decoded, err := svc.DecodeJSON(schema, body)
	if err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	if _, err := svc.CreateEntity(ctx, simplecms.CreateEntityRequest{Name: "article", Entity: decoded}); err != nil {
		return fmt.Errorf("failed to create decoded article: %w", err)
	}

	// 3. Decode an admin form submission (dot notation, checkbox "on")
	log.Println("Decoding an admin form submission...")
	form := url.Values{
		"Title":   {"Form Post"},
		"Status":  {"draft"},
		"Body":    {"Posted through the admin form."},
		"Minutes": {"7"},
	}
	fromForm, err := svc.DecodeForm(schema, form)
	if err != nil {
		return fmt.Errorf("failed to decode form: %w", err)
	}
	if _, err := svc.CreateEntity(ctx, simplecms.CreateEntityRequest{Name: "article", Entity: fromForm}); err != nil {
		return fmt.Errorf("failed to create form article: %w", err)
	}

	// 4. List drafts only
	drafts, err := svc.ListEntities(ctx, simplecms.ListEntitiesRequest{
		Name:    "article",
		Filters: url.Values{"status": {"draft"}},
	})
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}
	log.Printf("Found %d draft articles", len(drafts))

	// 5. Publish the form post, keeping its derived slug
	update := fromForm.(*Article)
	update.Status = "published"
	updated, err := svc.UpdateEntity(ctx, simplecms.UpdateEntityRequest{
		Name:            "article",
		ID:              update.ID.String(),
		Entity:          update,
		PreserveSkipped: true,
	})
	if err != nil {
		return fmt.Errorf("failed to publish article: %w", err)
	}
	log.Printf("Published %q (slug %q)", updated.(*Article).Title, updated.(*Article).Slug)

	// 6. Delete the first article; the response is its final state
	deleted, err := svc.DeleteEntity(ctx, simplecms.DeleteEntityRequest{Name: "article", ID: first.ID.String()})
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	log.Printf("Deleted %q", deleted.(*Article).Title)

	return nil
}
