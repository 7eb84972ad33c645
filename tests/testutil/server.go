package testutil

import (
	"context"
	"log"
	"net/http/httptest"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/app"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

// Article is the content type registered on test servers. It covers the
// field kinds the surfaces have to render and decode: markdown, enums,
// checkboxes and a derived skipinput slug.
type Article struct {
	ID     uuid.UUID          `json:"id" cms:"id"`
	Title  string             `json:"title"`
	Slug   string             `json:"slug" cms:"skipinput"`
	Status Status             `json:"status"`
	Body   simplecms.Markdown `json:"body"`
	Draft  bool               `json:"draft"`
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

// SetupTestServer creates a test server with all CMS surfaces mounted:
// admin UI, JSON API, uploads and static assets, everything in memory.
func SetupTestServer() *httptest.Server {
	cmsApp, err := app.New(
		app.WithRepository(memoryrepo.New()),
		app.WithBlobStore(memorystorage.New()),
		app.WithEntities(&Article{}),
	)
	if err != nil {
		log.Fatal(err)
	}
	return httptest.NewServer(cmsApp.Handler())
}

// SetupTestServerWith mounts the given app in a test server.
func SetupTestServerWith(cmsApp *app.App) *httptest.Server {
	return httptest.NewServer(cmsApp.Handler())
}
