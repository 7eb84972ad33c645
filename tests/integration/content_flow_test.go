package integration

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/tests/testutil"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)

// TestContentWorkflow drives one article through every surface of the CMS:
// JSON API writes, filtered listing, the admin UI, uploads and deletion.
func TestContentWorkflow(t *testing.T) {
	server := testutil.SetupTestServer()
	defer server.Close()

	// 1. Create an article through the JSON API
	article := testutil.CreateArticle(t, server.URL, map[string]any{
		"title":  "Hello World",
		"status": "published",
		"body":   "The very first article.",
		"draft":  false,
	})
	assert.NotEmpty(t, article.ID)
	assert.Equal(t, "hello-world", article.Slug)

	// 2. Fetch it back by id
	got := testutil.GetArticle(t, server.URL, article.ID)
	assert.Equal(t, article, got)

	// 3. Create a draft next to it
	draft := testutil.CreateArticle(t, server.URL, map[string]any{
		"title":  "Work In Progress",
		"status": "draft",
		"body":   "Not done yet.",
		"draft":  true,
	})

	// 4. Filtered and unfiltered listings
	published := testutil.ListArticles(t, server.URL, "status=published")
	require.Len(t, published, 1)
	assert.Equal(t, article.ID, published[0].ID)

	all := testutil.ListArticles(t, server.URL, "")
	assert.Len(t, all, 2)

	// 5. The admin list page shows both articles
	resp, err := http.Get(server.URL + "/articles")
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Hello World")
	assert.Contains(t, string(page), "Work In Progress")

	// 6. Create a third article through the admin form
	formResp := testutil.PostAdminForm(t, server.URL, "/articles/add", url.Values{
		"Title":  {"Posted Via Form"},
		"Status": {"draft"},
		"Body":   {"From the admin."},
		"Draft":  {"on"},
	})
	formResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, formResp.StatusCode)
	location := formResp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/article/"), location)
	formID := strings.TrimPrefix(location, "/article/")

	fromForm := testutil.GetArticle(t, server.URL, formID)
	assert.Equal(t, "Posted Via Form", fromForm.Title)
	assert.Equal(t, "posted-via-form", fromForm.Slug)
	assert.True(t, fromForm.Draft)

	// 7. Editing through the admin form keeps the derived slug
	editResp := testutil.PostAdminForm(t, server.URL, "/article/"+formID, url.Values{
		"Title":  {"Posted Via Form, Edited"},
		"Status": {"published"},
		"Body":   {"From the admin, twice."},
	})
	editResp.Body.Close()
	require.Equal(t, http.StatusSeeOther, editResp.StatusCode)

	edited := testutil.GetArticle(t, server.URL, formID)
	assert.Equal(t, "Posted Via Form, Edited", edited.Title)
	assert.Equal(t, "posted-via-form", edited.Slug)
	assert.False(t, edited.Draft)

	// 8. Upload an image and fetch it back
	filePath := testutil.UploadImage(t, server.URL, "cover.png", pngBytes)
	imgResp, err := http.Get(server.URL + filePath)
	require.NoError(t, err)
	imgData, err := io.ReadAll(imgResp.Body)
	imgResp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, imgResp.StatusCode)
	assert.Equal(t, "image/png", imgResp.Header.Get("Content-Type"))
	assert.Equal(t, pngBytes, imgData)

	// 9. Deleting returns the final representation, then the id is gone
	deleted := testutil.DeleteArticle(t, server.URL, draft.ID)
	assert.Equal(t, "Work In Progress", deleted.Title)

	gone, err := http.Get(server.URL + "/api/v1/article/" + draft.ID)
	require.NoError(t, err)
	gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)

	remaining := testutil.ListArticles(t, server.URL, "")
	assert.Len(t, remaining, 2)
}
