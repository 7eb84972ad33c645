package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// ArticleResponse represents an article as the JSON API returns it
type ArticleResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
	Body   string `json:"body"`
	Draft  bool   `json:"draft"`
}

// CreateArticle creates an article via the JSON API
func CreateArticle(t *testing.T, serverURL string, payload map[string]any) ArticleResponse {
	t.Helper()
	reqJSON, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/api/v1/articles", "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	return decodeArticle(t, resp.Body)
}

// GetArticle fetches one article via the JSON API
func GetArticle(t *testing.T, serverURL, id string) ArticleResponse {
	t.Helper()
	resp, err := http.Get(serverURL + "/api/v1/article/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return decodeArticle(t, resp.Body)
}

// ListArticles lists articles via the JSON API; query is a raw query string
// such as "status=published" and may be empty.
func ListArticles(t *testing.T, serverURL, query string) []ArticleResponse {
	t.Helper()
	u := serverURL + "/api/v1/articles"
	if query != "" {
		u += "?" + query
	}
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var articles []ArticleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&articles))
	return articles
}

// UpdateArticle replaces an article via the JSON API
func UpdateArticle(t *testing.T, serverURL, id string, payload map[string]any) ArticleResponse {
	t.Helper()
	reqJSON, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/api/v1/article/"+id, "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return decodeArticle(t, resp.Body)
}

// DeleteArticle deletes an article via the JSON API and returns its final
// state.
func DeleteArticle(t *testing.T, serverURL, id string) ArticleResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, serverURL+"/api/v1/article/"+id, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return decodeArticle(t, resp.Body)
}

func decodeArticle(t *testing.T, r io.Reader) ArticleResponse {
	t.Helper()
	var article ArticleResponse
	require.NoError(t, json.NewDecoder(r).Decode(&article))
	return article
}

// UploadImage uploads image bytes through the editor upload endpoint and
// returns the served file path.
func UploadImage(t *testing.T, serverURL, filename string, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(serverURL+"/uploads", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			FilePath string `json:"filePath"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Data.FilePath)
	return result.Data.FilePath
}

// NoRedirectClient returns an http.Client that surfaces redirects instead of
// following them, for asserting on admin form flows.
func NoRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// PostAdminForm submits an urlencoded admin form without following the
// redirect and returns the response.
func PostAdminForm(t *testing.T, serverURL, path string, values url.Values) *http.Response {
	t.Helper()
	resp, err := NoRedirectClient().Post(
		serverURL+path,
		"application/x-www-form-urlencoded",
		bytes.NewBufferString(values.Encode()),
	)
	require.NoError(t, err)
	return resp
}
