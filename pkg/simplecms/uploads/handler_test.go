package uploads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)

func setupUploadTest(t *testing.T, config simplecms.EditorConfig) chi.Router {
	t.Helper()
	handler := NewHandler(memorystorage.New(), config, "/uploads")
	r := chi.NewRouter()
	r.Mount("/uploads", handler.Routes())
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload_Success(t *testing.T) {
	router := setupUploadTest(t, simplecms.DefaultEditorConfig())

	body, contentType := multipartBody(t, "image", "shot.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.Data.FilePath, "/uploads/"), resp.Data.FilePath)

	// the stored blob is served back with the sniffed content type
	req = httptest.NewRequest(http.MethodGet, resp.Data.FilePath, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline; filename=shot.png", w.Header().Get("Content-Disposition"))
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestUpload_NoFileGiven(t *testing.T) {
	router := setupUploadTest(t, simplecms.DefaultEditorConfig())

	body, contentType := multipartBody(t, "other", "shot.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"noFileGiven"}`, w.Body.String())
}

func TestUpload_TypeNotAllowed(t *testing.T) {
	router := setupUploadTest(t, simplecms.DefaultEditorConfig())

	body, contentType := multipartBody(t, "image", "notes.txt", []byte("plain text, not an image"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.JSONEq(t, `{"error":"typeNotAllowed"}`, w.Body.String())
}

func TestUpload_FileTooLarge(t *testing.T) {
	config := simplecms.DefaultEditorConfig()
	config.MaxUploadSize = 16
	router := setupUploadTest(t, config)

	body, contentType := multipartBody(t, "image", "big.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"fileTooLarge"}`, w.Body.String())
}

func TestUpload_NotMultipart(t *testing.T) {
	router := setupUploadTest(t, simplecms.DefaultEditorConfig())

	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader("raw"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"importError"}`, w.Body.String())
}

func TestServe_NotFound(t *testing.T) {
	router := setupUploadTest(t, simplecms.DefaultEditorConfig())

	req := httptest.NewRequest(http.MethodGet, "/uploads/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
