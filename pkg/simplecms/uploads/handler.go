// Package uploads serves the image upload endpoint used by the markdown
// editor and the admin file inputs, and serves uploaded blobs back.
//
// The upload endpoint speaks the editor's wire contract: the file arrives
// as the multipart field "image", success returns
// {"data":{"filePath":"/uploads/<id>"}}, and failures return one of the
// error codes the editor knows how to display (noFileGiven,
// typeNotAllowed, fileTooLarge, importError).
package uploads

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Editor error codes, fixed by the markdown editor's upload protocol.
const (
	errNoFileGiven    = "noFileGiven"
	errTypeNotAllowed = "typeNotAllowed"
	errFileTooLarge   = "fileTooLarge"
	errImportError    = "importError"
)

// UploadResponse is the success body of an upload.
type UploadResponse struct {
	Data UploadData `json:"data"`
}

// UploadData carries the public path of the stored blob.
type UploadData struct {
	FilePath string `json:"filePath"`
}

// UploadError is the failure body of an upload.
type UploadError struct {
	Error string `json:"error"`
}

// Handler accepts uploads into a blob store and serves them back by id.
type Handler struct {
	store    simplecms.BlobStore
	config   simplecms.EditorConfig
	basePath string
}

// NewHandler creates an upload handler. basePath is the public mount point
// used in returned file paths, "/uploads" by convention.
func NewHandler(store simplecms.BlobStore, config simplecms.EditorConfig, basePath string) *Handler {
	if basePath == "" {
		basePath = "/uploads"
	}
	return &Handler{store: store, config: config, basePath: basePath}
}

// Routes returns the upload routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Get("/{id}", h.Serve)
	return r
}

// Upload stores the multipart "image" field as a new blob. The content type
// is sniffed from the bytes, never trusted from the client.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Cap the whole request a little above the file limit so multipart
	// overhead does not reject maximum-size files.
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize+64*1024)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeUploadError(w, r, http.StatusRequestEntityTooLarge, errFileTooLarge)
			return
		}
		if errors.Is(err, http.ErrMissingFile) {
			writeUploadError(w, r, http.StatusBadRequest, errNoFileGiven)
			return
		}
		writeUploadError(w, r, http.StatusBadRequest, errImportError)
		return
	}
	defer file.Close()

	if header.Size > h.config.MaxUploadSize {
		writeUploadError(w, r, http.StatusRequestEntityTooLarge, errFileTooLarge)
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeUploadError(w, r, http.StatusBadRequest, errImportError)
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !h.config.TypeAllowed(contentType) {
		writeUploadError(w, r, http.StatusUnsupportedMediaType, errTypeNotAllowed)
		return
	}

	id := uuid.NewString()
	err = h.store.Upload(r.Context(), id, io.MultiReader(bytes.NewReader(head[:n]), file), simplecms.BlobMeta{
		ContentType: contentType,
		FileName:    header.Filename,
		Size:        header.Size,
	})
	if err != nil {
		slog.Error("Failed to store upload", "error", err)
		writeUploadError(w, r, http.StatusBadRequest, errImportError)
		return
	}

	slog.Info("Upload stored", "id", id, "content_type", contentType, "size", header.Size)
	render.JSON(w, r, UploadResponse{Data: UploadData{FilePath: h.basePath + "/" + id}})
}

// Serve streams an uploaded blob with its stored content type.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	meta, err := h.store.Meta(r.Context(), id)
	if err != nil {
		if errors.Is(err, simplecms.ErrBlobNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to stat upload", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	blob, err := h.store.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, simplecms.ErrBlobNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to read upload", "id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if meta.FileName != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": meta.FileName}))
	}
	if _, err := io.Copy(w, blob); err != nil {
		slog.Error("Failed to stream upload", "id", id, "error", err)
	}
}

func writeUploadError(w http.ResponseWriter, r *http.Request, status int, code string) {
	render.Status(r, status)
	render.JSON(w, r, UploadError{Error: code})
}
