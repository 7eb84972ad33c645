package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
)

type Event struct {
	ID    uuid.UUID `json:"id" cms:"id"`
	Title string    `json:"title"`
	Venue string    `json:"venue"`
	Seats int       `json:"seats"`
}

// setupEntityHandlerTest builds a router serving the Event entity backed by
// an in-memory repository.
func setupEntityHandlerTest(t *testing.T) (chi.Router, simplecms.Service) {
	t.Helper()
	service, err := simplecms.New(
		simplecms.WithRepository(memory.New()),
		simplecms.WithEntity(&Event{}),
		simplecms.WithHooks(simplecms.Hooks{
			BeforeCreate: []simplecms.BeforeCreateHook{
				func(ctx context.Context, sc *simplecms.Schema, entity any) error {
					if e, ok := entity.(*Event); ok && e.Title == "veto" {
						return errors.New("title rejected")
					}
					return nil
				},
			},
		}),
	)
	require.NoError(t, err)

	return NewEntityHandler(service).Routes(), service
}

func createEvent(t *testing.T, router chi.Router, event Event) Event {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func TestEntityHandler_Create_Success(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	created := createEvent(t, router, Event{Title: "GopherCon", Venue: "Chicago", Seats: 900})
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "GopherCon", created.Title)
}

func TestEntityHandler_Create_MalformedBody(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestEntityHandler_Create_HookVeto(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	body, _ := json.Marshal(Event{Title: "veto"})
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title rejected")
}

func TestEntityHandler_Get(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)
	created := createEvent(t, router, Event{Title: "FOSDEM", Venue: "Brussels"})

	req := httptest.NewRequest(http.MethodGet, "/event/"+created.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "FOSDEM", got.Title)
}

func TestEntityHandler_Get_NotFound(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/event/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestEntityHandler_Get_InvalidID(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/event/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntityHandler_List_And_Filter(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)
	createEvent(t, router, Event{Title: "A", Venue: "Berlin"})
	createEvent(t, router, Event{Title: "B", Venue: "Berlin"})
	createEvent(t, router, Event{Title: "C", Venue: "Tokyo"})

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var all []Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	req = httptest.NewRequest(http.MethodGet, "/events?venue=Berlin", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var berlin []Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &berlin))
	assert.Len(t, berlin, 2)

	// numbers are not filterable
	req = httptest.NewRequest(http.MethodGet, "/events?seats=900", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/events?bogus=x", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntityHandler_Update_FullReplace(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)
	created := createEvent(t, router, Event{Title: "Original", Venue: "Oslo", Seats: 100})

	body, _ := json.Marshal(Event{Title: "Replaced"})
	req := httptest.NewRequest(http.MethodPost, "/event/"+created.ID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID, "the path id is authoritative")
	assert.Equal(t, "Replaced", updated.Title)
	assert.Empty(t, updated.Venue, "updates replace the whole entity")
	assert.Zero(t, updated.Seats)
}

func TestEntityHandler_Update_NotFound(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	body, _ := json.Marshal(Event{Title: "Ghost"})
	req := httptest.NewRequest(http.MethodPost, "/event/"+uuid.NewString(), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntityHandler_Delete_ReturnsEntity(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)
	created := createEvent(t, router, Event{Title: "Closing Down", Venue: "Lisbon"})

	req := httptest.NewRequest(http.MethodDelete, "/event/"+created.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var deleted Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, "Closing Down", deleted.Title)

	req = httptest.NewRequest(http.MethodDelete, "/event/"+created.ID.String(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntityHandler_UnknownCollection(t *testing.T) {
	router, _ := setupEntityHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/widgets", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "routes exist only for registered entities")
}
