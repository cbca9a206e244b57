package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todo-list-api/app/models"
	"todo-list-api/app/services"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

const validBody = `{"title":"Buy milk","content":"2%","timestamp":"2024-01-01T10:00:00","deadline":"2024-01-02T10:00:00","completed":false}`

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (s failingStore) ListItems(ctx context.Context) ([]models.Item, error) { return nil, s.err }
func (s failingStore) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	return nil, s.err
}
func (s failingStore) GetItem(ctx context.Context, id int64) (*models.Item, error) { return nil, s.err }
func (s failingStore) UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	return nil, s.err
}
func (s failingStore) DeleteItem(ctx context.Context, id int64) (*models.Item, error) {
	return nil, s.err
}
func (s failingStore) Close(ctx context.Context) error { return nil }

func newController(store services.ItemStore) *ItemController {
	return NewItemController(store, log.New(io.Discard))
}

func request(method, id, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/to-do-list/"+id, reader)
	if id != "" {
		req = mux.SetURLVars(req, map[string]string{"id": id})
	}
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestCreateItem(t *testing.T) {
	c := newController(services.NewMemoryItemStore())
	rec := httptest.NewRecorder()
	c.CreateItem(rec, request(http.MethodPost, "", validBody))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var got map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"id":        float64(1),
		"title":     "Buy milk",
		"content":   "2%",
		"timestamp": "2024-01-01T10:00:00",
		"deadline":  "2024-01-02T10:00:00",
		"completed": false,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %v, want %v", k, got[k], v)
		}
	}
}

func TestCreateItemValidation(t *testing.T) {
	c := newController(services.NewMemoryItemStore())
	rec := httptest.NewRecorder()
	c.CreateItem(rec, request(http.MethodPost, "", `{"timestamp":"2024-01-01T10:00:00","completed":false}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Status != statusSaveFailed {
		t.Errorf("status: got %q, want %q", body.Status, statusSaveFailed)
	}
	if body.StatusCode != "400" {
		t.Errorf("statusCode: got %q, want 400", body.StatusCode)
	}
	if !strings.Contains(body.Message, "title") {
		t.Errorf("message %q does not name the title field", body.Message)
	}
}

func TestNotFound(t *testing.T) {
	c := newController(services.NewMemoryItemStore())
	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		body    string
	}{
		{"get", c.GetItem, http.MethodGet, ""},
		{"update", c.UpdateItem, http.MethodPut, validBody},
		{"delete", c.DeleteItem, http.MethodDelete, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, request(tt.method, "5", tt.body))

			if rec.Code != http.StatusNotFound {
				t.Fatalf("status: got %d, want 404", rec.Code)
			}
			body := decodeError(t, rec)
			if body.Status != statusNotFound || body.StatusCode != "404" {
				t.Errorf("body: got %+v", body)
			}
		})
	}
}

func TestInvalidID(t *testing.T) {
	c := newController(services.NewMemoryItemStore())
	rec := httptest.NewRecorder()
	c.GetItem(rec, request(http.MethodGet, "0", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Status != statusFetchFailed {
		t.Errorf("status: got %q, want %q", body.Status, statusFetchFailed)
	}
}

func TestUpdateValidatesBeforeLookup(t *testing.T) {
	c := newController(services.NewMemoryItemStore())
	rec := httptest.NewRecorder()
	c.UpdateItem(rec, request(http.MethodPut, "9", `{"title":"x"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Status != statusUpdateFailed {
		t.Errorf("status: got %q, want %q", body.Status, statusUpdateFailed)
	}
}

func TestStoreFailures(t *testing.T) {
	c := newController(failingStore{err: errors.New("disk on fire")})
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		method   string
		id       string
		body     string
		wantCode int
		status   string
	}{
		{"list", c.ListItems, http.MethodGet, "", "", http.StatusInternalServerError, statusListFailed},
		{"create", c.CreateItem, http.MethodPost, "", validBody, http.StatusBadRequest, statusSaveFailed},
		{"get", c.GetItem, http.MethodGet, "1", "", http.StatusBadRequest, statusFetchFailed},
		{"update", c.UpdateItem, http.MethodPut, "1", validBody, http.StatusBadRequest, statusUpdateFailed},
		{"delete", c.DeleteItem, http.MethodDelete, "1", "", http.StatusBadRequest, statusDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, request(tt.method, tt.id, tt.body))

			if rec.Code != tt.wantCode {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			body := decodeError(t, rec)
			if body.Status != tt.status {
				t.Errorf("status: got %q, want %q", body.Status, tt.status)
			}
			if strings.Contains(body.Message, "disk on fire") {
				t.Errorf("message leaks store error: %q", body.Message)
			}
		})
	}
}

func TestListItemsEmptyArray(t *testing.T) {
	c := newController(services.NewMemoryItemStore())
	rec := httptest.NewRecorder()
	c.ListItems(rec, request(http.MethodGet, "", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body: got %q, want []", got)
	}
}
