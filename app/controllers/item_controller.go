package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"todo-list-api/app/middleware"
	"todo-list-api/app/models"
	"todo-list-api/app/services"
	"todo-list-api/app/validation"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds request bodies; an item is a few hundred bytes.
const maxBodyBytes = 1 << 20

// Failure statuses reported in the error body.
const (
	statusListFailed   = "Could not resolve"
	statusSaveFailed   = "Could not save item"
	statusFetchFailed  = "Could not fetch item"
	statusUpdateFailed = "Could not update item"
	statusDeleteFailed = "Could not delete item"
	statusNotFound     = "Item does not exist"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Status     string `json:"status"`
	StatusCode string `json:"statusCode"`
	Message    string `json:"message"`
}

// ItemController handles HTTP requests for to-do items.
type ItemController struct {
	Store  services.ItemStore
	Logger *log.Logger
}

// NewItemController creates a new ItemController.
func NewItemController(store services.ItemStore, logger *log.Logger) *ItemController {
	return &ItemController{Store: store, Logger: logger}
}

// ListItems handles GET /to-do-list/.
func (c *ItemController) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := c.Store.ListItems(r.Context())
	if err != nil {
		c.logFailure(r, statusListFailed, err)
		writeError(w, http.StatusInternalServerError, statusListFailed, "the item list could not be read")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateItem handles POST /to-do-list/.
func (c *ItemController) CreateItem(w http.ResponseWriter, r *http.Request) {
	item, err := readItem(w, r)
	if err != nil {
		c.fail(w, r, statusSaveFailed, err)
		return
	}

	created, err := c.Store.CreateItem(r.Context(), item)
	if err != nil {
		c.fail(w, r, statusSaveFailed, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetItem handles GET /to-do-list/{id}.
func (c *ItemController) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		c.fail(w, r, statusFetchFailed, err)
		return
	}

	item, err := c.Store.GetItem(r.Context(), id)
	if err != nil {
		c.fail(w, r, statusFetchFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /to-do-list/{id}. Every field is replaced.
func (c *ItemController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		c.fail(w, r, statusUpdateFailed, err)
		return
	}
	item, err := readItem(w, r)
	if err != nil {
		c.fail(w, r, statusUpdateFailed, err)
		return
	}

	updated, err := c.Store.UpdateItem(r.Context(), id, item)
	if err != nil {
		c.fail(w, r, statusUpdateFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /to-do-list/{id}. A request body is accepted
// but not used.
func (c *ItemController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		c.fail(w, r, statusDeleteFailed, err)
		return
	}

	deleted, err := c.Store.DeleteItem(r.Context(), id)
	if err != nil {
		c.fail(w, r, statusDeleteFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// fail maps err to a response: NotFoundError is 404, everything else is a
// bad request reported under status.
func (c *ItemController) fail(w http.ResponseWriter, r *http.Request, status string, err error) {
	var notFound *services.NotFoundError
	var invalid *validation.ValidationError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, statusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, status, invalid.Error())
	default:
		c.logFailure(r, status, err)
		writeError(w, http.StatusBadRequest, status, "unexpected error while handling the request")
	}
}

func (c *ItemController) logFailure(r *http.Request, status string, err error) {
	c.Logger.Error(status,
		"err", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFrom(r.Context()),
	)
}

func itemID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &validation.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a positive integer", raw)}
	}
	return id, nil
}

func readItem(w http.ResponseWriter, r *http.Request) (*models.Item, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, &validation.ValidationError{Message: fmt.Sprintf("read request body: %v", err)}
	}
	return validation.ParseItem(body)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, status, message string) {
	writeJSON(w, code, ErrorResponse{
		Status:     status,
		StatusCode: strconv.Itoa(code),
		Message:    message,
	})
}
