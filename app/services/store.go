package services

import (
	"context"
	"errors"
	"fmt"

	"todo-list-api/app/models"
)

// ErrNotFound is matched by every NotFoundError via errors.Is.
var ErrNotFound = errors.New("item not found")

// NotFoundError reports an id that does not resolve to an item.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %d does not exist", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ItemStore is the persistence layer for to-do items. Implementations own
// id assignment and return *NotFoundError for ids that do not resolve.
type ItemStore interface {
	// ListItems returns every item ordered by id.
	ListItems(ctx context.Context) ([]models.Item, error)
	// CreateItem assigns an id to item and persists it.
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	// UpdateItem overwrites every field of the item with the given id.
	UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error)
	// DeleteItem removes the item and returns it as it was.
	DeleteItem(ctx context.Context, id int64) (*models.Item, error)
	Close(ctx context.Context) error
}
