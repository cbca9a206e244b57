package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-list-api/app/models"

	"gorm.io/gorm"
)

// SQLItemStore persists items in a relational table through gorm.
type SQLItemStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLItemStore migrates the item table and returns a store over db.
func NewSQLItemStore(db *gorm.DB) (*SQLItemStore, error) {
	if err := db.AutoMigrate(&models.Item{}); err != nil {
		return nil, fmt.Errorf("migrate items: %w", err)
	}
	return &SQLItemStore{db: db, now: time.Now}, nil
}

// ListItems retrieves all items from the database.
func (s *SQLItemStore) ListItems(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CreateItem inserts a new row and returns it with its assigned id.
func (s *SQLItemStore) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	created := *item
	created.ID = 0
	created.FillDefaults(s.now())
	if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &created, nil
}

// GetItem retrieves a single item by its id.
func (s *SQLItemStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return &item, nil
}

// UpdateItem overwrites every column of an existing row in one transaction.
func (s *SQLItemStore) UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	updated := *item
	updated.ID = id
	updated.FillDefaults(s.now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Item
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}
	return &updated, nil
}

// DeleteItem removes a row and returns it as it was before deletion.
func (s *SQLItemStore) DeleteItem(ctx context.Context, id int64) (*models.Item, error) {
	var deleted models.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("delete item %d: %w", id, err)
	}
	return &deleted, nil
}

// Close closes the underlying connection pool.
func (s *SQLItemStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
