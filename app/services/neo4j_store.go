package services

import (
	"context"
	"fmt"
	"time"

	"todo-list-api/app/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const itemProjection = "i.id AS id, i.title AS title, i.content AS content, " +
	"i.timestamp AS timestamp, i.deadline AS deadline, i.completed AS completed"

// Neo4jItemStore persists items as :Item nodes. Ids come from a single
// :ItemSequence counter node so they stay integers and are never reused.
type Neo4jItemStore struct {
	driver neo4j.DriverWithContext
	now    func() time.Time
}

// NewNeo4jItemStore creates the id constraint if needed and returns a store
// over driver.
func NewNeo4jItemStore(ctx context.Context, driver neo4j.DriverWithContext) (*Neo4jItemStore, error) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "CREATE CONSTRAINT item_id IF NOT EXISTS FOR (i:Item) REQUIRE i.id IS UNIQUE", nil)
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("create item constraint: %w", err)
	}
	return &Neo4jItemStore{driver: driver, now: time.Now}, nil
}

// ListItems retrieves all items ordered by id.
func (s *Neo4jItemStore) ListItems(ctx context.Context) ([]models.Item, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (i:Item) RETURN "+itemProjection+" ORDER BY i.id", nil)
		if err != nil {
			return nil, err
		}
		return collectItems(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return result.([]models.Item), nil
}

// CreateItem draws the next id from the sequence node and creates the item
// in the same transaction.
func (s *Neo4jItemStore) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	created := *item
	created.FillDefaults(s.now())

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MERGE (s:ItemSequence {name: 'item'}) "+
				"ON CREATE SET s.value = 0 "+
				"SET s.value = s.value + 1 "+
				"CREATE (i:Item {id: s.value, title: $title, content: $content, "+
				"timestamp: $timestamp, deadline: $deadline, completed: $completed}) "+
				"RETURN "+itemProjection,
			itemParams(&created),
		)
		if err != nil {
			return nil, err
		}
		return collectItems(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	items := result.([]models.Item)
	if len(items) != 1 {
		return nil, fmt.Errorf("create item: expected 1 row, got %d", len(items))
	}
	return &items[0], nil
}

// GetItem retrieves a single item by its id.
func (s *Neo4jItemStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (i:Item {id: $id}) RETURN "+itemProjection,
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		return collectItems(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return singleItem(result.([]models.Item), id)
}

// UpdateItem overwrites every property of an existing item.
func (s *Neo4jItemStore) UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	updated := *item
	updated.FillDefaults(s.now())
	params := itemParams(&updated)
	params["id"] = id

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (i:Item {id: $id}) "+
				"SET i.title = $title, i.content = $content, i.timestamp = $timestamp, "+
				"i.deadline = $deadline, i.completed = $completed "+
				"RETURN "+itemProjection,
			params,
		)
		if err != nil {
			return nil, err
		}
		return collectItems(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("update item %d: %w", id, err)
	}
	return singleItem(result.([]models.Item), id)
}

// DeleteItem deletes an item and its relationships.
func (s *Neo4jItemStore) DeleteItem(ctx context.Context, id int64) (*models.Item, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// Properties are projected before the node is gone.
		res, err := tx.Run(ctx,
			"MATCH (i:Item {id: $id}) "+
				"WITH i, "+itemProjection+" "+
				"DETACH DELETE i "+
				"RETURN id, title, content, timestamp, deadline, completed",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		return collectItems(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("delete item %d: %w", id, err)
	}
	return singleItem(result.([]models.Item), id)
}

// Close closes the driver.
func (s *Neo4jItemStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func itemParams(item *models.Item) map[string]any {
	params := map[string]any{
		"title":     item.Title,
		"content":   nil,
		"timestamp": neo4j.LocalDateTime(item.Timestamp),
		"deadline":  nil,
		"completed": item.Completed,
	}
	if item.Content != nil {
		params["content"] = *item.Content
	}
	if item.Deadline != nil {
		params["deadline"] = neo4j.LocalDateTime(*item.Deadline)
	}
	return params
}

func collectItems(ctx context.Context, res neo4j.ResultWithContext) ([]models.Item, error) {
	items := []models.Item{}
	for res.Next(ctx) {
		item, err := recordToItem(res.Record())
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func recordToItem(record *neo4j.Record) (models.Item, error) {
	id, ok := record.Values[0].(int64)
	if !ok {
		return models.Item{}, fmt.Errorf("unexpected id type %T", record.Values[0])
	}
	title, _ := record.Values[1].(string)
	timestamp, ok := record.Values[3].(neo4j.LocalDateTime)
	if !ok {
		return models.Item{}, fmt.Errorf("item %d: unexpected timestamp type %T", id, record.Values[3])
	}
	completed, _ := record.Values[5].(bool)

	item := models.Item{
		ID:        id,
		Title:     title,
		Timestamp: timestamp.Time(),
		Completed: completed,
	}
	if content, ok := record.Values[2].(string); ok {
		item.Content = &content
	}
	if deadline, ok := record.Values[4].(neo4j.LocalDateTime); ok {
		t := deadline.Time()
		item.Deadline = &t
	}
	return item, nil
}

func singleItem(items []models.Item, id int64) (*models.Item, error) {
	if len(items) == 0 {
		return nil, &NotFoundError{ID: id}
	}
	return &items[0], nil
}
