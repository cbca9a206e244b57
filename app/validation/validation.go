// Package validation turns request bodies into items.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"todo-list-api/app/models"

	"github.com/araddon/dateparse"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed item.schema.json
var itemSchemaJSON string

const itemSchemaURL = "item.schema.json"

// ValidationError reports a request body that cannot become an item.
// Field is empty when the body as a whole is unusable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var compileItemSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(itemSchemaURL, strings.NewReader(itemSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(itemSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

type itemPayload struct {
	Title     string  `json:"title"`
	Content   *string `json:"content"`
	Timestamp string  `json:"timestamp"`
	Deadline  *string `json:"deadline"`
	Completed bool    `json:"completed"`
}

// ParseItem validates body and builds the item it describes. The returned
// item has no id; any id in the body is ignored.
func ParseItem(body []byte) (*models.Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ValidationError{Message: "request body is empty"}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}

	schema, err := compileItemSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, mapSchemaError(err, doc)
	}

	var payload itemPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}

	timestamp, err := ParseDateTime("timestamp", payload.Timestamp)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:     payload.Title,
		Content:   payload.Content,
		Timestamp: timestamp,
		Completed: payload.Completed,
	}
	if payload.Deadline != nil {
		deadline, err := ParseDateTime("deadline", *payload.Deadline)
		if err != nil {
			return nil, err
		}
		item.Deadline = &deadline
	}
	return item, nil
}

// ParseDateTime parses value in any common date format and discards its
// timezone, keeping the wall clock.
func ParseDateTime(field, value string) (time.Time, error) {
	t, err := dateparse.ParseAny(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: fmt.Sprintf("cannot parse %q as a datetime", value)}
	}
	return models.Naive(t), nil
}

func mapSchemaError(err error, doc any) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}

	leaf := firstLeaf(ve)
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" && strings.HasSuffix(leaf.KeywordLocation, "/required") {
		field = missingRequired(doc)
		if field != "" {
			return &ValidationError{Field: field, Message: "field is required"}
		}
	}
	return &ValidationError{Field: field, Message: leaf.Message}
}

func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

func missingRequired(doc any) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	for _, name := range []string{"title", "timestamp", "completed"} {
		if _, ok := obj[name]; !ok {
			return name
		}
	}
	return ""
}
