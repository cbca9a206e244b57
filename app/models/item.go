package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// DateTimeLayout renders datetimes as timezone-naive ISO-8601.
const DateTimeLayout = "2006-01-02T15:04:05.999999"

// Item represents a single to-do list entry.
type Item struct {
	ID        int64      `gorm:"primaryKey"`
	Title     string     `gorm:"size:50;not null"`
	Content   *string    `gorm:"size:200"`
	Timestamp time.Time  `gorm:"not null"`
	Deadline  *time.Time
	Completed bool `gorm:"not null;default:false"`
}

// TableName keeps the table name the service has always used.
func (Item) TableName() string {
	return "to_do"
}

// String is the debug representation, "<id> <title>".
func (i Item) String() string {
	return strconv.FormatInt(i.ID, 10) + " " + i.Title
}

// FillDefaults sets the creation timestamp when the client did not supply one.
func (i *Item) FillDefaults(now time.Time) {
	if i.Timestamp.IsZero() {
		i.Timestamp = Naive(now)
	}
}

// Naive drops the location of t and keeps its wall clock.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatDateTime renders t without an offset. The wall clock is used as-is.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

type itemJSON struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Content   *string `json:"content"`
	Timestamp string  `json:"timestamp"`
	Deadline  *string `json:"deadline"`
	Completed bool    `json:"completed"`
}

// MarshalJSON encodes the item with ISO-8601 datetime strings.
func (i Item) MarshalJSON() ([]byte, error) {
	out := itemJSON{
		ID:        i.ID,
		Title:     i.Title,
		Content:   i.Content,
		Timestamp: FormatDateTime(i.Timestamp),
		Completed: i.Completed,
	}
	if i.Deadline != nil {
		deadline := FormatDateTime(*i.Deadline)
		out.Deadline = &deadline
	}
	return json.Marshal(out)
}
