// Package todo loads, updates, and persists the task document.
package todo

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists the valid statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus converts user input into a Status.
// Matching is case-insensitive and accepts "in_progress" as an alias.
func ParseStatus(input string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "in_progress" {
		s = string(StatusInProgress)
	}
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q, must be one of: todo, in-progress, done", input)
	}
	return status, nil
}

// Task represents a single task in the document.
type Task struct {
	ID          int       `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   Timestamp `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt" yaml:"updatedAt"`
}

// Timestamp is an ISO-8601 instant.
//
// It is written as RFC 3339 with nanoseconds. Reading also accepts the
// zone-less "2006-01-02T15:04:05.999999" form, interpreted in local time.
type Timestamp struct {
	time.Time
}

// zonelessLayout matches timestamps without a UTC offset.
const zonelessLayout = "2006-01-02T15:04:05.999999999"

// NewTimestamp wraps t, normalized to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// ParseTimestamp parses an ISO-8601 timestamp with or without a UTC offset.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	t, err := time.ParseInLocation(zonelessLayout, s, time.Local)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return Timestamp{Time: t}, nil
}

// String returns the RFC 3339 form.
func (ts Timestamp) String() string {
	return ts.Time.Format(time.RFC3339Nano)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

// MarshalYAML renders the timestamp as a plain string.
func (ts Timestamp) MarshalYAML() (interface{}, error) {
	return ts.String(), nil
}

// nextID returns one more than the highest id in tasks, or 1 when empty.
func nextID(tasks []Task) (int, error) {
	highest := 0
	for _, t := range tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	if highest == math.MaxInt {
		return 0, ErrIDExhausted
	}
	return highest + 1, nil
}

// indexOf returns the position of the task with id, or -1.
func indexOf(tasks []Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// FilterByStatus returns the tasks whose status equals status, in order.
// An empty status returns all tasks.
func FilterByStatus(tasks []Task, status Status) []Task {
	if status == "" {
		return tasks
	}
	filtered := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
