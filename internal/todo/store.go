package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/task-cli/internal/logging"
)

// DefaultFile is the task document name used when no path is configured.
const DefaultFile = "tasks.json"

// Store owns the task document at a single path.
//
// Every operation performs a fresh load; mutations save at most once and only
// when something changed. There is no locking: concurrent processes that
// mutate the same file race, and the last save wins.
type Store struct {
	path   string
	now    func() time.Time
	logger *log.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore returns a store backed by the document at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing file is an empty document.
func (s *Store) Load() ([]Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("task file not found, starting empty", "path", s.path)
			return []Task{}, nil
		}
		return nil, &PersistenceError{Op: "read", Path: s.path, Err: err}
	}

	if err := checkSchema(data); err != nil {
		return nil, &CorruptStoreError{Path: s.path, Err: err}
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &CorruptStoreError{Path: s.path, Err: err}
	}

	s.logger.Debug("loaded tasks", "path", s.path, "count", len(tasks))
	return tasks, nil
}

// Save replaces the document with tasks.
//
// The new content is written to a temporary file in the same directory and
// renamed over the target, so a failed save leaves the previous document intact.
// A symlinked document is replaced at the link target, and an existing file
// keeps its permissions.
func (s *Store) Save(tasks []Task) error {
	data, err := Marshal(tasks)
	if err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return &PersistenceError{Op: "write", Path: s.path, Err: err}
	}
	s.logger.Debug("saved tasks", "path", s.path, "count", len(tasks))
	return nil
}

// Marshal encodes tasks the way Save writes them: 2-space indentation and a
// trailing newline. A nil slice encodes as an empty array.
// HTML characters in descriptions are written as is.
func Marshal(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Add appends a new todo task and returns its id.
// The id is one more than the highest existing id.
func (s *Store) Add(description string) (int, error) {
	tasks, err := s.Load()
	if err != nil {
		return 0, err
	}

	id, err := nextID(tasks)
	if err != nil {
		return 0, err
	}
	now := NewTimestamp(s.now())
	t := Task{
		ID:          id,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tasks = append(tasks, t)

	if err := s.Save(tasks); err != nil {
		return 0, err
	}
	s.logger.Debug("added task", "id", t.ID)
	return t.ID, nil
}

// Update replaces the description of the task with id.
func (s *Store) Update(id int, description string) error {
	return s.mutate(id, func(t *Task) {
		t.Description = description
	})
}

// SetStatus sets the status of the task with id. Any status is accepted.
func (s *Store) SetStatus(id int, status Status) error {
	return s.mutate(id, func(t *Task) {
		t.Status = status
	})
}

// Delete removes the task with id.
func (s *Store) Delete(id int) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return notFound(id)
	}
	tasks = append(tasks[:i], tasks[i+1:]...)

	if err := s.Save(tasks); err != nil {
		return err
	}
	s.logger.Debug("deleted task", "id", id)
	return nil
}

// List returns all tasks, or only those with status when it is non-empty.
func (s *Store) List(status Status) ([]Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	return FilterByStatus(tasks, status), nil
}

// mutate applies fn to the task with id, refreshes updatedAt, and saves.
// Nothing is written when the id is unknown.
func (s *Store) mutate(id int, fn func(*Task)) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}

	i := indexOf(tasks, id)
	if i < 0 {
		return notFound(id)
	}
	fn(&tasks[i])
	tasks[i].UpdatedAt = s.touch(tasks[i])

	if err := s.Save(tasks); err != nil {
		return err
	}
	s.logger.Debug("updated task", "id", id, "status", tasks[i].Status)
	return nil
}

// touch returns the new updatedAt for t. It never moves backwards, so
// updatedAt stays >= createdAt and >= its previous value under clock skew.
func (s *Store) touch(t Task) Timestamp {
	now := NewTimestamp(s.now())
	if now.Before(t.UpdatedAt.Time) {
		return t.UpdatedAt
	}
	if now.Before(t.CreatedAt.Time) {
		return t.CreatedAt
	}
	return now
}

// writeFileAtomic writes data to a temporary sibling of path, syncs it, and
// renames it into place. Symlinks are followed to the real file, whose mode
// is kept; perm only applies to a new file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
