// Package todo loads, updates, and persists the task document.
//
// The document (tasks.json) is a bare JSON array:
//
//	[
//	  {
//	    "id": 1,
//	    "description": "Buy milk",
//	    "status": "todo",
//	    "createdAt": "2024-01-01T00:00:00Z",
//	    "updatedAt": "2024-01-01T00:00:00Z"
//	  }
//	]
//
// # Store Operations
//
// A Store is bound to one path. Each operation loads the document afresh,
// applies at most one mutation, and saves at most once:
//
//   - Add assigns max(id)+1 (1 for an empty document) with status "todo"
//   - Update and SetStatus change one task and refresh updatedAt
//   - Delete removes one task
//   - List is read-only
//
// Update, SetStatus, and Delete return ErrNotFound without touching the file
// when the id is unknown.
//
// # Errors
//
//   - A missing file is an empty document, not an error
//   - A file that is not a well-formed task array yields *CorruptStoreError
//   - Any read or write failure yields *PersistenceError
//   - Add returns ErrIDExhausted once the highest id is math.MaxInt
//
// # Task Status Values
//
//   - "todo": Task is pending
//   - "in-progress": Task is being worked on
//   - "done": Task is complete
//
// The store accepts any status string; ParseStatus restricts user input.
//
// # File Format
//
// When writing, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - RFC 3339 timestamps in UTC
//   - Write to a temporary file, then rename over the target
//   - Symlinks are followed and an existing file keeps its mode
package todo
