package domain

// NoteEventType indicates what happened to a note in the store.
type NoteEventType int

// Note change types emitted by store watchers.
const (
	// NoteCreated indicates a new note appeared.
	NoteCreated NoteEventType = iota

	// NoteUpdated indicates an existing note's content changed.
	NoteUpdated

	// NoteDeleted indicates a note was removed.
	NoteDeleted
)

// String returns the string representation.
func (t NoteEventType) String() string {
	switch t {
	case NoteCreated:
		return "created"
	case NoteUpdated:
		return "updated"
	case NoteDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// NoteEvent is a change notification from the note store. Events carry
// only the path; the current content is fetched at processing time so a
// burst of events for one note collapses into the latest state.
type NoteEvent struct {
	// Type is the kind of change.
	Type NoteEventType

	// Path identifies the affected note.
	Path string
}
