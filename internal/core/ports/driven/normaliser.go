package driven

import (
	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// Normaliser derives structured metadata from a note's raw content.
// It is a pure derivation: malformed metadata degrades to absent fields,
// never an error.
type Normaliser interface {
	// Meta extracts title, tags and summary for a note. The path supplies
	// the filename fallback for the title.
	Meta(path, content string) domain.NoteMeta
}
