package collision

import (
	"fmt"

	"github.com/arloliu/chunkframe/errs"
)

// Tracker tracks user type names and detects header tag collisions.
//
// A frame header has a single byte to identify a user-defined type, so
// distinct type names can fold to the same tag. Frames of two such types
// would be indistinguishable on read, so registration of the second type is
// rejected and the caller must pick an explicit tag.
type Tracker struct {
	names     map[uint8]string // tag → type name
	tags      map[string]uint8 // type name → tag
	namesList []string         // registration order
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint8]string),
		tags:      make(map[string]uint8),
		namesList: make([]string, 0),
	}
}

// TrackType records a type name with its header tag.
//
// Returns error if:
//   - The type name was already tracked (ErrTypeAlreadyRegistered)
//   - Another type name already owns the tag (ErrTypeTagCollision)
func (t *Tracker) TrackType(name string, tag uint8) error {
	if _, exists := t.tags[name]; exists {
		return fmt.Errorf("%s: %w", name, errs.ErrTypeAlreadyRegistered)
	}

	if existing, exists := t.names[tag]; exists {
		return fmt.Errorf("%s and %s share tag 0x%02x: %w", existing, name, tag, errs.ErrTypeTagCollision)
	}

	t.names[tag] = name
	t.tags[name] = tag
	t.namesList = append(t.namesList, name)

	return nil
}

// Untrack forgets a type name, releasing its tag.
func (t *Tracker) Untrack(name string) {
	tag, ok := t.tags[name]
	if !ok {
		return
	}

	delete(t.tags, name)
	delete(t.names, tag)
	for i, n := range t.namesList {
		if n == name {
			t.namesList = append(t.namesList[:i], t.namesList[i+1:]...)
			break
		}
	}
}

// NameOf returns the type name that owns tag.
func (t *Tracker) NameOf(tag uint8) (string, bool) {
	name, ok := t.names[tag]
	return name, ok
}

// TagOf returns the tag owned by a type name.
func (t *Tracker) TagOf(name string) (uint8, bool) {
	tag, ok := t.tags[name]
	return tag, ok
}

// Names returns the tracked type names in registration order.
func (t *Tracker) Names() []string {
	return t.namesList
}

// Count returns the number of tracked types.
func (t *Tracker) Count() int {
	return len(t.namesList)
}

// Reset clears all tracked types.
func (t *Tracker) Reset() {
	clear(t.names)
	clear(t.tags)
	t.namesList = t.namesList[:0]
}
