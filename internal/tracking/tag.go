package tracking

import (
	"errors"
	"fmt"
)

// Tag records what a DTO still has to do to reach the store.
type Tag int

const (
	Unmodified Tag = iota
	New
	Modified
	Removed
)

// Event is a mutation applied to a tagged DTO.
type Event int

const (
	Edit Event = iota
	Delete
)

var ErrUnknownTag = errors.New("unknown tag")

var tagNames = map[Tag]string{
	Unmodified: "unmodified",
	New:        "new",
	Modified:   "modified",
	Removed:    "removed",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

// Next returns the tag after e. Removal dominates every other state, and a
// record that was never persisted stays New through edits.
func (t Tag) Next(e Event) Tag {
	if e == Delete {
		return Removed
	}
	if t == Unmodified {
		return Modified
	}
	return t
}

func (t Tag) MarshalText() ([]byte, error) {
	name, ok := tagNames[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, int(t))
	}
	return []byte(name), nil
}

func (t *Tag) UnmarshalText(text []byte) error {
	for tag, name := range tagNames {
		if name == string(text) {
			*t = tag
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTag, string(text))
}
