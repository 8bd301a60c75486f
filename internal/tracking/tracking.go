// Package tracking models lists and items as change-tracked snapshots.
//
// Nothing here talks to a store. Every operation takes a List by value and
// returns a new one whose item slice is freshly allocated, so callers can
// keep the previous snapshot around unchanged.
package tracking

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/google/uuid"
)

type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
	Tag       Tag       `json:"status"`
}

type List struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Items     []Item    `json:"items"`
	Tag       Tag       `json:"status"`
}

// ItemChanges lists the item fields to overwrite. Nil fields are kept.
type ItemChanges struct {
	Name    *string `json:"name,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// Matcher selects an item inside a list.
type Matcher func(Item) bool

// ByID matches the item with the given id. The nil id matches nothing, so
// unsaved items can only be reached by name.
func ByID(id uuid.UUID) Matcher {
	return func(it Item) bool { return id != uuid.Nil && it.ID == id }
}

// ByName matches items by exact name. With duplicates the first one in list
// order is the one affected.
func ByName(name string) Matcher {
	return func(it Item) bool { return it.Name == name }
}

func NewList(name string, ownerID uuid.UUID, date time.Time, items ...Item) List {
	return List{
		Name:    name,
		OwnerID: ownerID,
		Date:    date,
		Items:   append([]Item{}, items...),
		Tag:     New,
	}
}

func NewItem(name string) Item {
	return Item{Name: name, Tag: New}
}

// FromRecords builds an Unmodified snapshot of persisted records.
func FromRecords(l models.List, items []models.Item) List {
	out := List{
		ID:        l.ID,
		Name:      l.Name,
		Date:      l.Date,
		CreatedAt: l.CreatedAt,
		OwnerID:   l.UserID,
		Items:     make([]Item, 0, len(items)),
		Tag:       Unmodified,
	}
	for _, it := range items {
		out.Items = append(out.Items, Item{
			ID:        it.ID,
			Name:      it.Name,
			Checked:   it.Checked,
			CreatedAt: it.CreatedAt,
			Tag:       Unmodified,
		})
	}
	return out
}

func (l List) clone() List {
	l.Items = append(make([]Item, 0, len(l.Items)), l.Items...)
	return l
}

// find returns the index of the first non-removed item matching m, or -1.
func (l List) find(m Matcher) int {
	for i, it := range l.Items {
		if it.Tag != Removed && m(it) {
			return i
		}
	}
	return -1
}

// Find returns the first non-removed item matching m.
func (l List) Find(m Matcher) (Item, bool) {
	if i := l.find(m); i >= 0 {
		return l.Items[i], true
	}
	return Item{}, false
}

// ActiveItems returns the items not tagged Removed.
func (l List) ActiveItems() []Item {
	out := make([]Item, 0, len(l.Items))
	for _, it := range l.Items {
		if it.Tag != Removed {
			out = append(out, it)
		}
	}
	return out
}

func AddItem(l List, it Item) List {
	out := l.clone()
	out.Items = append(out.Items, it)
	out.Tag = out.Tag.Next(Edit)
	return out
}

// RemoveItem tags the first matching item Removed. An item that was never
// saved is dropped from the list instead. No match leaves the list as is.
func RemoveItem(l List, m Matcher) List {
	out := l.clone()
	i := out.find(m)
	if i < 0 {
		return out
	}
	if out.Items[i].Tag == New {
		out.Items = append(out.Items[:i], out.Items[i+1:]...)
	} else {
		out.Items[i].Tag = out.Items[i].Tag.Next(Delete)
	}
	out.Tag = out.Tag.Next(Edit)
	return out
}

func EditItem(l List, m Matcher, changes ItemChanges) List {
	out := l.clone()
	i := out.find(m)
	if i < 0 {
		return out
	}
	it := &out.Items[i]
	if changes.Name != nil {
		it.Name = *changes.Name
	}
	if changes.Checked != nil {
		it.Checked = *changes.Checked
	}
	it.Tag = it.Tag.Next(Edit)
	out.Tag = out.Tag.Next(Edit)
	return out
}

func CheckItem(l List, m Matcher, checked bool) List {
	return EditItem(l, m, ItemChanges{Checked: &checked})
}

func RenameList(l List, name string, date time.Time) List {
	out := l.clone()
	out.Name = name
	out.Date = date
	out.Tag = out.Tag.Next(Edit)
	return out
}

func RemoveList(l List) List {
	out := l.clone()
	out.Tag = out.Tag.Next(Delete)
	return out
}
