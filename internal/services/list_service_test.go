package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/tracking"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// untouchableStore fails the test through a nil-interface panic on any call.
type untouchableStore struct {
	store.Store
}

func newEngine(t *testing.T, opts ListOptions) (*ListService, *store.MemoryStore, uuid.UUID) {
	t.Helper()
	mem := store.NewMemoryStore()
	u, err := mem.CreateUser(context.Background(), "ada-"+uuid.NewString(), "secret")
	require.NoError(t, err)
	return NewListService(mem, opts), mem, u.ID
}

func saveNew(t *testing.T, svc *ListService, actor uuid.UUID, items ...string) *tracking.List {
	t.Helper()
	l := tracking.NewList("groceries", actor, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	for _, name := range items {
		l = tracking.AddItem(l, tracking.NewItem(name))
	}
	saved, err := svc.Save(context.Background(), actor, l)
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved
}

func TestSaveUnmodifiedTouchesNothing(t *testing.T) {
	svc := NewListService(untouchableStore{}, ListOptions{Atomic: true, CascadeRemoval: true})
	l := tracking.List{ID: uuid.New(), Name: "x", Tag: tracking.Unmodified}

	out, err := svc.Save(context.Background(), uuid.New(), l)
	require.NoError(t, err)
	assert.Equal(t, l, *out)

	out, err = svc.Save(context.Background(), uuid.New(), tracking.List{Tag: tracking.Tag(99)})
	require.NoError(t, err)
	assert.Equal(t, tracking.Tag(99), out.Tag)
}

func TestSaveRemovedUnsavedListTouchesNothing(t *testing.T) {
	svc := NewListService(untouchableStore{}, ListOptions{})
	l := tracking.RemoveList(tracking.NewList("draft", uuid.Nil, time.Time{}))

	out, err := svc.Save(context.Background(), uuid.New(), l)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestSaveNewListAssignsIDs(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	saved := saveNew(t, svc, actor, "milk", "eggs", "bread")

	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.Equal(t, tracking.Unmodified, saved.Tag)
	assert.Equal(t, actor, saved.OwnerID)
	require.Len(t, saved.Items, 3)
	for i, name := range []string{"milk", "eggs", "bread"} {
		assert.Equal(t, name, saved.Items[i].Name)
		assert.NotEqual(t, uuid.Nil, saved.Items[i].ID)
		assert.Equal(t, tracking.Unmodified, saved.Items[i].Tag)
	}
}

func TestSaveNewListSkipsRemovedItems(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	l := tracking.NewList("x", uuid.Nil, time.Time{},
		tracking.NewItem("keep"),
		tracking.Item{Name: "drop", Tag: tracking.Removed})

	saved, err := svc.Save(context.Background(), actor, l)
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, "keep", saved.Items[0].Name)
	assert.Equal(t, actor, saved.OwnerID)
}

func TestSaveNewListOwnerChecks(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	ctx := context.Background()

	_, err := svc.Save(ctx, actor, tracking.NewList("x", uuid.New(), time.Time{}))
	assert.ErrorIs(t, err, ErrOwnerNotFound)

	ghost := uuid.New()
	_, err = svc.Save(ctx, ghost, tracking.NewList("x", ghost, time.Time{}))
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestRemoveDuplicatedNameRemovesFirstThenSecond(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "milk", "milk")
	second := saved.Items[1].ID

	once, err := svc.Save(ctx, actor, tracking.RemoveItem(*saved, tracking.ByName("milk")))
	require.NoError(t, err)
	require.Len(t, once.Items, 1)
	assert.Equal(t, second, once.Items[0].ID)

	twice, err := svc.Save(ctx, actor, tracking.RemoveItem(*once, tracking.ByName("milk")))
	require.NoError(t, err)
	assert.Empty(t, twice.Items)
}

func TestRenameAndRemoveInOneSave(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "A", "B")
	b := saved.Items[1].ID

	name := "A2"
	l := tracking.EditItem(*saved, tracking.ByName("A"), tracking.ItemChanges{Name: &name})
	l = tracking.RemoveItem(l, tracking.ByName("B"))
	out, err := svc.Save(ctx, actor, l)
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "A2", out.Items[0].Name)

	rec, err := mem.FindItemByIDUnscoped(ctx, b)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.RemovedAt.Valid)
}

func TestDoubleRemovalReportsErrorButAppliesSiblings(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "a", "b")

	_, err := svc.Save(ctx, actor, tracking.RemoveItem(*saved, tracking.ByName("a")))
	require.NoError(t, err)

	stale := tracking.RemoveItem(*saved, tracking.ByName("a"))
	stale = tracking.CheckItem(stale, tracking.ByName("b"), true)
	_, err = svc.Save(ctx, actor, stale)
	assert.ErrorIs(t, err, ErrAlreadyRemoved)

	got, err := svc.Load(ctx, actor, saved.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Checked)
}

func TestAtomicSaveLeavesNoPartialEffects(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{Atomic: true})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "a", "b")

	_, err := svc.Save(ctx, actor, tracking.RemoveItem(*saved, tracking.ByName("a")))
	require.NoError(t, err)

	stale := tracking.RenameList(*saved, "renamed", saved.Date)
	stale = tracking.CheckItem(stale, tracking.ByName("b"), true)
	stale = tracking.RemoveItem(stale, tracking.ByName("a"))
	_, err = svc.Save(ctx, actor, stale)
	assert.ErrorIs(t, err, ErrAlreadyRemoved)

	got, err := svc.Load(ctx, actor, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Name)
	require.Len(t, got.Items, 1)
	assert.False(t, got.Items[0].Checked)
}

func TestSaveModifiedRejectsForeignRecords(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	mine := saveNew(t, svc, actor, "x")

	intruder, err := mem.CreateUser(ctx, "eve-"+uuid.NewString(), "secret")
	require.NoError(t, err)
	_, err = svc.Save(ctx, intruder.ID, tracking.RenameList(*mine, "stolen", mine.Date))
	assert.ErrorIs(t, err, ErrListNotFound)

	other := saveNew(t, svc, actor, "y")
	foreign := other.Items[0]
	foreign.Tag = tracking.Modified
	l := *mine
	l.Items = append(l.Items, foreign)
	l.Tag = tracking.Modified
	_, err = svc.Save(ctx, actor, l)
	assert.ErrorIs(t, err, ErrItemNotFound)

	missing := tracking.Item{ID: uuid.New(), Name: "ghost", Tag: tracking.Removed}
	l = *mine
	l.Items = []tracking.Item{missing}
	l.Tag = tracking.Modified
	_, err = svc.Save(ctx, actor, l)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.Save(ctx, actor, tracking.RenameList(tracking.List{ID: uuid.New()}, "n", time.Time{}))
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestRemoveListKeepsItemsWithoutCascade(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "a")

	out, err := svc.Save(ctx, actor, tracking.RemoveList(*saved))
	require.NoError(t, err)
	assert.Nil(t, out)

	l, err := mem.FindListByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = mem.FindListByIDUnscoped(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.True(t, l.RemovedAt.Valid)

	it, err := mem.FindItemByID(ctx, saved.Items[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, it)

	_, err = svc.Save(ctx, actor, tracking.RemoveList(*saved))
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestRemoveListCascades(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{CascadeRemoval: true})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "a", "b")

	_, err := svc.Save(ctx, actor, tracking.RemoveList(*saved))
	require.NoError(t, err)

	items, err := mem.FindItemsByList(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	it, err := mem.FindItemByIDUnscoped(ctx, saved.Items[1].ID)
	require.NoError(t, err)
	assert.True(t, it.RemovedAt.Valid)
}

func TestDivergentCopiesLastWriteWins(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "a")

	first := tracking.RenameList(*saved, "first", saved.Date)
	second := tracking.RenameList(*saved, "second", saved.Date)
	_, err := svc.Save(ctx, actor, first)
	require.NoError(t, err)
	_, err = svc.Save(ctx, actor, second)
	require.NoError(t, err)

	got, err := svc.Load(ctx, actor, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
}

func TestSaveModifiedKeepsNewItemOrder(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	saved := saveNew(t, svc, actor)

	l := *saved
	for _, name := range []string{"one", "two", "three", "four"} {
		l = tracking.AddItem(l, tracking.NewItem(name))
	}
	out, err := svc.Save(context.Background(), actor, l)
	require.NoError(t, err)
	require.Len(t, out.Items, 4)
	assert.Equal(t, "one", out.Items[0].Name)
	assert.Equal(t, "four", out.Items[3].Name)
}

func TestLoadFamily(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	a := saveNew(t, svc, actor, "x", "y")
	b := saveNew(t, svc, actor)

	all, err := svc.LoadAll(ctx, actor)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Len(t, all[0].Items, 2)
	assert.Equal(t, b.ID, all[1].ID)

	byName, err := svc.LoadByName(ctx, actor, "groceries")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	_, err = svc.LoadByName(ctx, actor, "nope")
	assert.ErrorIs(t, err, ErrListNotFound)

	other, err := mem.CreateUser(ctx, "bob-"+uuid.NewString(), "pw")
	require.NoError(t, err)
	_, err = svc.Load(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, ErrListNotFound)

	none, err := svc.LoadAll(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTodayCreatesOnce(t *testing.T) {
	svc, _, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	svc.WithClock(func() time.Time { return time.Date(2024, time.March, 4, 15, 4, 5, 0, time.UTC) })

	first, err := svc.Today(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "Monday, March 4", first.Name)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), first.Date)

	again, err := svc.Today(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestSaveRejectsBlankNames(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{})
	ctx := context.Background()

	_, err := svc.Save(ctx, actor, tracking.AddItem(tracking.NewList("", actor, time.Time{}), tracking.NewItem("milk")))
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Save(ctx, actor, tracking.AddItem(tracking.NewList("errands", actor, time.Time{}), tracking.NewItem("  ")))
	assert.ErrorIs(t, err, ErrNameRequired)

	lists, err := mem.FindListsByOwner(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, lists)

	saved := saveNew(t, svc, actor, "milk")
	_, err = svc.Save(ctx, actor, tracking.RenameList(*saved, "", saved.Date))
	assert.ErrorIs(t, err, ErrNameRequired)

	blank := ""
	_, err = svc.Save(ctx, actor, tracking.EditItem(*saved, tracking.ByID(saved.Items[0].ID), tracking.ItemChanges{Name: &blank}))
	assert.ErrorIs(t, err, ErrNameRequired)

	got, err := svc.Load(ctx, actor, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Name)
	assert.Equal(t, "milk", got.Items[0].Name)

	// Removal needs no name.
	nameless := *saved
	nameless.Name = ""
	_, err = svc.Save(ctx, actor, tracking.RemoveList(nameless))
	assert.NoError(t, err)
}

func TestSaveSameItemRemovedTwiceInOneList(t *testing.T) {
	svc, mem, actor := newEngine(t, ListOptions{})
	ctx := context.Background()
	saved := saveNew(t, svc, actor, "a", "b")

	target := saved.Items[0]
	target.Tag = tracking.Removed
	l := *saved
	l.Items = []tracking.Item{target, target, saved.Items[1]}
	l.Tag = tracking.Modified

	_, err := svc.Save(ctx, actor, l)
	assert.ErrorIs(t, err, ErrAlreadyRemoved)

	rec, err := mem.FindItemByIDUnscoped(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, rec.RemovedAt.Valid)
}
