package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/tracking"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrListNotFound   = errors.New("list not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrAlreadyRemoved = errors.New("already removed")
	ErrOwnerNotFound  = errors.New("owner not found")
	ErrNameRequired   = errors.New("name is required")
)

// DayListLayout names the list that Today finds or creates.
const DayListLayout = "Monday, January 2"

type ListOptions struct {
	// Atomic runs every write of a Save in one transaction when the store
	// implements store.Transactor. Item writes then run one after another.
	Atomic bool
	// CascadeRemoval soft-deletes the active items of a list removed by Save.
	CascadeRemoval bool
}

// ListService reconciles change-tracked lists with the store. Save is the
// only write path for lists and items.
type ListService struct {
	store store.Store
	opts  ListOptions
	now   func() time.Time
}

func NewListService(s store.Store, opts ListOptions) *ListService {
	return &ListService{store: s, opts: opts, now: time.Now}
}

// WithClock replaces the time source used by Today.
func (s *ListService) WithClock(now func() time.Time) *ListService {
	s.now = now
	return s
}

// Save performs the writes implied by the tags of l and returns a fresh
// Unmodified snapshot. A removed list yields nil. Unmodified input is
// returned as is without touching the store.
func (s *ListService) Save(ctx context.Context, actorID uuid.UUID, l tracking.List) (*tracking.List, error) {
	switch l.Tag {
	case tracking.New, tracking.Modified, tracking.Removed:
	default:
		out := l
		return &out, nil
	}
	if l.Tag == tracking.Removed && l.ID == uuid.Nil {
		return nil, nil
	}
	if err := validateNames(l); err != nil {
		return nil, err
	}

	var out *tracking.List
	err := s.write(ctx, func(st store.Store, sequential bool) error {
		var err error
		switch l.Tag {
		case tracking.New:
			out, err = s.create(ctx, st, actorID, l)
		case tracking.Modified:
			out, err = s.modify(ctx, st, actorID, l, sequential)
		case tracking.Removed:
			err = s.remove(ctx, st, actorID, l, sequential)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// validateNames rejects blank names on everything a save would write.
func validateNames(l tracking.List) error {
	if l.Tag == tracking.Removed {
		return nil
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("list: %w", ErrNameRequired)
	}
	for i, it := range l.Items {
		if it.Tag != tracking.New && it.Tag != tracking.Modified {
			continue
		}
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item %d: %w", i, ErrNameRequired)
		}
	}
	return nil
}

// write runs fn inside a transaction when Atomic is set and the store
// supports it.
func (s *ListService) write(ctx context.Context, fn func(st store.Store, sequential bool) error) error {
	if tr, ok := s.store.(store.Transactor); ok && s.opts.Atomic {
		return tr.InTx(ctx, func(tx store.Store) error {
			return fn(tx, true)
		})
	}
	return fn(s.store, false)
}

func (s *ListService) create(ctx context.Context, st store.Store, actorID uuid.UUID, l tracking.List) (*tracking.List, error) {
	ownerID := l.OwnerID
	if ownerID == uuid.Nil {
		ownerID = actorID
	}
	if ownerID != actorID {
		return nil, ErrOwnerNotFound
	}
	owner, err := st.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	rec, err := st.InsertList(ctx, store.ListFields{Name: l.Name, Date: l.Date, OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	slog.Info("list created", "list_id", rec.ID, "user_id", ownerID, "action", "create_list")

	for _, it := range l.Items {
		if it.Tag == tracking.Removed {
			continue
		}
		if err := s.insertItem(ctx, st, rec.ID, it); err != nil {
			return nil, err
		}
	}
	return s.reload(ctx, st, rec)
}

func (s *ListService) modify(ctx context.Context, st store.Store, actorID uuid.UUID, l tracking.List, sequential bool) (*tracking.List, error) {
	rec, err := s.ownedList(ctx, st, actorID, l.ID)
	if err != nil {
		return nil, err
	}
	if err := st.UpdateList(ctx, rec.ID, store.ListFields{Name: l.Name, Date: l.Date, OwnerID: rec.UserID}); err != nil {
		return nil, err
	}
	slog.Debug("list updated", "list_id", rec.ID, "user_id", actorID, "action", "update_list")

	var inserts []tracking.Item
	tasks := make([]func() error, 0, len(l.Items)+1)
	for _, it := range l.Items {
		switch it.Tag {
		case tracking.New:
			inserts = append(inserts, it)
		case tracking.Modified:
			tasks = append(tasks, func() error { return s.updateItem(ctx, st, rec.ID, it) })
		case tracking.Removed:
			if it.ID == uuid.Nil {
				continue
			}
			tasks = append(tasks, func() error { return s.removeItem(ctx, st, rec.ID, it) })
		}
	}
	// New items are inserted by a single task so they keep their list order.
	if len(inserts) > 0 {
		tasks = append(tasks, func() error {
			for _, it := range inserts {
				if err := s.insertItem(ctx, st, rec.ID, it); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := run(tasks, sequential); err != nil {
		return nil, err
	}

	fresh, err := st.FindListByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, ErrListNotFound
	}
	return s.reload(ctx, st, fresh)
}

func (s *ListService) remove(ctx context.Context, st store.Store, actorID uuid.UUID, l tracking.List, sequential bool) error {
	rec, err := s.ownedList(ctx, st, actorID, l.ID)
	if err != nil {
		return err
	}
	if err := st.SoftDeleteList(ctx, rec.ID); err != nil {
		return err
	}
	slog.Info("list removed", "list_id", rec.ID, "user_id", actorID, "action", "remove_list")
	if !s.opts.CascadeRemoval {
		return nil
	}

	items, err := st.FindItemsByList(ctx, rec.ID)
	if err != nil {
		return err
	}
	tasks := make([]func() error, 0, len(items))
	for _, it := range items {
		tasks = append(tasks, func() error {
			if err := st.SoftDeleteItem(ctx, it.ID); err != nil && !errors.Is(err, store.ErrNotActive) {
				return err
			}
			return nil
		})
	}
	if err := run(tasks, sequential); err != nil {
		return err
	}
	slog.Debug("list items removed", "list_id", rec.ID, "count", len(items), "action", "cascade_remove")
	return nil
}

// run executes tasks one by one, or concurrently and joined. The concurrent
// group shares no context, so one failure never cancels its siblings.
func run(tasks []func() error, sequential bool) error {
	if sequential {
		for _, task := range tasks {
			if err := task(); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}

func (s *ListService) insertItem(ctx context.Context, st store.Store, listID uuid.UUID, it tracking.Item) error {
	rec, err := st.InsertItem(ctx, listID, store.ItemFields{Name: it.Name, Checked: it.Checked})
	if err != nil {
		return err
	}
	slog.Debug("item created", "list_id", listID, "item_id", rec.ID, "action", "create_item")
	return nil
}

func (s *ListService) updateItem(ctx context.Context, st store.Store, listID uuid.UUID, it tracking.Item) error {
	rec, err := st.FindItemByID(ctx, it.ID)
	if err != nil {
		return err
	}
	if rec == nil || rec.ListID != listID {
		return fmt.Errorf("item %s: %w", it.ID, ErrItemNotFound)
	}
	if err := st.UpdateItem(ctx, it.ID, store.ItemFields{Name: it.Name, Checked: it.Checked}); err != nil {
		return err
	}
	slog.Debug("item updated", "list_id", listID, "item_id", it.ID, "action", "update_item")
	return nil
}

func (s *ListService) removeItem(ctx context.Context, st store.Store, listID uuid.UUID, it tracking.Item) error {
	rec, err := st.FindItemByIDUnscoped(ctx, it.ID)
	if err != nil {
		return err
	}
	if rec == nil || rec.ListID != listID {
		return fmt.Errorf("item %s: %w", it.ID, ErrItemNotFound)
	}
	if rec.IsRemoved() {
		return fmt.Errorf("item %s: %w", it.ID, ErrAlreadyRemoved)
	}
	if err := st.SoftDeleteItem(ctx, it.ID); err != nil {
		// Lost the race against another removal of the same item.
		if errors.Is(err, store.ErrNotActive) {
			return fmt.Errorf("item %s: %w", it.ID, ErrAlreadyRemoved)
		}
		return err
	}
	slog.Debug("item removed", "list_id", listID, "item_id", it.ID, "action", "remove_item")
	return nil
}

// ownedList returns the active list with the given id when actorID owns it.
func (s *ListService) ownedList(ctx context.Context, st store.Store, actorID, id uuid.UUID) (*models.List, error) {
	if id == uuid.Nil {
		return nil, ErrListNotFound
	}
	rec, err := st.FindListByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.UserID != actorID {
		return nil, ErrListNotFound
	}
	return rec, nil
}

func (s *ListService) reload(ctx context.Context, st store.Store, rec *models.List) (*tracking.List, error) {
	items, err := st.FindItemsByList(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	out := tracking.FromRecords(*rec, items)
	return &out, nil
}

// Load returns the actor's list with its active items.
func (s *ListService) Load(ctx context.Context, actorID, listID uuid.UUID) (*tracking.List, error) {
	rec, err := s.ownedList(ctx, s.store, actorID, listID)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, s.store, rec)
}

// LoadByName returns the first active list of the actor with that name.
func (s *ListService) LoadByName(ctx context.Context, actorID uuid.UUID, name string) (*tracking.List, error) {
	rec, err := s.store.FindListByName(ctx, name, actorID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrListNotFound
	}
	return s.reload(ctx, s.store, rec)
}

// LoadAll returns every active list of the actor in creation order.
func (s *ListService) LoadAll(ctx context.Context, actorID uuid.UUID) ([]tracking.List, error) {
	recs, err := s.store.FindListsByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := make([]tracking.List, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	for i := range recs {
		g.Go(func() error {
			items, err := s.store.FindItemsByList(gctx, recs[i].ID)
			if err != nil {
				return err
			}
			out[i] = tracking.FromRecords(recs[i], items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Today finds the actor's list named after the current date, creating it
// when missing.
func (s *ListService) Today(ctx context.Context, actorID uuid.UUID) (*tracking.List, error) {
	now := s.now()
	name := now.Format(DayListLayout)
	l, err := s.LoadByName(ctx, actorID, name)
	if err == nil || !errors.Is(err, ErrListNotFound) {
		return l, err
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.Save(ctx, actorID, tracking.NewList(name, actorID, day))
}
