// Package storetest holds a conformance suite shared by every store backend.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// Suite exercises a store.Store. New must return an empty or isolated store
// for every test.
type Suite struct {
	suite.Suite
	New   func(t *testing.T) store.Store
	Store store.Store
	ctx   context.Context
}

func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	suite.Run(t, &Suite{New: newStore})
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.Store = s.New(s.T())
}

func (s *Suite) user() uuid.UUID {
	u, err := s.Store.CreateUser(s.ctx, "user-"+uuid.NewString(), "secret")
	s.Require().NoError(err)
	return u.ID
}

func (s *Suite) list(owner uuid.UUID, name string) uuid.UUID {
	l, err := s.Store.InsertList(s.ctx, store.ListFields{Name: name, OwnerID: owner, Date: day()})
	s.Require().NoError(err)
	return l.ID
}

func day() time.Time {
	return time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
}

func (s *Suite) TestCreateUserAndCredentials() {
	name := "ada-" + uuid.NewString()
	u, err := s.Store.CreateUser(s.ctx, name, "hunter2")
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, u.ID)
	s.NotEqual("hunter2", u.Password)

	found, err := s.Store.FindUserByCredentials(s.ctx, name, "hunter2")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(u.ID, found.ID)

	wrong, err := s.Store.FindUserByCredentials(s.ctx, name, "nope")
	s.NoError(err)
	s.Nil(wrong)

	unknown, err := s.Store.FindUserByCredentials(s.ctx, "ghost-"+uuid.NewString(), "hunter2")
	s.NoError(err)
	s.Nil(unknown)

	byID, err := s.Store.FindUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(byID)
	s.Equal(name, byID.Name)
}

func (s *Suite) TestCreateUserDuplicateName() {
	name := "dup-" + uuid.NewString()
	_, err := s.Store.CreateUser(s.ctx, name, "a")
	s.Require().NoError(err)

	_, err = s.Store.CreateUser(s.ctx, name, "b")
	s.ErrorIs(err, store.ErrAlreadyExists)
}

func (s *Suite) TestMissingRecordsAreNil() {
	u, err := s.Store.FindUserByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(u)

	l, err := s.Store.FindListByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(l)

	l, err = s.Store.FindListByIDUnscoped(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(l)

	it, err := s.Store.FindItemByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(it)

	it, err = s.Store.FindItemByIDUnscoped(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(it)

	byName, err := s.Store.FindListByName(s.ctx, "nothing", uuid.New())
	s.NoError(err)
	s.Nil(byName)
}

func (s *Suite) TestListLifecycle() {
	owner := s.user()
	id := s.list(owner, "groceries")

	l, err := s.Store.FindListByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(l)
	s.Equal("groceries", l.Name)
	s.Equal(owner, l.UserID)
	s.True(l.Date.Equal(day()))
	s.False(l.IsRemoved())

	next := day().Add(24 * time.Hour)
	s.Require().NoError(s.Store.UpdateList(s.ctx, id, store.ListFields{Name: "market", Date: next, OwnerID: owner}))
	l, err = s.Store.FindListByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("market", l.Name)
	s.True(l.Date.Equal(next))

	s.Require().NoError(s.Store.SoftDeleteList(s.ctx, id))
	l, err = s.Store.FindListByID(s.ctx, id)
	s.NoError(err)
	s.Nil(l)

	l, err = s.Store.FindListByIDUnscoped(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(l)
	s.True(l.IsRemoved())

	lists, err := s.Store.FindListsByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Empty(lists)
}

func (s *Suite) TestListsByOwnerInCreationOrder() {
	owner := s.user()
	other := s.user()
	first := s.list(owner, "a")
	s.list(other, "foreign")
	second := s.list(owner, "b")
	third := s.list(owner, "c")
	s.Require().NoError(s.Store.SoftDeleteList(s.ctx, second))

	lists, err := s.Store.FindListsByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(lists, 2)
	s.Equal(first, lists[0].ID)
	s.Equal(third, lists[1].ID)
}

func (s *Suite) TestFindListByNameFirstActiveWins() {
	owner := s.user()
	first := s.list(owner, "dup")
	second := s.list(owner, "dup")

	l, err := s.Store.FindListByName(s.ctx, "dup", owner)
	s.Require().NoError(err)
	s.Require().NotNil(l)
	s.Equal(first, l.ID)

	s.Require().NoError(s.Store.SoftDeleteList(s.ctx, first))
	l, err = s.Store.FindListByName(s.ctx, "dup", owner)
	s.Require().NoError(err)
	s.Require().NotNil(l)
	s.Equal(second, l.ID)

	l, err = s.Store.FindListByName(s.ctx, "dup", s.user())
	s.NoError(err)
	s.Nil(l)
}

func (s *Suite) TestItemLifecycle() {
	listID := s.list(s.user(), "chores")

	milk, err := s.Store.InsertItem(s.ctx, listID, store.ItemFields{Name: "milk"})
	s.Require().NoError(err)
	s.False(milk.Checked)
	eggs, err := s.Store.InsertItem(s.ctx, listID, store.ItemFields{Name: "eggs", Checked: true})
	s.Require().NoError(err)
	s.True(eggs.Checked)

	s.Require().NoError(s.Store.UpdateItem(s.ctx, milk.ID, store.ItemFields{Name: "oat milk", Checked: true}))
	got, err := s.Store.FindItemByID(s.ctx, milk.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("oat milk", got.Name)
	s.True(got.Checked)
	s.Equal(listID, got.ListID)

	s.Require().NoError(s.Store.UpdateItem(s.ctx, milk.ID, store.ItemFields{Name: "oat milk", Checked: false}))
	got, err = s.Store.FindItemByID(s.ctx, milk.ID)
	s.Require().NoError(err)
	s.False(got.Checked)

	items, err := s.Store.FindItemsByList(s.ctx, listID)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(milk.ID, items[0].ID)
	s.Equal(eggs.ID, items[1].ID)

	s.Require().NoError(s.Store.SoftDeleteItem(s.ctx, eggs.ID))
	got, err = s.Store.FindItemByID(s.ctx, eggs.ID)
	s.NoError(err)
	s.Nil(got)

	got, err = s.Store.FindItemByIDUnscoped(s.ctx, eggs.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.IsRemoved())

	s.ErrorIs(s.Store.SoftDeleteItem(s.ctx, eggs.ID), store.ErrNotActive)
	s.ErrorIs(s.Store.SoftDeleteItem(s.ctx, uuid.New()), store.ErrNotActive)

	items, err = s.Store.FindItemsByList(s.ctx, listID)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *Suite) TestSoftDeleteListKeepsItemsActive() {
	listID := s.list(s.user(), "trip")
	it, err := s.Store.InsertItem(s.ctx, listID, store.ItemFields{Name: "tent"})
	s.Require().NoError(err)

	s.Require().NoError(s.Store.SoftDeleteList(s.ctx, listID))

	got, err := s.Store.FindItemByID(s.ctx, it.ID)
	s.Require().NoError(err)
	s.NotNil(got)
}

func (s *Suite) TestTransactionRollsBack() {
	tr, ok := s.Store.(store.Transactor)
	if !ok {
		s.T().Skip("backend has no transactions")
	}
	owner := s.user()
	boom := errors.New("boom")

	var inserted uuid.UUID
	err := tr.InTx(s.ctx, func(tx store.Store) error {
		l, err := tx.InsertList(s.ctx, store.ListFields{Name: "ghost", OwnerID: owner, Date: day()})
		if err != nil {
			return err
		}
		inserted = l.ID
		return boom
	})
	s.ErrorIs(err, boom)

	l, err := s.Store.FindListByIDUnscoped(s.ctx, inserted)
	s.NoError(err)
	s.Nil(l)

	err = tr.InTx(s.ctx, func(tx store.Store) error {
		l, err := tx.InsertList(s.ctx, store.ListFields{Name: "kept", OwnerID: owner, Date: day()})
		if err != nil {
			return err
		}
		inserted = l.ID
		return nil
	})
	s.Require().NoError(err)
	l, err = s.Store.FindListByID(s.ctx, inserted)
	s.NoError(err)
	s.NotNil(l)
}

func (s *Suite) TestConcurrentItemRemovalHasOneWinner() {
	listID := s.list(s.user(), "race")
	it, err := s.Store.InsertItem(s.ctx, listID, store.ItemFields{Name: "contested"})
	s.Require().NoError(err)

	const callers = 8
	results := make(chan error, callers)
	for range callers {
		go func() { results <- s.Store.SoftDeleteItem(s.ctx, it.ID) }()
	}
	var won, lost int
	for range callers {
		err := <-results
		switch {
		case err == nil:
			won++
		case errors.Is(err, store.ErrNotActive):
			lost++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, won)
	s.Equal(callers-1, lost)
}
