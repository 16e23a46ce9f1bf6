// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
)

// Run exercises a backend. newStore must return an empty, migrated store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("events", func(t *testing.T) { testEvents(t, newStore(t)) })
	t.Run("list filters", func(t *testing.T) { testListFilters(t, newStore(t)) })
	t.Run("delete by day", func(t *testing.T) { testDeleteByDay(t, newStore(t)) })
	t.Run("malformed ids", func(t *testing.T) { testMalformedIDs(t, newStore(t)) })
}

func newUser(email string) *model.User {
	return &model.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		BirthDate:    time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC),
		City:         "London",
		Country:      "UK",
		Email:        email,
		PasswordHash: "hash",
	}
}

func mustCreate(t *testing.T, st store.Store, desc, day string) model.Event {
	t.Helper()
	e := &model.Event{Description: desc, DayOfWeek: day, UserID: "owner"}
	require.NoError(t, st.CreateEvent(context.Background(), e))
	require.NotEmpty(t, e.ID)
	return *e
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	email := fmt.Sprintf("test-%s@example.com", uuid.NewString()[:8])

	u := newUser(email)
	require.NoError(t, st.CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)

	err := st.CreateUser(ctx, newUser(email))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := st.UserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, u.BirthDate.Equal(got.BirthDate), "birth date %v", got.BirthDate)

	got, err = st.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)

	_, err = st.UserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testEvents(t *testing.T, st store.Store) {
	ctx := context.Background()

	e := mustCreate(t, st, "Gym", "monday")

	got, err := st.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "Gym", got.Description)
	assert.Equal(t, "monday", got.DayOfWeek)
	assert.Equal(t, "owner", got.UserID)

	require.NoError(t, st.DeleteEvent(ctx, e.ID))
	_, err = st.GetEvent(ctx, e.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.DeleteEvent(ctx, e.ID), store.ErrNotFound)
}

func testListFilters(t *testing.T, st store.Store) {
	ctx := context.Background()

	all, err := st.ListEvents(ctx, store.EventFilter{})
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	gym := mustCreate(t, st, "Morning GYM session", "monday")
	read := mustCreate(t, st, "Read a book", "monday")
	swim := mustCreate(t, st, "Swim (gym pool)", "friday")

	ids := func(es []model.Event) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.ID
		}
		return out
	}

	all, err = st.ListEvents(ctx, store.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{gym.ID, read.ID, swim.ID}, ids(all))

	mon, err := st.ListEvents(ctx, store.EventFilter{DayOfWeek: "monday"})
	require.NoError(t, err)
	assert.Equal(t, []string{gym.ID, read.ID}, ids(mon))

	byDesc, err := st.ListEvents(ctx, store.EventFilter{Description: "gym"})
	require.NoError(t, err)
	assert.Equal(t, []string{gym.ID, swim.ID}, ids(byDesc))

	both, err := st.ListEvents(ctx, store.EventFilter{DayOfWeek: "friday", Description: "GYM"})
	require.NoError(t, err)
	assert.Equal(t, []string{swim.ID}, ids(both))

	// Description is matched literally.
	lit, err := st.ListEvents(ctx, store.EventFilter{Description: "(gym"})
	require.NoError(t, err)
	assert.Equal(t, []string{swim.ID}, ids(lit))

	none, err := st.ListEvents(ctx, store.EventFilter{DayOfWeek: "Monday"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDeleteByDay(t *testing.T, st store.Store) {
	ctx := context.Background()

	removed, err := st.DeleteEventsByDay(ctx, "tuesday")
	require.NoError(t, err)
	assert.Empty(t, removed)

	a := mustCreate(t, st, "a", "tuesday")
	keep := mustCreate(t, st, "b", "wednesday")
	c := mustCreate(t, st, "c", "tuesday")

	removed, err = st.DeleteEventsByDay(ctx, "tuesday")
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, a.ID, removed[0].ID)
	assert.Equal(t, c.ID, removed[1].ID)

	left, err := st.ListEvents(ctx, store.EventFilter{DayOfWeek: "tuesday"})
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = st.GetEvent(ctx, keep.ID)
	assert.NoError(t, err)
}

func testMalformedIDs(t *testing.T, st store.Store) {
	ctx := context.Background()

	_, err := st.UserByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetEvent(ctx, "not-an-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.DeleteEvent(ctx, "not-an-id"), store.ErrNotFound)
}
