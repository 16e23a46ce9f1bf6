// Package store defines the persistence contract shared by the mongo,
// postgres and memory backends.
package store

import (
	"context"
	"errors"

	"weekly-agenda-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// EventFilter narrows ListEvents. Zero fields impose no constraint.
type EventFilter struct {
	DayOfWeek   string
	Description string // case-insensitive substring
}

type Users interface {
	// CreateUser assigns u.ID. It returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
}

type Events interface {
	// CreateEvent assigns e.ID.
	CreateEvent(ctx context.Context, e *model.Event) error
	ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	// DeleteEventsByDay removes the events of one day and returns exactly
	// the removed records, in creation order.
	DeleteEventsByDay(ctx context.Context, day string) ([]model.Event, error)
}

// Store is what the HTTP layer depends on. Malformed ids yield ErrNotFound.
type Store interface {
	Users
	Events
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
