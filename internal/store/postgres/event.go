package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
)

const eventColumns = `id::text, description, day_of_week, user_id, created_at`

func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	id := uuid.NewString()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO events (id, description, day_of_week, user_id)
		 VALUES ($1,$2,$3,$4)
		 RETURNING created_at`,
		id, e.Description, e.DayOfWeek, e.UserID,
	).Scan(&e.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	e.ID = id
	return nil
}

func (s *Store) ListEvents(ctx context.Context, f store.EventFilter) ([]model.Event, error) {
	var (
		where []string
		args  []any
	)
	if f.DayOfWeek != "" {
		args = append(args, f.DayOfWeek)
		where = append(where, fmt.Sprintf("day_of_week = $%d", len(args)))
	}
	if f.Description != "" {
		// strpos instead of ILIKE so % and _ match literally
		args = append(args, f.Description)
		where = append(where, fmt.Sprintf("strpos(lower(description), lower($%d)) > 0", len(args)))
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY seq`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	e := &model.Event{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.Description, &e.DayOfWeek, &e.UserID, &e.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if !validID(id) {
		return store.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteEventsByDay deletes and returns the rows in one statement.
func (s *Store) DeleteEventsByDay(ctx context.Context, day string) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx,
		`WITH deleted AS (
		     DELETE FROM events WHERE day_of_week = $1
		     RETURNING id, seq, description, day_of_week, user_id, created_at
		 )
		 SELECT `+eventColumns+` FROM deleted ORDER BY seq`, day,
	)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Description, &e.DayOfWeek, &e.UserID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
