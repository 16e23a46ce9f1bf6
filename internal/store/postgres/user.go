package postgres

import (
	"context"

	"github.com/google/uuid"

	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
)

const userColumns = `id::text, first_name, last_name, birth_date, city, country, email, password_hash, created_at`

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	id := uuid.NewString()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, first_name, last_name, birth_date, city, country, email, password_hash)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at`,
		id, u.FirstName, u.LastName, u.BirthDate, u.City, u.Country, u.Email, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	u.ID = id
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, `email = $1`, email)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, store.ErrNotFound
	}
	return s.userWhere(ctx, `id = $1`, id)
}

func (s *Store) userWhere(ctx context.Context, cond string, arg any) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+cond, arg,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.BirthDate, &u.City, &u.Country,
		&u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}
