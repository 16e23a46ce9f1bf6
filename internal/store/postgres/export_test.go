package postgres

import "context"

func Truncate(ctx context.Context, s *Store) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE events, users`)
	return err
}
