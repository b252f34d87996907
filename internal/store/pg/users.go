package pg

import (
	"context"
	"fmt"

	"truefund.org/internal/auth"
)

const userColumns = `id, name, email, phone, is_ngo, is_admin, kyc_verified, created_at`

func scanUser(row scanner) (auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.IsNgo, &u.IsAdmin, &u.KYCVerified, &u.CreatedAt)
	return u, err
}

func (s *Store) EnsureUser(ctx context.Context, u auth.User) (auth.User, error) {
	if _, err := s.db.ExecContext(ctx, `
		insert into users(id, name, email, phone, is_admin, created_at)
		values ($1,$2,$3,$4,$5,$6)
		on conflict (id) do nothing
	`, u.ID, u.Name, u.Email, u.Phone, u.IsAdmin, u.CreatedAt); err != nil {
		return auth.User{}, fmt.Errorf("ensure user: %w", mapErr(err))
	}
	return s.FindUser(ctx, u.ID)
}

func (s *Store) FindUser(ctx context.Context, id string) (auth.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id))
	if err != nil {
		return auth.User{}, mapErr(err)
	}
	return u, nil
}

func (s *Store) UpdateUserFlags(ctx context.Context, id string, f auth.FlagUpdate) (auth.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		update users set
			is_ngo = coalesce($2, is_ngo),
			kyc_verified = coalesce($3, kyc_verified),
			is_admin = coalesce($4, is_admin)
		where id=$1
		returning `+userColumns,
		id, f.IsNgo, f.KYCVerified, f.IsAdmin))
	if err != nil {
		return auth.User{}, mapErr(err)
	}
	return u, nil
}
