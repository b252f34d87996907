package auth

import "context"

// UserStore persists user records.
//
// EnsureUser inserts u when no user with u.ID exists and returns the stored record
// either way. Lookups of unknown ids fail with fund.ErrNotFound.
type UserStore interface {
	EnsureUser(ctx context.Context, u User) (User, error)
	FindUser(ctx context.Context, id string) (User, error)
	UpdateUserFlags(ctx context.Context, id string, f FlagUpdate) (User, error)
}
