package auth

import (
	"context"
	"strings"
	"time"

	"truefund.org/internal/fund"
)

// Directory resolves token identities to stored users and owns their flags.
type Directory struct {
	store  UserStore
	admins map[string]struct{}
	now    func() time.Time
}

// NewDirectory wires a Directory. Users whose email appears in adminEmails are
// admins; the list is re-applied on every Ensure.
func NewDirectory(store UserStore, adminEmails []string) *Directory {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Directory{store: store, admins: admins, now: time.Now}
}

// Ensure returns the stored user for id, creating it on first sight.
func (d *Directory) Ensure(ctx context.Context, id Identity) (User, error) {
	id.ID = strings.TrimSpace(id.ID)
	if id.ID == "" {
		return User{}, fund.ErrUnauthenticated
	}
	admin := d.isAdmin(id.Email)
	u, err := d.store.EnsureUser(ctx, User{
		ID:        id.ID,
		Name:      strings.TrimSpace(id.Name),
		Email:     strings.TrimSpace(id.Email),
		IsAdmin:   admin,
		CreatedAt: d.now().UTC(),
	})
	if err != nil {
		return User{}, err
	}
	if u.IsAdmin != admin {
		return d.store.UpdateUserFlags(ctx, u.ID, FlagUpdate{IsAdmin: &admin})
	}
	return u, nil
}

func (d *Directory) isAdmin(email string) bool {
	_, ok := d.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Find fetches a stored user.
func (d *Directory) Find(ctx context.Context, id string) (User, error) {
	return d.store.FindUser(ctx, strings.TrimSpace(id))
}

// SetNgo records an NGO verification outcome.
func (d *Directory) SetNgo(ctx context.Context, id string, isNgo bool) error {
	_, err := d.store.UpdateUserFlags(ctx, strings.TrimSpace(id), FlagUpdate{IsNgo: &isNgo})
	return err
}

// UpdateFlags applies an admin edit. Admin status is derived from configuration and
// cannot be changed here.
func (d *Directory) UpdateFlags(ctx context.Context, id string, f FlagUpdate) (User, error) {
	f.IsAdmin = nil
	if f.Empty() {
		return User{}, &fund.ValidationError{Message: "at least one of isNgo, kycVerified is required"}
	}
	return d.store.UpdateUserFlags(ctx, strings.TrimSpace(id), f)
}
