package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"truefund.org/internal/moderation"
)

const ngoColumns = `id, user_id, documents_url, status, verified, requested_at, resolved_at`

func scanNgo(row scanner) (moderation.NgoVerification, error) {
	var (
		v        moderation.NgoVerification
		status   string
		resolved sql.NullTime
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.DocumentsURL, &status, &v.Verified, &v.RequestedAt, &resolved); err != nil {
		return moderation.NgoVerification{}, err
	}
	v.Status = moderation.NgoStatus(status)
	if resolved.Valid {
		t := resolved.Time
		v.ResolvedAt = &t
	}
	return v, nil
}

// InsertNgo relies on the partial unique index over pending requests per user.
func (s *Store) InsertNgo(ctx context.Context, v moderation.NgoVerification) error {
	_, err := s.db.ExecContext(ctx, `
		insert into ngo_verifications(id, user_id, documents_url, status, verified, requested_at)
		values ($1,$2,$3,$4,false,$5)
	`, v.ID, v.UserID, v.DocumentsURL, string(v.Status), v.RequestedAt)
	if err != nil {
		return fmt.Errorf("insert ngo verification: %w", mapErr(err))
	}
	return nil
}

func (s *Store) ListNgo(ctx context.Context, f moderation.NgoFilter) ([]moderation.NgoVerification, error) {
	query := `select ` + ngoColumns + ` from ngo_verifications where ($1 = '' or user_id = $1) and (not $2 or status = 'pending')
		order by requested_at desc, id desc`
	rows, err := s.db.QueryContext(ctx, query, f.UserID, f.PendingOnly)
	if err != nil {
		return nil, fmt.Errorf("list ngo verifications: %w", err)
	}
	defer rows.Close()

	res := make([]moderation.NgoVerification, 0)
	for rows.Next() {
		v, err := scanNgo(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (s *Store) ResolveNgo(ctx context.Context, id string, status moderation.NgoStatus, at time.Time) (moderation.NgoVerification, error) {
	if _, err := s.db.ExecContext(ctx, `
		update ngo_verifications set status=$2, verified=$3, resolved_at=$4
		where id=$1 and status='pending'
	`, id, string(status), status == moderation.NgoVerified, at); err != nil {
		return moderation.NgoVerification{}, fmt.Errorf("resolve ngo verification: %w", err)
	}
	v, err := scanNgo(s.db.QueryRowContext(ctx, `select `+ngoColumns+` from ngo_verifications where id=$1`, id))
	if err != nil {
		return moderation.NgoVerification{}, mapErr(err)
	}
	return v, nil
}

const ticketColumns = `id, name, email, message, status, created_at, resolved_at`

func scanTicket(row scanner) (moderation.Ticket, error) {
	var (
		t        moderation.Ticket
		status   string
		resolved sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Message, &status, &t.CreatedAt, &resolved); err != nil {
		return moderation.Ticket{}, err
	}
	t.Status = moderation.TicketStatus(status)
	if resolved.Valid {
		at := resolved.Time
		t.ResolvedAt = &at
	}
	return t, nil
}

func (s *Store) InsertTicket(ctx context.Context, t moderation.Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		insert into tickets(id, name, email, message, status, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, t.ID, t.Name, t.Email, t.Message, string(t.Status), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", mapErr(err))
	}
	return nil
}

func (s *Store) ListTickets(ctx context.Context, openOnly bool) ([]moderation.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `select `+ticketColumns+` from tickets where (not $1 or status = 'open')
		order by created_at desc, id desc`, openOnly)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	res := make([]moderation.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *Store) ResolveTicket(ctx context.Context, id string, at time.Time) (moderation.Ticket, error) {
	if _, err := s.db.ExecContext(ctx, `
		update tickets set status='resolved', resolved_at=$2
		where id=$1 and status='open'
	`, id, at); err != nil {
		return moderation.Ticket{}, fmt.Errorf("resolve ticket: %w", err)
	}
	t, err := scanTicket(s.db.QueryRowContext(ctx, `select `+ticketColumns+` from tickets where id=$1`, id))
	if err != nil {
		return moderation.Ticket{}, mapErr(err)
	}
	return t, nil
}
