package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"truefund.org/internal/fund"
)

// RecordDonation credits the campaign and appends the ledger row in one transaction.
func (s *Store) RecordDonation(ctx context.Context, d fund.Donation) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	collected, err := applyDonation(ctx, tx, d.CampaignID, d.Amount)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		insert into donations(id, campaign_id, donor_id, donor_name, amount, tip_amount, released, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, d.ID, d.CampaignID, d.DonorID, d.DonorName, d.Amount, d.TipAmount, d.Released, d.CreatedAt); err != nil {
		return 0, fmt.Errorf("insert donation: %w", mapErr(err))
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return collected, nil
}

// applyDonation is a single conditional increment; the row lock it takes serialises
// concurrent donations to the same campaign.
func applyDonation(ctx context.Context, tx *sql.Tx, campaignID string, principal int64) (int64, error) {
	var collected int64
	err := tx.QueryRowContext(ctx, `
		update campaigns set collected_amount = collected_amount + $2
		where id = $1
		returning collected_amount
	`, campaignID, principal).Scan(&collected)
	if err != nil {
		return 0, mapErr(err)
	}
	return collected, nil
}

func (s *Store) ListDonations(ctx context.Context, f fund.DonationFilter) ([]fund.Donation, error) {
	var (
		where []string
		args  []any
	)
	if f.CampaignID != "" {
		args = append(args, f.CampaignID)
		where = append(where, fmt.Sprintf("campaign_id = $%d", len(args)))
	}
	if f.DonorID != "" {
		args = append(args, f.DonorID)
		where = append(where, fmt.Sprintf("donor_id = $%d", len(args)))
	}
	query := `select id, campaign_id, donor_id, donor_name, amount, tip_amount, released, created_at from donations`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by created_at desc, id desc"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	res := make([]fund.Donation, 0)
	for rows.Next() {
		var d fund.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorID, &d.DonorName, &d.Amount, &d.TipAmount, &d.Released, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (s *Store) ReleaseDonations(ctx context.Context, campaignID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var dummy int
	if err := tx.QueryRowContext(ctx, `select 1 from campaigns where id=$1 for update`, campaignID).Scan(&dummy); err != nil {
		return 0, mapErr(err)
	}
	res, err := tx.ExecContext(ctx, `update donations set released = true where campaign_id=$1 and not released`, campaignID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) ListReviews(ctx context.Context) ([]fund.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_name, user_image, review_text, rating, created_at
		from reviews order by created_at desc
	`)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	res := make([]fund.Review, 0)
	for rows.Next() {
		var r fund.Review
		if err := rows.Scan(&r.ID, &r.UserName, &r.UserImage, &r.ReviewText, &r.Rating, &r.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}
