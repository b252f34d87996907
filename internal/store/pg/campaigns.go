package pg

import (
	"context"
	"fmt"
	"strings"

	"truefund.org/internal/fund"
)

const campaignColumns = `id, title, description, image_url, location, cause, goal_amount,
	collected_amount, unique_code, verified, is_temporary, hospital_email, created_by, created_at`

func scanCampaign(row scanner) (fund.Campaign, error) {
	var c fund.Campaign
	var cause string
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ImageURL, &c.Location, &cause, &c.GoalAmount,
		&c.CollectedAmount, &c.UniqueCode, &c.Verified, &c.IsTemporary, &c.HospitalEmail, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		return fund.Campaign{}, err
	}
	c.Cause = fund.Cause(cause)
	return c, nil
}

func (s *Store) InsertCampaign(ctx context.Context, c fund.Campaign) error {
	_, err := s.db.ExecContext(ctx, `
		insert into campaigns(id, title, description, image_url, location, cause, goal_amount,
			collected_amount, unique_code, verified, is_temporary, hospital_email, created_by, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,0,$8,false,$9,$10,$11,$12)
	`, c.ID, c.Title, c.Description, c.ImageURL, c.Location, string(c.Cause), c.GoalAmount,
		c.UniqueCode, c.IsTemporary, c.HospitalEmail, c.CreatedBy, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", mapErr(err))
	}
	return nil
}

func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `select exists(select 1 from campaigns where unique_code=$1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup code: %w", err)
	}
	return exists, nil
}

func (s *Store) GetCampaign(ctx context.Context, id string) (fund.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, `select `+campaignColumns+` from campaigns where id=$1`, id))
	if err != nil {
		return fund.Campaign{}, mapErr(err)
	}
	return c, nil
}

func (s *Store) GetCampaignByCode(ctx context.Context, code string) (fund.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, `select `+campaignColumns+` from campaigns where unique_code=$1`, code))
	if err != nil {
		return fund.Campaign{}, mapErr(err)
	}
	return c, nil
}

// listQuery renders the filter as SQL. Ordering mirrors fund.SortCampaigns.
func listQuery(f fund.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Cause != "" {
		where = append(where, "cause = "+arg(string(f.Cause)))
	}
	if f.Location != "" {
		where = append(where, "lower(trim(location)) = lower("+arg(f.Location)+")")
	}
	if f.VerifiedOnly {
		where = append(where, "verified")
	}
	if f.CreatedBy != "" {
		where = append(where, "created_by = "+arg(f.CreatedBy))
	}
	if f.Search != "" {
		p := arg(f.Search)
		where = append(where, "(strpos(lower(title), lower("+p+")) > 0 or unique_code = upper("+p+"))")
	}

	var b strings.Builder
	b.WriteString("select " + campaignColumns + " from campaigns")
	if len(where) > 0 {
		b.WriteString(" where " + strings.Join(where, " and "))
	}
	switch f.Sort {
	case fund.SortMostFunded:
		b.WriteString(" order by collected_amount desc, created_at desc, id desc")
	case fund.SortVerified:
		b.WriteString(" order by verified desc, created_at desc, id desc")
	default:
		b.WriteString(" order by created_at desc, id desc")
	}
	return b.String(), args
}

func (s *Store) ListCampaigns(ctx context.Context, f fund.Filter) ([]fund.Campaign, error) {
	query, args := listQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	res := make([]fund.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *Store) SetVerified(ctx context.Context, id string, verified bool) (fund.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx,
		`update campaigns set verified=$2 where id=$1 returning `+campaignColumns, id, verified))
	if err != nil {
		return fund.Campaign{}, mapErr(err)
	}
	return c, nil
}
