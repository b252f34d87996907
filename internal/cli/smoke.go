package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
)

type SmokeCmd struct {
	BaseURL string        `default:"http://localhost:8080" env:"TRUEFUND_BASE_URL" help:"API base URL."`
	Token   string        `env:"TRUEFUND_TOKEN" help:"Bearer token; enables the signed-in checks."`
	Code    string        `help:"Share code of a campaign to donate 1 rupee to."`
	Wait    time.Duration `default:"30s" help:"How long to wait for /readyz."`
}

type smokeClient struct {
	base  string
	token string
	http  *http.Client
	out   io.Writer
}

func (cmd *SmokeCmd) Run(env *Environment) error {
	c := &smokeClient{
		base:  strings.TrimRight(cmd.BaseURL, "/"),
		token: cmd.Token,
		http:  env.HTTP,
		out:   env.Stdout,
	}
	ctx := context.Background()

	if err := c.waitReady(ctx, cmd.Wait); err != nil {
		return err
	}
	if err := c.check(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil); err != nil {
		return err
	}

	var list struct {
		Count int `json:"count"`
	}
	if err := c.check(ctx, http.MethodGet, "/campaigns", nil, http.StatusOK, &list); err != nil {
		return err
	}
	var stats fund.Stats
	if err := c.check(ctx, http.MethodGet, "/stats", nil, http.StatusOK, &stats); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "campaigns=%d raised=%d donations=%d\n", list.Count, stats.TotalRaised, stats.DonationCount)

	if c.token != "" {
		var me auth.User
		if err := c.check(ctx, http.MethodGet, "/auth/user", nil, http.StatusOK, &me); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "signed in as %s (kyc=%t ngo=%t admin=%t)\n", me.ID, me.KYCVerified, me.IsNgo, me.IsAdmin)
	}

	if cmd.Code != "" {
		return c.donateOne(ctx, cmd.Code)
	}
	return nil
}

// waitReady polls /readyz with exponential backoff until it answers 200.
func (c *smokeClient) waitReady(ctx context.Context, wait time.Duration) error {
	op := func() (struct{}, error) {
		return struct{}{}, c.check(ctx, http.MethodGet, "/readyz", nil, http.StatusOK, nil)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	if _, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(wait)); err != nil {
		return fmt.Errorf("api not ready after %s: %w", wait, err)
	}
	return nil
}

func (c *smokeClient) donateOne(ctx context.Context, code string) error {
	var before fund.Campaign
	if err := c.check(ctx, http.MethodGet, "/codes/"+url.PathEscape(code), nil, http.StatusOK, &before); err != nil {
		return err
	}
	var res struct {
		Donation fund.Donation `json:"donation"`
		Campaign fund.Campaign `json:"campaign"`
	}
	body := map[string]any{"campaignId": before.ID, "amount": 1, "donorName": "smoke"}
	if err := c.check(ctx, http.MethodPost, "/donations", body, http.StatusCreated, &res); err != nil {
		return err
	}
	if res.Campaign.CollectedAmount < before.CollectedAmount+1 {
		return fmt.Errorf("collectedAmount went from %d to %d after donating 1", before.CollectedAmount, res.Campaign.CollectedAmount)
	}
	fmt.Fprintf(c.out, "donated 1 to %s (%s), collected=%d released=%t\n",
		before.UniqueCode, before.Title, res.Campaign.CollectedAmount, res.Donation.Released)
	return nil
}

func (c *smokeClient) check(ctx context.Context, method, path string, body any, want int, dst any) error {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s %s: status %d, want %d: %s", method, path, resp.StatusCode, want, e.Message)
	}
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	fmt.Fprintf(c.out, "ok  %-5s %s\n", method, path)
	return nil
}
