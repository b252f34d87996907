package cli

import (
	"fmt"
	"time"

	"truefund.org/internal/auth"
)

type TokenCmd struct {
	Secret string        `required:"" env:"TRUEFUND_AUTH_SECRET" help:"Shared HS256 secret."`
	User   string        `required:"" help:"User id (the token subject)."`
	Email  string        `help:"Email claim. Emails listed in TRUEFUND_ADMIN_EMAILS get admin access."`
	Name   string        `help:"Display name claim."`
	TTL    time.Duration `default:"24h" help:"Token lifetime."`
}

func (cmd *TokenCmd) Run(env *Environment) error {
	tokens, err := auth.NewTokens(cmd.Secret)
	if err != nil {
		return err
	}
	tok, err := tokens.Generate(auth.Identity{ID: cmd.User, Email: cmd.Email, Name: cmd.Name}, cmd.TTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, tok)
	return nil
}
