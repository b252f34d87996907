// Package cli implements truefundctl, the operator tool for migrations, development
// tokens and smoke checks.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alecthomas/kong"

	"truefund.org/internal/store/pg"
)

// Environment provides an abstraction around the execution environment.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// OpenDB connects to PostgreSQL. Defaults to the pgx driver.
	OpenDB func(dsn string) (*sql.DB, error)
	// HTTP is used by smoke checks. Defaults to a client with a 10s timeout.
	HTTP *http.Client
}

type CLI struct {
	Migrate MigrateCmd `cmd:"" help:"Apply, roll back, list or seed database migrations."`
	Token   TokenCmd   `cmd:"" help:"Mint a development bearer token."`
	Smoke   SmokeCmd   `cmd:"" help:"Run smoke checks against a running API."`
}

// Run parses args and executes the selected command. It returns the process exit code.
func Run(env Environment, args []string) int {
	if env.OpenDB == nil {
		env.OpenDB = openPG
	}
	if env.HTTP == nil {
		env.HTTP = &http.Client{Timeout: 10 * time.Second}
	}

	app := CLI{}
	exit := -1
	parser, err := kong.New(&app,
		kong.Name("truefundctl"),
		kong.Description("TrueFund operator tools"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(env.Stdout, env.Stderr),
		kong.Exit(func(code int) { exit = code }),
	)
	if err != nil {
		fmt.Fprintf(env.Stderr, "truefundctl: %v\n", err)
		return 2
	}

	cntx, err := parser.Parse(args)
	if exit >= 0 {
		// --help
		return exit
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "truefundctl: %v\n", err)
		return 2
	}

	if err := cntx.Run(&env); err != nil {
		fmt.Fprintf(env.Stderr, "truefundctl: %v\n", err)
		return 1
	}
	return 0
}

func openPG(dsn string) (*sql.DB, error) {
	store, err := pg.Open(dsn)
	if err != nil {
		return nil, err
	}
	return store.DB(), nil
}
