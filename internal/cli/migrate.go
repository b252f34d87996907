package cli

import (
	"context"
	"fmt"
	"time"

	"truefund.org/internal/migrate"
	"truefund.org/internal/store/pg/migrations"
	"truefund.org/internal/store/pg/seeds"
)

type MigrateCmd struct {
	Action  string        `arg:"" enum:"up,down,status,seed" help:"One of up, down, status, seed."`
	DSN     string        `required:"" env:"TRUEFUND_PG_DSN" help:"PostgreSQL DSN."`
	Timeout time.Duration `default:"30s" help:"Deadline for the whole run."`
}

func (cmd *MigrateCmd) Run(env *Environment) error {
	db, err := env.OpenDB(cmd.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	mgr := migrate.NewManager(db, migrations.FS, seeds.FS)
	switch cmd.Action {
	case "up":
		err = mgr.Up(ctx)
	case "down":
		err = mgr.Down(ctx)
	case "seed":
		err = mgr.Seed(ctx)
	case "status":
		var list []migrate.MigrationStatus
		if list, err = mgr.Status(ctx); err == nil {
			for _, m := range list {
				mark := "pending"
				if m.Applied {
					mark = "applied"
				}
				fmt.Fprintf(env.Stdout, "%-8s %s\n", mark, m.Name)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cmd.Action, err)
	}
	if cmd.Action != "status" {
		fmt.Fprintf(env.Stdout, "migrate %s: ok\n", cmd.Action)
	}
	return nil
}
