package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/repository/postgres"
	"github.com/pratik-mahalle/tasknest/migrations"
)

const usage = `Usage: migrate <command>

Commands:
  up       apply all pending migrations
  down     roll back the most recent migration
  status   print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runCommand(db, command); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		db.Close()
		os.Exit(1)
	}
}

func runCommand(db *postgres.DB, command string) error {
	switch command {
	case "up":
		if err := postgres.RunMigrations(db, migrations.Files); err != nil {
			return err
		}
	case "down":
		if err := postgres.RollbackMigration(db, migrations.Files); err != nil {
			return err
		}
	case "status":
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	v, err := postgres.MigrationVersion(db, migrations.Files)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d\n", v)
	return nil
}
