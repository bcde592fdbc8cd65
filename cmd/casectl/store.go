package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the database schema" }
func (*migrateCmd) Usage() string {
	return `casectl migrate

  Opens the store configured by DB_DRIVER/DB_DSN (or CONFIG_FILE) and applies the schema.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStorage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	fmt.Printf("schema up to date (%s)\n", st.SQL.Dialect())
	return subcommands.ExitSuccess
}

type backupCmd struct{}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "take a backup of the sqlite store now" }
func (*backupCmd) Usage() string {
	return `casectl backup

  Writes a timestamped copy of the sqlite database into BACKUP_DIR, keeps the newest
  BACKUP_KEEP files and uploads the copy when BACKUP_GCS_BUCKET is set.
`
}
func (*backupCmd) SetFlags(*flag.FlagSet) {}

func (*backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := openStorage(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	path, err := st.Backuper.Backup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error taking backup: %v\n", err)
		return subcommands.ExitFailure
	}
	if path == "" {
		fmt.Println("no file backup for this driver")
		return subcommands.ExitSuccess
	}
	fmt.Println(path)
	return subcommands.ExitSuccess
}
