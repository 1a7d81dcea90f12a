package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	dbfs "github.com/predial/vistoria/db"
	"github.com/predial/vistoria/internal/config"
	"github.com/predial/vistoria/internal/db"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the vistoria database schema",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(upCmd(), statusCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*db.DB, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return db.New(ctx, cfg.DatabasePath)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.Migrate(ctx, conn, dbfs.Migrations); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := db.AppliedMigrations(ctx, conn)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("no migrations applied")
				return nil
			}
			for _, name := range applied {
				fmt.Println(name)
			}
			return nil
		},
	}
}
