package cmd

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/mycloudbox/mycloudbox/internal/db"
	"github.com/spf13/cobra"
)

const defaultConnection = "./data/mycloudbox.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

func MigrateCmd() *cobra.Command {
	var driver, connection string

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if driver == "" {
				driver = envOr("DB_DRIVER", "sqlite")
			}
			if connection == "" {
				connection = envOr("DB_CONNECTION", defaultConnection)
			}
		},
	}
	c.PersistentFlags().StringVar(&driver, "driver", "", "Database driver: sqlite or pgx (default: DB_DRIVER)")
	c.PersistentFlags().StringVar(&connection, "db", "", "Connection string (default: DB_CONNECTION)")

	c.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(driver, connection, func(database *sqlx.DB) error {
				return db.RunMigrations(database.DB, driver)
			})
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(driver, connection, func(database *sqlx.DB) error {
				return db.MigrateDown(database.DB, driver)
			})
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(driver, connection, func(database *sqlx.DB) error {
				version, err := db.Version(database.DB, driver)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "driver %s, version %d\n", driver, version)
				return nil
			})
		},
	})

	return c
}

func withDB(driver, connection string, fn func(*sqlx.DB) error) error {
	database, err := db.Init(driver, connection)
	if err != nil {
		return err
	}
	defer db.Close(database)

	return fn(database)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
