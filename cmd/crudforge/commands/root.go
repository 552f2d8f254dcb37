package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crudforge/crudforge/cmd/crudforge/output"
	"github.com/crudforge/crudforge/pkg/schema"
)

var (
	// Global flags
	dbURL      string
	dbDriver   string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crudforge",
	Short: "CrudForge - CRUD scaffolding from your database schema",
	Long: `CrudForge introspects a relational database schema and generates
ready-to-edit CRUD boilerplate for a Gin + GORM application.

Features:
  - PostgreSQL, MySQL and SQLite introspection
  - Relationship inference from foreign keys (belongsTo, hasOne, hasMany,
    belongsToMany and polymorphic variants)
  - Models, repositories, services, handlers, requests, resources,
    routes, factories, seeders, policies, tests and docs per table
  - Interactive table picker and non-interactive batch mode
  - Dry-run planning and no-clobber writes`,
	Version: "1.4.2",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// A .env in the working directory may carry DATABASE_URL.
		_ = godotenv.Load()
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
	})

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (falls back to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "Database driver: postgres, mysql or sqlite (inferred from --db when unset)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// inferDriver guesses the driver from the connection string shape.
func inferDriver(url string) string {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(url, "mysql://"), strings.Contains(url, "@tcp("), strings.Contains(url, "@unix("):
		return "mysql"
	case url == ":memory:", strings.HasSuffix(url, ".db"), strings.HasSuffix(url, ".sqlite"), strings.HasSuffix(url, ".sqlite3"):
		return "sqlite"
	default:
		return ""
	}
}

// openSource connects to the configured database and returns a schema
// source plus a close func. The caller must defer the close func.
func openSource(ctx context.Context) (schema.Source, func(), error) {
	if dbURL == "" {
		return nil, nil, fmt.Errorf("--db flag or DATABASE_URL is required")
	}

	driver := dbDriver
	if driver == "" {
		driver = inferDriver(dbURL)
	}
	if verbose {
		output.Muted("Connecting with driver %s", driver)
	}

	switch driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return schema.NewPostgres(pool), pool.Close, nil

	case "mysql":
		dsn := strings.TrimPrefix(dbURL, "mysql://")
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse MySQL DSN: %w", err)
		}
		if cfg.DBName == "" {
			return nil, nil, fmt.Errorf("MySQL DSN must name a database")
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return schema.NewMySQL(db, cfg.DBName), func() { _ = db.Close() }, nil

	case "sqlite":
		db, err := sql.Open("sqlite", dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return schema.NewSQLite(db), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported driver %q (use postgres, mysql or sqlite)", driver)
	}
}
