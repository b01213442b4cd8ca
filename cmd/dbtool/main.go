package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"mission-circuit-service/internal/adapters/repositories"
	"mission-circuit-service/internal/config"
	"mission-circuit-service/internal/platform/db"
	"mission-circuit-service/internal/platform/obs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// dbtool creates the schema and loads seed data into Postgres (DATABASE_URL)
// or, with -sqlite, into a SQLite file (DB_PATH).
func main() {
	useSqlite := flag.Bool("sqlite", false, "use the SQLite database at DB_PATH instead of DATABASE_URL")
	skipSeed := flag.Bool("schema-only", false, "create the schema without loading seed data")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}
	obs.SetupLogger(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "text"))

	var (
		conn    *sql.DB
		dialect repositories.Dialect
		err     error
	)
	if *useSqlite {
		conn, err = db.OpenSqlite(config.Get("DB_PATH", "data/app.db"))
		dialect = repositories.Sqlite
	} else {
		databaseURL := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(databaseURL) == "" {
			slog.Error("DATABASE_URL is required (or pass -sqlite)")
			os.Exit(1)
		}
		conn, err = db.Open(databaseURL)
		dialect = repositories.Postgres
	}
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/missions.json")
	if *skipSeed {
		seedPath = ""
	}
	if err := initAndSeed(conn, dialect, seedPath); err != nil {
		slog.Error("dbtool failed", "err", err)
		conn.Close()
		os.Exit(1)
	}
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect, seedPath string) error {
	slog.Info("initializing database schema", "dialect", dialect.Name)
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	slog.Info("schema ready")

	if seedPath == "" {
		return nil
	}

	slog.Info("seeding database", "path", seedPath)
	if err := repositories.SeedFromJSON(conn, dialect, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	slog.Info("seeding complete")

	return nil
}
