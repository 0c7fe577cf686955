package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-crisis-response/internal/logging"
	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/repository"
	"github.com/mr1hm/go-crisis-response/internal/seed"
)

var (
	// Global flags
	seedPath string
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "crisisctl",
	Short: "Operator tool for the crisis-response data",
	Long: `crisisctl reads the same request, region and aid data the server
serves. Data comes from the built-in mock set, a YAML seed file (--seed),
or a SQLite database written by the server (--db).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel, "text")
		if seedPath == "" {
			seedPath = os.Getenv("SEED_PATH")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed", "", "YAML seed file (default $SEED_PATH, then built-in data)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database to read requests from")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(requestsCmd, overviewCmd, fundingCmd, transferCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// source opens the data the commands read from. On success the returned
// close func is non-nil.
func source() (*repository.MemoryStore, repository.RequestRepository, func(), error) {
	data, err := seed.Load(seedPath, time.Now())
	if err != nil {
		return nil, nil, nil, err
	}
	memory := repository.NewMemoryStore(data)
	if dbPath == "" {
		return memory, memory, func() {}, nil
	}

	db, err := repository.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return memory, db, func() { db.Close() }, nil
}

func loadRequests(ctx context.Context) ([]models.Request, error) {
	_, requests, closeFn, err := source()
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return requests.ListRequests(ctx)
}
