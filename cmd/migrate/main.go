package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/nekogravitycat/resource-booking-backend/internal/db"
	"github.com/nekogravitycat/resource-booking-backend/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("migrate failed")
		os.Exit(1)
	}
}

func run() error {
	var (
		dsn    string
		action string
	)

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", "", "database DSN (default: $DB_DSN)")
	flagSet.StringVarP(&action, "action", "a", db.ActionUp,
		fmt.Sprintf("one of %s, %s, %s, %s", db.ActionUp, db.ActionDown, db.ActionStepUp, db.ActionDrop))
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	logger.Init(false)

	if dsn == "" {
		// .env is optional
		_ = godotenv.Load()
		dsn = os.Getenv("DB_DSN")
	}
	if dsn == "" {
		return fmt.Errorf("no database DSN: pass --dsn or set DB_DSN")
	}

	return db.Migrate(dsn, action)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Apply the embedded schema migrations.\n\nUsage:\n  migrate [flags]\n\nFlags:\n")
	flagSet.PrintDefaults()
}
