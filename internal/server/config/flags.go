package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-d", "-s", "-t", "-o", "-n", "-r", "-l"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   session signing secret
//	-t int      session validity, days
//	-o int      one-time code validity, minutes
//	-n string   notifier backend (log, smtp, ses, nats)
//	-r string   OTP store backend (postgres, redis)
//	-l string   log level
//
// Unknown arguments are filtered out first so other flag sets can share os.Args.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.SessionDays, "t", config.SessionDays, "session validity (in days)")
	otpMinutes := fs.Int("o", int(config.OTPValidity.Minutes()), "one-time code validity (in minutes)")
	fs.StringVar(&config.Notifier, "n", config.Notifier, "notifier backend")
	fs.StringVar(&config.OTPStore, "r", config.OTPStore, "one-time code store backend")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	config.OTPValidity = time.Duration(*otpMinutes) * time.Minute
	return nil
}
