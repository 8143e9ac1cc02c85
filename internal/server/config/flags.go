package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gochat/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   chat bind address (e.g., ":8440")
//	-m string   metrics bind address; empty disables the endpoint
//	-d string   PostgreSQL DSN; empty selects the in-memory store
//	-s string   token HMAC secret key
//	-t int      session-resume token validity, minutes
//	-n int      minimum username length
//	-p int      minimum password length
//	-q int      per-session outbound queue capacity
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - The token validity flag is accepted as an integer in minutes and then
//     converted to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-s", "-t", "-n", "-p", "-q"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address (empty disables)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidityDuration := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")

	fs.IntVar(&config.MinUsernameLength, "n", config.MinUsernameLength, "minimum username length")
	fs.IntVar(&config.MinPasswordLength, "p", config.MinPasswordLength, "minimum password length")
	fs.IntVar(&config.QueueSize, "q", config.QueueSize, "per-session queue capacity")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidityDuration) * time.Minute
}
