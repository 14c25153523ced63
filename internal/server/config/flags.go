package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags overlays values from the command line. Only flags defined here
// are consumed; the rest of os.Args is ignored.
//
//	-a string   REST bind address (e.g. ":8080")
//	-g string   gRPC health bind address
//	-m string   admin (metrics/pprof) bind address
//	-store      "postgres" or "buntdb"
//	-d string   PostgreSQL DSN
//	-bunt       BuntDB file path (":memory:" for a throwaway store)
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-o int      one-time code validity, minutes
//	-r int      reset link validity, minutes
//	-mailer     "smtp", "ses" or "log"
//	-redis      Redis URL for rate limiting
//	-log        "json" or "logfmt"
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "REST address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.AdminAddr, "m", config.AdminAddr, "admin address and port")
	fs.StringVar(&config.StoreDriver, "store", config.StoreDriver, "store driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BuntPath, "bunt", config.BuntPath, "buntdb path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	otpValidity := fs.Int("o", int(config.OTPValidityDuration.Minutes()), "one-time code validity (in minutes)")
	resetValidity := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset link validity (in minutes)")

	fs.StringVar(&config.Mailer, "mailer", config.Mailer, "notification backend")
	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "redis URL")
	fs.StringVar(&config.LogFormat, "log", config.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], flagx.DefinedFlags(fs))); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.OTPValidityDuration = time.Duration(*otpValidity) * time.Minute
	config.ResetTokenValidityDuration = time.Duration(*resetValidity) * time.Minute
}
