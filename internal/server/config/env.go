package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotEnvFiles lists the files loaded into the process environment before it
// is read. Variables already set in the environment win.
var dotEnvFiles = []string{".env"}

// parseEnv overlays values from environment variables. A missing .env file is
// ignored; a malformed one, or a malformed numeric value, panics.
func parseEnv(config *Config) {
	if err := godotenv.Load(dotEnvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.AdminAddr, "ADMIN_ADDR")
	envString(&config.StoreDriver, "STORE_DRIVER")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.BuntPath, "BUNT_PATH")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.SessionTokenValidityDuration, "SESSION_TOKEN_TTL")
	envDuration(&config.OTPValidityDuration, "OTP_TTL")
	envDuration(&config.ResetTokenValidityDuration, "RESET_TOKEN_TTL")
	envInt(&config.BcryptCost, "BCRYPT_COST")
	envString(&config.Mailer, "MAILER")
	envString(&config.SMTPHost, "SMTP_HOST")
	envInt(&config.SMTPPort, "SMTP_PORT")
	envString(&config.SMTPUser, "SMTP_USER")
	envString(&config.SMTPPassword, "SMTP_PASS")
	envString(&config.EmailFrom, "EMAIL_FROM")
	envString(&config.SESRegion, "SES_REGION")
	envString(&config.SESAccessKey, "SES_ACCESS_KEY")
	envString(&config.SESSecretKey, "SES_SECRET_KEY")
	envString(&config.FrontendURL, "FRONTEND_URL")
	envString(&config.RedisURL, "REDIS_URL")
	envInt(&config.OTPRateLimit, "OTP_RATE_LIMIT")
	envDuration(&config.OTPRateWindow, "OTP_RATE_WINDOW")
	envString(&config.CORSOrigin, "CORS_ORIGIN")
	envString(&config.LogFormat, "LOG_FORMAT")
	envDuration(&config.PurgeInterval, "PURGE_INTERVAL")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}
