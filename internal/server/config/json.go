package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	AdminAddr                    string         `json:"admin_addr"`
	StoreDriver                  string         `json:"store_driver"`
	DatabaseDSN                  string         `json:"database_dsn"`
	BuntPath                     string         `json:"bunt_path"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	OTPValidityDuration          timex.Duration `json:"otp_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost"`
	Mailer                       string         `json:"mailer"`
	SMTPHost                     string         `json:"smtp_host"`
	SMTPPort                     int            `json:"smtp_port"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	EmailFrom                    string         `json:"email_from"`
	SESRegion                    string         `json:"ses_region"`
	SESAccessKey                 string         `json:"ses_access_key"`
	SESSecretKey                 string         `json:"ses_secret_key"`
	FrontendURL                  string         `json:"frontend_url"`
	RedisURL                     string         `json:"redis_url"`
	OTPRateLimit                 int            `json:"otp_rate_limit"`
	OTPRateWindow                timex.Duration `json:"otp_rate_window"`
	CORSOrigin                   string         `json:"cors_origin"`
	LogFormat                    string         `json:"log_format"`
	PurgeInterval                timex.Duration `json:"purge_interval"`
}

// parseJson overlays values from the file named by -c/-config. Keys absent
// from the file leave the current value untouched. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.AdminAddr, c.AdminAddr)
	setString(&config.StoreDriver, c.StoreDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BuntPath, c.BuntPath)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration)
	setDuration(&config.OTPValidityDuration, c.OTPValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.Mailer, c.Mailer)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.EmailFrom, c.EmailFrom)
	setString(&config.SESRegion, c.SESRegion)
	setString(&config.SESAccessKey, c.SESAccessKey)
	setString(&config.SESSecretKey, c.SESSecretKey)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.RedisURL, c.RedisURL)
	setInt(&config.OTPRateLimit, c.OTPRateLimit)
	setDuration(&config.OTPRateWindow, c.OTPRateWindow)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setString(&config.LogFormat, c.LogFormat)
	setDuration(&config.PurgeInterval, c.PurgeInterval)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
