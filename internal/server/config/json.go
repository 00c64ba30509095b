package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/flagx"
	"github.com/dmitrijs2005/notekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so "10m" and integer nanoseconds both decode. Fields left
// out of the file keep their current values.
type JsonConfig struct {
	HTTPAddr       *string         `json:"http_addr"`
	GRPCAddr       *string         `json:"grpc_addr"`
	DatabaseDSN    *string         `json:"database_dsn"`
	SecretKey      *string         `json:"secret_key"`
	SessionDays    *int            `json:"session_days"`
	CookieName     *string         `json:"cookie_name"`
	CookieSecure   *bool           `json:"cookie_secure"`
	OTPValidity    *timex.Duration `json:"otp_validity"`
	OTPStore       *string         `json:"otp_store"`
	OTPRetention   *timex.Duration `json:"otp_retention"`
	CORSOrigins    []string        `json:"cors_origins"`
	RedisAddr      *string         `json:"redis_addr"`
	StorageTimeout *timex.Duration `json:"storage_timeout"`
	NotifyTimeout  *timex.Duration `json:"notify_timeout"`
	Notifier       *string         `json:"notifier"`
	MailFrom       *string         `json:"mail_from"`
	AppBaseURL     *string         `json:"app_base_url"`
	SMTPHost       *string         `json:"smtp_host"`
	SMTPPort       *int            `json:"smtp_port"`
	SMTPUser       *string         `json:"smtp_user"`
	SESRegion      *string         `json:"ses_region"`
	NATSURL        *string         `json:"nats_url"`
	LogBackend     *string         `json:"log_backend"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config (if any) and copies the
// fields it sets into config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CookieName, c.CookieName)
	setString(&config.OTPStore, c.OTPStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.Notifier, c.Notifier)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.AppBaseURL, c.AppBaseURL)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SESRegion, c.SESRegion)
	setString(&config.NATSURL, c.NATSURL)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionDays != nil {
		config.SessionDays = *c.SessionDays
	}
	if c.SMTPPort != nil {
		config.SMTPPort = *c.SMTPPort
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.OTPValidity != nil {
		config.OTPValidity = c.OTPValidity.Duration
	}
	if c.OTPRetention != nil {
		config.OTPRetention = c.OTPRetention.Duration
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.StorageTimeout != nil {
		config.StorageTimeout = c.StorageTimeout.Duration
	}
	if c.NotifyTimeout != nil {
		config.NotifyTimeout = c.NotifyTimeout.Duration
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
