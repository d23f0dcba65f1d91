package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application-wide configuration. Set by NewConfig.
var Conf *Config

type (
	ServerConfig struct {
		Host               string
		Port               int
		DebugPort          int
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	ReminderConfig struct {
		CronSpec string
		LeadTime time.Duration
		Email    string // recipient of completion reminder digests
	}

	Config struct {
		Debug           bool
		TestMode        bool
		Env             string
		Build           string
		AppName         string
		SecretKey       string
		FrontendBaseURL string

		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
		Reminder ReminderConfig
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c ServerConfig) DebugAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.DebugPort))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the configuration from defaults, an optional
// config/.env.<env> file and environment variables (in increasing precedence)
// and sets the package-wide Conf.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "MSTeams")
	v.SetDefault("secretKey", "o0)t%19ir=wb8#x2p(q&f+ln_mdc!e@74hs6*vz-ujk5ag3y$")
	v.SetDefault("frontendBaseURL", "http://localhost:8080")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", 8080)
	v.SetDefault("serverDebugPort", 4000)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "msteams")
	v.SetDefault("databaseUser", "")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTLS", true)

	v.SetDefault("reminderCronSpec", "@hourly")
	v.SetDefault("reminderLeadTime", 24*time.Hour)
	v.SetDefault("reminderEmail", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: strings.TrimRight(v.GetString("frontendBaseURL"), "/"),

		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetInt("serverPort"),
			DebugPort:          v.GetInt("serverDebugPort"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
		Reminder: ReminderConfig{
			CronSpec: v.GetString("reminderCronSpec"),
			LeadTime: v.GetDuration("reminderLeadTime"),
			Email:    v.GetString("reminderEmail"),
		},
	}
	return Conf
}
