package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config holds all application settings, resolved once at process start.
	Config struct {
		Env      string
		Build    string
		Debug    bool
		TestMode bool
		AppName  string

		SecretKey string

		// AdminKey unlocks the week-override endpoints. Empty means admin
		// functions are disabled and unlock attempts fail with a ConfigError.
		AdminKey string

		// CurrentWeek is the default open submission week.
		CurrentWeek int

		Server     ServerConfig
		Mail       MailConfig
		Database   DatabaseConfig
		Classifier ClassifierConfig

		RollbarToken string
	}

	ServerConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	MailConfig struct {
		Backend  string // console | smtp | sendgrid
		Address  string
		Password string
		SMTPHost string
		SMTPPort int

		SendgridAPIKey string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	ClassifierConfig struct {
		BaseURL string
		APIKey  string
		Model   string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.Mail.Address}
}

// NewConfig loads the configuration from config/.env.<env> (if present) and
// the environment. Required credentials are checked here so the process fails
// before serving anything; missing keys surface as a ConfigError.
func NewConfig() (*Config, error) {
	conf := loadConfig()
	if err := conf.check(); err != nil {
		return nil, err
	}
	return conf, nil
}

// NewCLIConfig loads the same configuration without the serving credential
// checks. The admin CLI runs migrations and week setup with no mail or
// classifier credentials at all, and prompts for the SMTP password at the
// point of use when sending.
func NewCLIConfig() *Config {
	return loadConfig()
}

func loadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "ShowTell")
	v.SetDefault("secretKey", "h2(h!x)#*c2(#yg4h^$cegm2emy-poq5-wer)enb$+57=dz&uox")
	v.SetDefault("currentWeek", 1)
	v.SetDefault("server.host", "0.0.0.0:8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 4*time.Hour)
	v.SetDefault("mail.backend", "smtp")
	v.SetDefault("mail.smtpHost", "smtp.gmail.com")
	v.SetDefault("mail.smtpPort", 465)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "showtell")
	v.SetDefault("classifier.model", "gpt-4o-mini")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("mail.backend", "console")
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Printf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	}

	// secrets keep their historical un-prefixed names
	bindings := map[string]string{
		"mail.address":        "EMAIL_ADDRESS",
		"mail.password":       "EMAIL_PASSWORD",
		"database.host":       "DB_HOST",
		"database.port":       "DB_PORT",
		"database.name":       "DB_NAME",
		"database.user":       "DB_USER",
		"database.password":   "DB_PASSWORD",
		"adminKey":            "ADMIN_KEY",
		"currentWeek":         "CURRENT_WEEK",
		"secretKey":           "SECRET_KEY",
		"mail.backend":        "MAIL_BACKEND",
		"mail.sendgridApiKey": "SENDGRID_API_KEY",
		"classifier.baseUrl":  "CLASSIFIER_BASE_URL",
		"classifier.apiKey":   "CLASSIFIER_API_KEY",
		"classifier.model":    "CLASSIFIER_MODEL",
		"rollbarToken":        "ROLLBAR_TOKEN",
		"debug":               "DEBUG",
		"build":               "BUILD",
	}
	for key, envVar := range bindings {
		_ = v.BindEnv(key, envVar)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:         env,
		Build:       v.GetString("build"),
		Debug:       v.GetBool("debug"),
		TestMode:    v.GetBool("testMode"),
		AppName:     v.GetString("appName"),
		SecretKey:   v.GetString("secretKey"),
		AdminKey:    v.GetString("adminKey"),
		CurrentWeek: v.GetInt("currentWeek"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Mail: MailConfig{
			Backend:        v.GetString("mail.backend"),
			Address:        v.GetString("mail.address"),
			Password:       v.GetString("mail.password"),
			SMTPHost:       v.GetString("mail.smtpHost"),
			SMTPPort:       v.GetInt("mail.smtpPort"),
			SendgridAPIKey: v.GetString("mail.sendgridApiKey"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTls"),
		},
		Classifier: ClassifierConfig{
			BaseURL: v.GetString("classifier.baseUrl"),
			APIKey:  v.GetString("classifier.apiKey"),
			Model:   v.GetString("classifier.model"),
		},
		RollbarToken: v.GetString("rollbarToken"),
	}
	return conf
}

// check enforces the keys without which the app must not start serving.
func (c *Config) check() error {
	if c.TestMode {
		return nil
	}
	if c.Mail.Address == "" || c.Mail.Password == "" {
		return NewConfigError("email credentials missing: set EMAIL_ADDRESS and EMAIL_PASSWORD")
	}
	if c.Mail.Backend == "sendgrid" && c.Mail.SendgridAPIKey == "" {
		return NewConfigError("SENDGRID_API_KEY is required when mail backend is sendgrid")
	}
	if c.Classifier.APIKey == "" {
		return NewConfigError("classifier credentials missing: set CLASSIFIER_API_KEY")
	}
	if c.CurrentWeek < 1 {
		return NewConfigError("CURRENT_WEEK must be a positive week number")
	}
	return nil
}
