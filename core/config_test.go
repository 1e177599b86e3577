package core

import "testing"

func TestNewConfig_requiresServingCredentials(t *testing.T) {
	t.Setenv("ENV", "DEV")
	t.Setenv("EMAIL_ADDRESS", "")
	t.Setenv("EMAIL_PASSWORD", "")
	t.Setenv("CLASSIFIER_API_KEY", "")

	if _, err := NewConfig(); err == nil {
		t.Error("NewConfig() error = nil; want a ConfigError for missing credentials")
	} else if !IsConfigError(err) {
		t.Errorf("NewConfig() error = %v; want a ConfigError", err)
	}
}

// The admin CLI must come up with no serving credentials at all: migrations
// and week setup need only the database, and sendtest prompts for the SMTP
// password itself.
func TestNewCLIConfig_skipsServingChecks(t *testing.T) {
	t.Setenv("ENV", "DEV")
	t.Setenv("EMAIL_ADDRESS", "")
	t.Setenv("EMAIL_PASSWORD", "")
	t.Setenv("CLASSIFIER_API_KEY", "")
	t.Setenv("MAIL_BACKEND", "")
	t.Setenv("CURRENT_WEEK", "")

	conf := NewCLIConfig()
	if conf.Env != "DEV" {
		t.Errorf("Env = %q; want DEV", conf.Env)
	}
	if conf.Mail.Backend != "smtp" {
		t.Errorf("Mail.Backend = %q; want smtp", conf.Mail.Backend)
	}
	if conf.Mail.Password != "" {
		t.Errorf("Mail.Password = %q; want empty", conf.Mail.Password)
	}
	if conf.CurrentWeek != 1 {
		t.Errorf("CurrentWeek = %d; want the default 1", conf.CurrentWeek)
	}
}
