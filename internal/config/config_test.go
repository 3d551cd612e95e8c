package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	defer os.Unsetenv("DATABASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if !cfg.IsDev() {
		t.Error("IsDev() = false, want true")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("Load() without DATABASE_URL should fail")
	}
}

func TestValidateProductionRequiresSecret(t *testing.T) {
	cfg := &Config{Env: "production", SMTPPort: 587}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject production without JWT_SECRET")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidateSMTPPort(t *testing.T) {
	cfg := &Config{Env: "development", SMTPPort: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject SMTP_PORT 0")
	}
}

func TestValidateMediaConfig(t *testing.T) {
	cfg := &Config{Env: "development", SMTPPort: 587, MediaAPIKey: "key"}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should require MEDIA_CLOUD_NAME when MEDIA_API_KEY is set")
	}
}

func TestMailEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.MailEnabled() {
		t.Error("MailEnabled() = true without credentials")
	}
	cfg.SMTPUsername = "clinic@example.com"
	cfg.SMTPPassword = "hunter2"
	if !cfg.MailEnabled() {
		t.Error("MailEnabled() = false with credentials")
	}
}
