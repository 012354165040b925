package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return p
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	p := writeYAML(t, `
storage:
  driver: memory
smtp:
  provider: dev
email:
  admin_address: admin@learn2grow.example
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("addr default = %q", c.Server.Addr)
	}
	if c.Email.FollowUpDays != 7 {
		t.Fatalf("follow_up_days default = %d", c.Email.FollowUpDays)
	}
	if c.Email.SiteName != "Learn2Grow" {
		t.Fatalf("site_name default = %q", c.Email.SiteName)
	}
	if c.Rate.Register.Limit != 5 {
		t.Fatalf("register rate default = %d", c.Rate.Register.Limit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SMTP_HOST", "mail.override.example")
	t.Setenv("EMAIL_FOLLOW_UP_DAYS", "14")

	p := writeYAML(t, `
storage:
  driver: memory
smtp:
  provider: smtp
  host: mail.yaml.example
email:
  admin_address: admin@learn2grow.example
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SMTP.Host != "mail.override.example" {
		t.Fatalf("env should win: %q", c.SMTP.Host)
	}
	if c.Email.FollowUpDays != 14 {
		t.Fatalf("follow_up_days = %d", c.Email.FollowUpDays)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown driver", "storage:\n  driver: mongo\n"},
		{"pg without dsn", "storage:\n  driver: pg\n"},
		{"unknown provider", "storage:\n  driver: memory\nsmtp:\n  provider: pigeon\n"},
		{"smtp without host", "storage:\n  driver: memory\nsmtp:\n  provider: smtp\n"},
		{"bad duration", "storage:\n  driver: memory\nsmtp:\n  provider: dev\nemail:\n  send_timeout: nope\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeYAML(t, tc.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_ProdRejectsDevSink(t *testing.T) {
	p := writeYAML(t, `
app:
  app_env: prod
storage:
  driver: memory
smtp:
  provider: dev
`)
	if _, err := Load(p); err == nil {
		t.Fatal("dev provider must be rejected in prod")
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SMTP_PROVIDER", "dev")
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if c.Storage.Driver != "memory" || c.SMTP.Provider != "dev" {
		t.Fatalf("env not applied: %+v", c.Storage)
	}
}
