package config

import (
	"reflect"
	"testing"
)

func TestEnvOverlay(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("TOKEN_EXPIRY_MINUTES", "30")
	t.Setenv("REMINDER_OFFSETS", "3d, 6h ,15m")
	t.Setenv("VERIFIED_ROLE_NAME", "Brother")
	t.Setenv("HEALTH_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DiscordToken != "tok" || cfg.CommandPrefix != "?" {
		t.Fatalf("unexpected token/prefix: %q %q", cfg.DiscordToken, cfg.CommandPrefix)
	}
	if cfg.Verification.TokenTTLMinutes != 30 {
		t.Fatalf("ttl = %d, want 30", cfg.Verification.TokenTTLMinutes)
	}
	if want := []string{"3d", "6h", "15m"}; !reflect.DeepEqual(cfg.Reminders.Offsets, want) {
		t.Fatalf("offsets = %v, want %v", cfg.Reminders.Offsets, want)
	}
	if cfg.Roles.Verified != "Brother" {
		t.Fatalf("verified role = %q", cfg.Roles.Verified)
	}
	if !cfg.Health.Enabled {
		t.Fatalf("health should be enabled")
	}
}

func TestMissingTokenFails(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DISCORD_TOKEN")
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "tok")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CommandPrefix != "!" {
		t.Fatalf("prefix = %q, want !", cfg.CommandPrefix)
	}
	if cfg.Reminders.PollMinutes != 10 || cfg.Reminders.ToleranceMinutes != 5 || cfg.Reminders.HorizonDays != 30 {
		t.Fatalf("unexpected reminder defaults: %+v", cfg.Reminders)
	}
	if want := []string{"5d", "1d", "2h"}; !reflect.DeepEqual(cfg.Reminders.Offsets, want) {
		t.Fatalf("offsets = %v, want %v", cfg.Reminders.Offsets, want)
	}
	if cfg.Roles.Unverified != "Unverified" || cfg.Roles.Verified != "Member" {
		t.Fatalf("unexpected role defaults: %+v", cfg.Roles)
	}
}
