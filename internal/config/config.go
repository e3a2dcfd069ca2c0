package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string             `yaml:"discord_token"`
	CommandPrefix string             `yaml:"command_prefix"`
	DatabaseURL   string             `yaml:"database_url"`
	DataDir       string             `yaml:"data_dir"`
	LogLevel      string             `yaml:"log_level"`
	Channels      ChannelConfig      `yaml:"channels"`
	Verification  VerificationConfig `yaml:"verification"`
	Reminders     ReminderConfig     `yaml:"reminders"`
	Roles         RoleConfig         `yaml:"roles"`
	Health        HealthConfig       `yaml:"health"`
	Embeds        EmbedColors        `yaml:"embeds"`
}

type ChannelConfig struct {
	Verify   string `yaml:"verify"`
	Roles    string `yaml:"roles"`
	Rules    string `yaml:"rules"`
	Announce string `yaml:"announce"`
}

type VerificationConfig struct {
	BaseURL         string `yaml:"base_url"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

type ReminderConfig struct {
	PollMinutes      int      `yaml:"poll_minutes"`
	ToleranceMinutes int      `yaml:"tolerance_minutes"`
	HorizonDays      int      `yaml:"horizon_days"`
	Offsets          []string `yaml:"offsets"`
}

type RoleConfig struct {
	Unverified string `yaml:"unverified"`
	Verified   string `yaml:"verified"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type EmbedColors struct {
	Info    int `yaml:"info"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		CommandPrefix: "!",
		DataDir:       "data",
		LogLevel:      "info",
		Verification: VerificationConfig{
			BaseURL:         "https://www.ufembs.com/discord-verify",
			TokenTTLMinutes: 15,
		},
		Reminders: ReminderConfig{
			PollMinutes:      10,
			ToleranceMinutes: 5,
			HorizonDays:      30,
			Offsets:          []string{"5d", "1d", "2h"},
		},
		Roles:  RoleConfig{Unverified: "Unverified", Verified: "Member"},
		Health: HealthConfig{Enabled: false, Addr: ":8080"},
		Embeds: EmbedColors{
			Info:    0x5865F2,
			Warning: 0xF59E0B,
			Error:   0xEF4444,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "!"
	}
	if cfg.Verification.TokenTTLMinutes <= 0 {
		cfg.Verification.TokenTTLMinutes = 15
	}
	if cfg.Reminders.PollMinutes <= 0 {
		cfg.Reminders.PollMinutes = 10
	}
	if cfg.Reminders.ToleranceMinutes <= 0 {
		cfg.Reminders.ToleranceMinutes = 5
	}
	if cfg.Reminders.HorizonDays <= 0 {
		cfg.Reminders.HorizonDays = 30
	}
	if len(cfg.Reminders.Offsets) == 0 {
		cfg.Reminders.Offsets = []string{"5d", "1d", "2h"}
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.CommandPrefix = envString("COMMAND_PREFIX", cfg.CommandPrefix)
	cfg.DatabaseURL = envString("DATABASE_URL", cfg.DatabaseURL)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Channels.Verify = envString("VERIFY_CHANNEL_ID", cfg.Channels.Verify)
	cfg.Channels.Roles = envString("ROLES_CHANNEL_ID", cfg.Channels.Roles)
	cfg.Channels.Rules = envString("RULES_CHANNEL_ID", cfg.Channels.Rules)
	cfg.Channels.Announce = envString("ANNOUNCE_CHANNEL_ID", cfg.Channels.Announce)
	cfg.Verification.BaseURL = envString("VERIFICATION_URL_BASE", cfg.Verification.BaseURL)
	cfg.Verification.TokenTTLMinutes = envInt("TOKEN_EXPIRY_MINUTES", cfg.Verification.TokenTTLMinutes)
	cfg.Reminders.PollMinutes = envInt("REMINDER_POLL_MINUTES", cfg.Reminders.PollMinutes)
	cfg.Reminders.ToleranceMinutes = envInt("REMINDER_TOLERANCE_MINUTES", cfg.Reminders.ToleranceMinutes)
	cfg.Reminders.HorizonDays = envInt("REMINDER_HORIZON_DAYS", cfg.Reminders.HorizonDays)
	if value := os.Getenv("REMINDER_OFFSETS"); value != "" {
		parts := strings.Split(value, ",")
		offsets := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				offsets = append(offsets, trimmed)
			}
		}
		if len(offsets) > 0 {
			cfg.Reminders.Offsets = offsets
		}
	}
	cfg.Roles.Unverified = envString("UNVERIFIED_ROLE_NAME", cfg.Roles.Unverified)
	cfg.Roles.Verified = envString("VERIFIED_ROLE_NAME", cfg.Roles.Verified)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Embeds.Info = envInt("EMBED_COLOR_INFO", cfg.Embeds.Info)
	cfg.Embeds.Warning = envInt("EMBED_COLOR_WARNING", cfg.Embeds.Warning)
	cfg.Embeds.Error = envInt("EMBED_COLOR_ERROR", cfg.Embeds.Error)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
