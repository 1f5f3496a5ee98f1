package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the bot process.
type AppConfig struct {
	TelegramToken string
	DatabaseURL   string
	LogLevel      string
	Environment   string

	// DailyRewardAPIList lists the base URLs of remote claim hosts the
	// daily-claim dispatcher fans work out to. May be empty.
	DailyRewardAPIList []string

	// ClaimIntervalMinutes and NotesIntervalMinutes gate the minute tick:
	// a dispatcher only acts when currentMinute mod interval < 1.
	ClaimIntervalMinutes int
	NotesIntervalMinutes int

	// UserDelay is the self-throttling pause between two users within one
	// sweep, independent of platform rate limits.
	UserDelay time.Duration

	// ExpiredUserDays controls the inactive-user purge: users idle longer
	// than this are removed along with their registrations.
	ExpiredUserDays int

	// MaintenanceStart/End suppress both dispatchers while the games are
	// under maintenance. Zero values disable the window.
	MaintenanceStart time.Time
	MaintenanceEnd   time.Time

	// GeetestSolverURL is the page users are sent to when a verification
	// challenge blocks their account. Optional.
	GeetestSolverURL string
}

// ClaimHostConfig holds configuration for the standalone claim host.
type ClaimHostConfig struct {
	ListenAddr       string
	LogLevel         string
	Environment      string
	GeetestSolverURL string
}

// Load reads bot configuration from environment variables and a .env file
// (if present). godotenv does not override variables already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = envDefault("LOG_LEVEL", "info")
	cfg.Environment = envDefault("ENVIRONMENT", "development")

	if list := os.Getenv("DAILY_REWARD_API_LIST"); list != "" {
		for _, host := range strings.Split(list, ",") {
			if host = strings.TrimSpace(host); host != "" {
				cfg.DailyRewardAPIList = append(cfg.DailyRewardAPIList, strings.TrimRight(host, "/"))
			}
		}
	}

	var err error
	cfg.ClaimIntervalMinutes, err = envIntDefault("SCHEDULE_DAILY_CLAIM_INTERVAL", 10)
	if err != nil {
		return nil, err
	}
	cfg.NotesIntervalMinutes, err = envIntDefault("SCHEDULE_CHECK_NOTES_INTERVAL", 10)
	if err != nil {
		return nil, err
	}
	if cfg.ClaimIntervalMinutes <= 0 || cfg.NotesIntervalMinutes <= 0 {
		return nil, fmt.Errorf("schedule intervals must be positive")
	}

	cfg.UserDelay, err = envDurationDefault("SCHEDULE_USER_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.ExpiredUserDays, err = envIntDefault("EXPIRED_USER_DAYS", 180)
	if err != nil {
		return nil, err
	}

	cfg.MaintenanceStart, err = envTime("GAME_MAINTENANCE_START")
	if err != nil {
		return nil, err
	}
	cfg.MaintenanceEnd, err = envTime("GAME_MAINTENANCE_END")
	if err != nil {
		return nil, err
	}

	cfg.GeetestSolverURL = strings.TrimRight(os.Getenv("GEETEST_SOLVER_URL"), "/")

	return cfg, nil
}

// LoadClaimHost reads configuration for the standalone claim host binary.
func LoadClaimHost() (*ClaimHostConfig, error) {
	_ = godotenv.Load()

	return &ClaimHostConfig{
		ListenAddr:       envDefault("CLAIM_HOST_LISTEN_ADDR", ":8080"),
		LogLevel:         envDefault("LOG_LEVEL", "info"),
		Environment:      envDefault("ENVIRONMENT", "development"),
		GeetestSolverURL: strings.TrimRight(os.Getenv("GEETEST_SOLVER_URL"), "/"),
	}, nil
}

func envDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDurationDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envTime(key string) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s (want RFC3339): %w", key, err)
	}
	return t, nil
}
