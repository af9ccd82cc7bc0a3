package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string // dashboard bind address, e.g., "127.0.0.1:8080" or ":8080"
	LogDir string // logs directory

	// Telegram is the required channel; Discord is optional.
	TelegramBotToken  string
	TelegramChatID    int64
	DiscordWebhookURL string

	// Monitoring settings.
	CycleInterval time.Duration // time between monitoring cycles
	AlertCooldown time.Duration // minimum gap between alerts for the same card
	CardsPerCycle int           // how many cards to verify each cycle
	MaxPages      int           // listing pages to scrape when seeding the catalog
	SkipScraping  bool          // reuse an existing catalog, skip seeding
	SendSummaries bool          // send a cycle summary when extinctions were found

	// Scraping settings.
	ScrapeRPS     float64 // outbound requests per second against fut.gg
	ScrapeTimeout time.Duration

	// Persistence (empty means in-memory only).
	DatabasePath string

	// API keys (comma-separated env values).
	PublicAPIKeys []string
	AdminAPIKeys  []string

	// Rate limiting for the HTTP API.
	PublicRPM   int
	PublicBurst int
}

func FromEnv() Config {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	var chatID int64
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			chatID = n
		}
	}

	// minutes between checks
	cycle := 10 * time.Minute
	if v := os.Getenv("MONITORING_CYCLE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cycle = time.Duration(n) * time.Minute
		}
	}

	// hours before re-alerting the same card
	cooldown := 6 * time.Hour
	if v := os.Getenv("ALERT_COOLDOWN_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cooldown = time.Duration(n) * time.Hour
		}
	}

	perCycle := 30
	if v := os.Getenv("CARDS_TO_MONITOR_PER_CYCLE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perCycle = n
		}
	}

	maxPages := 10
	if v := os.Getenv("MAX_PAGES_TO_SCRAPE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxPages = n
		}
	}

	scrapeRPS := 0.5
	if v := os.Getenv("SCRAPE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			scrapeRPS = f
		}
	}

	scrapeTimeout := 30 * time.Second
	if v := os.Getenv("SCRAPE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			scrapeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	publicRPM := 120
	if v := os.Getenv("PUBLIC_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			publicRPM = n
		}
	}
	publicBurst := 60
	if v := os.Getenv("PUBLIC_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			publicBurst = n
		}
	}

	return Config{
		Addr:              addr,
		LogDir:            logDir,
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:    chatID,
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		CycleInterval:     cycle,
		AlertCooldown:     cooldown,
		CardsPerCycle:     perCycle,
		MaxPages:          maxPages,
		SkipScraping:      boolEnv("SKIP_SCRAPING", false),
		SendSummaries:     boolEnv("SEND_CYCLE_SUMMARIES", true),
		ScrapeRPS:         scrapeRPS,
		ScrapeTimeout:     scrapeTimeout,
		DatabasePath:      os.Getenv("DATABASE_PATH"),
		PublicAPIKeys:     splitKeys(os.Getenv("PUBLIC_API_KEYS")),
		AdminAPIKeys:      splitKeys(os.Getenv("ADMIN_API_KEYS")),
		PublicRPM:         publicRPM,
		PublicBurst:       publicBurst,
	}
}

func boolEnv(name string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes"
}

func splitKeys(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
