package config

import (
	"os"
	"testing"
	"time"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/x/y")
	t.Setenv("MONITORING_CYCLE_INTERVAL", "5")
	t.Setenv("ALERT_COOLDOWN_HOURS", "2")
	t.Setenv("CARDS_TO_MONITOR_PER_CYCLE", "50")
	t.Setenv("SKIP_SCRAPING", "true")
	t.Setenv("SEND_CYCLE_SUMMARIES", "false")
	t.Setenv("DATABASE_PATH", "./cards.db")
	t.Setenv("PUBLIC_API_KEYS", "pub_a,pub_b")
	t.Setenv("ADMIN_API_KEYS", "adm_x")

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if cfg.TelegramBotToken != "123:abc" || cfg.TelegramChatID != -1001234567890 {
		t.Fatalf("telegram config wrong: %+v", cfg)
	}
	if cfg.CycleInterval != 5*time.Minute {
		t.Fatalf("cycle interval wrong: %v", cfg.CycleInterval)
	}
	if cfg.AlertCooldown != 2*time.Hour {
		t.Fatalf("cooldown wrong: %v", cfg.AlertCooldown)
	}
	if cfg.CardsPerCycle != 50 {
		t.Fatalf("cards per cycle wrong: %d", cfg.CardsPerCycle)
	}
	if !cfg.SkipScraping || cfg.SendSummaries {
		t.Fatalf("bool flags wrong: %+v", cfg)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[0] != "pub_a" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "adm_x" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.DatabasePath == "" {
		t.Fatalf("expected DatabasePath set")
	}

	// ensure defaults don’t crash if missing env
	os.Unsetenv("ADDR")
	os.Unsetenv("MONITORING_CYCLE_INTERVAL")
	def := FromEnv()
	if def.CycleInterval != 10*time.Minute || def.AlertCooldown != 2*time.Hour {
		t.Fatalf("defaults wrong: %+v", def)
	}
}

func TestFromEnv_IgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("ALERT_COOLDOWN_HOURS", "soon")
	t.Setenv("CARDS_TO_MONITOR_PER_CYCLE", "-3")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-chat")

	cfg := FromEnv()
	if cfg.AlertCooldown != 6*time.Hour {
		t.Fatalf("expected default cooldown, got %v", cfg.AlertCooldown)
	}
	if cfg.CardsPerCycle != 30 {
		t.Fatalf("expected default cards per cycle, got %d", cfg.CardsPerCycle)
	}
	if cfg.TelegramChatID != 0 {
		t.Fatalf("expected zero chat id, got %d", cfg.TelegramChatID)
	}
}
